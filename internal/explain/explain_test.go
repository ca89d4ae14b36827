package explain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/llm"
)

func fractionInput(chosen string, outcome assess.Outcome) Input {
	return Input{
		Question: assess.Question{
			ID:      assess.IDFromInt(7),
			Text:    "¿Cuál fracción es mayor?",
			Skill:   "fracciones",
			Options: []string{"1/3", "1/2", "1/4"},
		},
		Chosen: chosen,
		Result: assess.AnswerResult{Outcome: outcome, CorrectAnswer: "1/2"},
	}
}

func TestExplain(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"explanation":"  La mitad es más grande que un tercio. ","tip":"Compara denominadores."}`),
	})
	svc := NewService(mock, DefaultConfig())

	got, err := svc.Explain(t.Context(), fractionInput("1/3", assess.OutcomeIncorrect))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "La mitad es más grande que un tercio." {
		t.Errorf("text = %q", got.Text)
	}
	if got.Tip != "Compara denominadores." {
		t.Errorf("tip = %q", got.Tip)
	}
	if got.Model != "mock" || got.GeneratedAt.IsZero() {
		t.Errorf("unexpected metadata: %+v", got)
	}

	req := mock.Calls[0]
	if req.Schema != Schema {
		t.Error("expected the answer-explanation schema")
	}
	if req.MaxTokens != DefaultConfig().MaxTokens {
		t.Errorf("max tokens = %d", req.MaxTokens)
	}
	msg := req.Messages[0].Content
	for _, want := range []string{"Skill: fracciones", "  2. 1/2", "Correct answer: 1/2", `chose "1/3", which is incorrect`} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q:\n%s", want, msg)
		}
	}
}

func TestExplainCorrectAnswerPrompt(t *testing.T) {
	msg := userMessage(fractionInput("1/2", assess.OutcomeCorrect))
	if !strings.Contains(msg, "which is correct") {
		t.Errorf("prompt = %q", msg)
	}
	if strings.Contains(userMessage(fractionInput("", assess.OutcomeCorrect)), "learner chose") {
		t.Error("prompt mentions a choice that was not made")
	}
}

func TestExplainRequiresVerdict(t *testing.T) {
	mock := llm.NewMockProvider()
	_, err := NewService(mock, DefaultConfig()).Explain(t.Context(), Input{})
	if !errors.Is(err, ErrNoVerdict) {
		t.Fatalf("expected ErrNoVerdict, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Fatal("provider must not be called without a verdict")
	}
}

func TestExplainProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	_, err := NewService(mock, DefaultConfig()).Explain(t.Context(), fractionInput("1/3", assess.OutcomeIncorrect))
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestExplainRejectsEmptyExplanation(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"explanation":"","tip":""}`)})
	_, err := NewService(mock, DefaultConfig()).Explain(t.Context(), fractionInput("1/3", assess.OutcomeIncorrect))
	var inv *llm.ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}
