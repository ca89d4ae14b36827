package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/explain"
	"github.com/abhisek/tutoria/internal/store"
	"github.com/abhisek/tutoria/internal/tutor"
)

func question(id int, options ...string) *assess.QuestionResponse {
	return &assess.QuestionResponse{
		Question: &assess.Question{
			ID:      assess.IDFromInt(id),
			Text:    "¿Cuánto es 3 x 4?",
			Skill:   "multiplicación",
			Options: options,
		},
		Predictions: []assess.SkillPrediction{{Skill: "multiplicación", MasteryProbability: 0.5}},
	}
}

type fixedExplainer struct {
	calls int
}

func (f *fixedExplainer) Explain(_ context.Context, in explain.Input) (*explain.Explanation, error) {
	f.calls++
	return &explain.Explanation{Text: "3 groups of 4 make " + in.Result.CorrectAnswer, Tip: "Count by fours."}, nil
}

func runLines(t *testing.T, svc *assess.MockService, explainer answerExplainer, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	err := plainSession(context.Background(), tutor.NewDriver(svc, nil), nil, explainer, in, &out)
	require.NoError(t, err)
	return out.String()
}

func TestPlainSessionAnswerAndQuit(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(question(1, "7", "12", "16")).
		QueueVerdict(&assess.VerifyResponse{Verdict: assess.CorrectVerdict, CorrectAnswer: "12"})

	out := runLines(t, svc, nil, "2", "q")

	assert.Contains(t, out, "── multiplicación ──")
	assert.Contains(t, out, "  2) 12")
	assert.Contains(t, out, "✓ Correct!")
	assert.Contains(t, out, "[n]ext  [r]estart  [q]uit: ")
	assert.True(t, strings.HasSuffix(out, "Bye!\n"))

	require.Len(t, svc.Calls, 2)
	assert.Equal(t, assess.OpVerifyAnswer, svc.Calls[1].Op)
	assert.Equal(t, "12", svc.Calls[1].Request.Answer)
	assert.Equal(t, assess.IDFromInt(1), svc.Calls[1].Request.ID)
}

func TestPlainSessionRejectsOutOfRangeAnswer(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(question(1, "7", "12")).
		QueueVerdict(&assess.VerifyResponse{Verdict: "incorrecta", CorrectAnswer: "12"})

	out := runLines(t, svc, nil, "5", "abc", "1", "q")

	assert.Equal(t, 2, strings.Count(out, "Please enter a number between 1 and 2: "))
	assert.Contains(t, out, "✗ Not quite. The correct answer is: 12")
	assert.Equal(t, []assess.Op{assess.OpFetchQuestion, assess.OpVerifyAnswer}, svc.Ops())
}

func TestPlainSessionNextUntilCompleted(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(question(1, "7", "12")).
		QueueVerdict(&assess.VerifyResponse{Verdict: assess.CorrectVerdict, CorrectAnswer: "12"}).
		QueueQuestion(&assess.QuestionResponse{
			Completed:   true,
			Predictions: []assess.SkillPrediction{{Skill: "multiplicación", MasteryProbability: 0.9}},
		})

	out := runLines(t, svc, nil, "2", "", "q")

	assert.Contains(t, out, "Congratulations! You have completed the session.")
	assert.Contains(t, out, "90%")
	assert.Contains(t, out, "[r]etake  [q]uit: ")
}

func TestPlainSessionRestart(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(question(1, "7", "12")).
		QueueQuestion(question(2, "a", "b"))

	runLines(t, svc, nil, "r", "q")

	assert.Equal(t, []assess.Op{assess.OpFetchQuestion, assess.OpReset, assess.OpFetchQuestion}, svc.Ops())
}

func TestPlainSessionFailureAndRetry(t *testing.T) {
	svc := assess.NewMockService().
		QueueError(assess.OpFetchQuestion, &assess.ErrTransport{Op: assess.OpFetchQuestion, Err: errors.New("connection refused")}).
		QueueQuestion(question(1, "7", "12"))

	out := runLines(t, svc, nil, "t", "q")

	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "── multiplicación ──")
	assert.Equal(t, []assess.Op{assess.OpFetchQuestion, assess.OpFetchQuestion}, svc.Ops())
}

func TestPlainSessionExplain(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(question(1, "7", "12")).
		QueueVerdict(&assess.VerifyResponse{Verdict: "incorrecta", CorrectAnswer: "12"})
	explainer := &fixedExplainer{}

	out := runLines(t, svc, explainer, "1", "e", "q")

	assert.Equal(t, 1, explainer.calls)
	assert.Contains(t, out, "3 groups of 4 make 12")
	assert.Contains(t, out, "Tip: Count by fours.")
	assert.Contains(t, out, "[n]ext  [e]xplain  [r]estart  [q]uit: ")
}

func TestPlainSessionInputClosed(t *testing.T) {
	svc := assess.NewMockService().QueueQuestion(question(1, "7", "12"))

	var out bytes.Buffer
	err := plainSession(context.Background(), tutor.NewDriver(svc, nil), nil, nil, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "(input closed)")
}

func TestUsageByModel(t *testing.T) {
	events := []store.LLMEventRecord{
		{Model: "gpt-4o-mini", InputTokens: 100, OutputTokens: 20},
		{Model: "claude-haiku-4-5", InputTokens: 300, OutputTokens: 50},
		{Model: "gpt-4o-mini", InputTokens: 50, OutputTokens: 10},
	}

	got := usageByModel(events)

	assert.Equal(t, []modelUsage{
		{Model: "claude-haiku-4-5", Calls: 1, InputTokens: 300, OutputTokens: 50},
		{Model: "gpt-4o-mini", Calls: 2, InputTokens: 150, OutputTokens: 30},
	}, got)
	assert.Empty(t, usageByModel(nil))
}

func TestProfileLine(t *testing.T) {
	profile := []store.PredictionData{
		{Skill: "fracciones", Probability: 0.666},
		{Skill: "sumas", Probability: 0.5},
	}

	assert.Equal(t, "fracciones 67%, sumas 50%", profileLine(profile, false))
	assert.Equal(t, "fracciones 66.6%, sumas 50%", profileLine(profile, true))
	assert.Empty(t, profileLine(nil, true))
}
