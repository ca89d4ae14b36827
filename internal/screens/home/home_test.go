package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/explain"
	"github.com/abhisek/tutoria/internal/router"
	sessionscreen "github.com/abhisek/tutoria/internal/screens/session"
	"github.com/abhisek/tutoria/internal/store"
)

type fakeHistory struct {
	store.HistoryRepo
	sessions []store.SessionSummaryRecord
}

func (f *fakeHistory) QuerySessionSummaries(_ context.Context, _ store.QueryOpts) ([]store.SessionSummaryRecord, error) {
	return f.sessions, nil
}

type noopExplainer struct{}

func (noopExplainer) Explain(context.Context, explain.Input) (*explain.Explanation, error) {
	return &explain.Explanation{Text: "ok"}, nil
}

func enter() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEnter} }

func TestStartQuizPushesSession(t *testing.T) {
	h := New(Deps{Service: assess.NewMockService(), APIURL: assess.DefaultBaseURL})

	_, cmd := h.Update(enter())
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", msg)
	}
	if _, ok := msg.Screen.(*sessionscreen.SessionScreen); !ok {
		t.Errorf("pushed %T, want session screen", msg.Screen)
	}
}

func TestHistoryDisabledWithoutRepo(t *testing.T) {
	h := New(Deps{Service: assess.NewMockService(), APIURL: assess.DefaultBaseURL})

	// Down skips the disabled History item and lands on Quit.
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(enter())
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected selection to land on Quit")
	}

	out := ansi.Strip(h.View(100, 30))
	if !strings.Contains(out, "no local database") {
		t.Errorf("missing disabled note:\n%s", out)
	}
	if !strings.Contains(out, "http://127.0.0.1:5000") || !strings.Contains(out, "Explanations: off") {
		t.Errorf("missing status:\n%s", out)
	}
}

func TestHomeShowsLastSessionAndExplainer(t *testing.T) {
	repo := &fakeHistory{sessions: []store.SessionSummaryRecord{{SessionID: "s1", Answered: 2, CorrectAnswers: 1}}}
	h := New(Deps{
		Service:       assess.NewMockService(),
		History:       repo,
		Explainer:     noopExplainer{},
		ExplainerName: "mock",
		APIURL:        assess.DefaultBaseURL,
	})
	h.Update(h.Init()())

	out := ansi.Strip(h.View(120, 30))
	if !strings.Contains(out, "2 answered  50% correct") {
		t.Errorf("missing last session:\n%s", out)
	}
	if !strings.Contains(out, "on (mock)") {
		t.Errorf("missing explainer status:\n%s", out)
	}
	if h.Resume() == nil {
		t.Error("expected Resume to reload the last session")
	}
}
