package history

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/tutoria/internal/store"
)

type fakeHistory struct {
	store.HistoryRepo
	sessions      []store.SessionSummaryRecord
	answers       map[string][]store.AnswerEventRecord
	answerQueries int
}

func (f *fakeHistory) QuerySessionSummaries(_ context.Context, _ store.QueryOpts) ([]store.SessionSummaryRecord, error) {
	return f.sessions, nil
}

func (f *fakeHistory) QueryAnswers(_ context.Context, id string) ([]store.AnswerEventRecord, error) {
	f.answerQueries++
	return f.answers[id], nil
}

func run(s *HistoryScreen, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	s.Update(cmd())
}

func TestHistoryListsAndExpands(t *testing.T) {
	repo := &fakeHistory{
		sessions: []store.SessionSummaryRecord{{
			SessionID:      "s1",
			Timestamp:      time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
			Answered:       4,
			CorrectAnswers: 3,
			Completed:      true,
			Profile:        []store.PredictionData{{Skill: "sumas", Probability: 0.9}},
		}},
		answers: map[string][]store.AnswerEventRecord{
			"s1": {{Skill: "sumas", QuestionText: "2+2?", ChosenAnswer: "4", CorrectAnswer: "4", Correct: true}},
		},
	}
	s := New(repo)
	run(s, s.Init())

	out := ansi.Strip(s.View(100, 30))
	if !strings.Contains(out, "4 answered  75% correct  completed") {
		t.Errorf("summary line missing:\n%s", out)
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	run(s, cmd)

	out = ansi.Strip(s.View(100, 30))
	for _, want := range []string{"[sumas] 2+2?", "Final profile", "90%"} {
		if !strings.Contains(out, want) {
			t.Errorf("expanded view missing %q:\n%s", want, out)
		}
	}

	// Collapse and expand again without re-querying.
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil || repo.answerQueries != 1 {
		t.Errorf("answers re-queried: %d queries", repo.answerQueries)
	}
}

func TestHistoryEmpty(t *testing.T) {
	s := New(&fakeHistory{})
	run(s, s.Init())
	if !strings.Contains(ansi.Strip(s.View(80, 20)), "No sessions yet") {
		t.Error("expected empty message")
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy(store.SessionSummaryRecord{}); got != 0 {
		t.Errorf("Accuracy(empty) = %v, want 0", got)
	}
	if got := Accuracy(store.SessionSummaryRecord{Answered: 4, CorrectAnswers: 1}); got != 25 {
		t.Errorf("Accuracy = %v, want 25", got)
	}
}
