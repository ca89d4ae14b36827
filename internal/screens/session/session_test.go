package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/explain"
	"github.com/abhisek/tutoria/internal/store"
	"github.com/abhisek/tutoria/internal/tutor"
)

// mockEventRepo implements store.EventRepo for testing.
type mockEventRepo struct {
	sessionEvents    []store.SessionEventData
	answerEvents     []store.AnswerEventData
	predictionEvents []store.PredictionEventData
}

func (m *mockEventRepo) AppendSessionEvent(_ context.Context, data store.SessionEventData) error {
	m.sessionEvents = append(m.sessionEvents, data)
	return nil
}
func (m *mockEventRepo) AppendAnswerEvent(_ context.Context, data store.AnswerEventData) error {
	m.answerEvents = append(m.answerEvents, data)
	return nil
}
func (m *mockEventRepo) AppendPredictionEvent(_ context.Context, data store.PredictionEventData) error {
	m.predictionEvents = append(m.predictionEvents, data)
	return nil
}
func (m *mockEventRepo) AppendAPICall(_ context.Context, _ store.APICallEventData) error {
	return nil
}
func (m *mockEventRepo) AppendLLMRequest(_ context.Context, _ store.LLMRequestEventData) error {
	return nil
}

func (m *mockEventRepo) actions() []string {
	out := make([]string, len(m.sessionEvents))
	for i, e := range m.sessionEvents {
		out[i] = e.Action
	}
	return out
}

type stubExplainer struct {
	calls int
	err   error
}

func (e *stubExplainer) Explain(_ context.Context, in explain.Input) (*explain.Explanation, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return &explain.Explanation{
		Text: "Because " + in.Result.CorrectAnswer + " is right.",
		Tip:  "Draw it.",
	}, nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func fractionQuestion(id int) *assess.QuestionResponse {
	return &assess.QuestionResponse{
		Question: &assess.Question{
			ID:      assess.IDFromInt(id),
			Text:    "What is 1/2 + 1/4?",
			Skill:   "fracciones",
			Options: []string{"2/6", "3/4", "1/8"},
		},
		Predictions: []assess.SkillPrediction{
			{Skill: "fracciones", MasteryProbability: 0.4},
			{Skill: "sumas", MasteryProbability: 0.8},
		},
	}
}

func verdict(correct bool, answer string) *assess.VerifyResponse {
	v := &assess.VerifyResponse{
		Verdict:       "incorrecta",
		CorrectAnswer: answer,
		Predictions: []assess.SkillPrediction{
			{Skill: "fracciones", MasteryProbability: 0.55},
			{Skill: "sumas", MasteryProbability: 0.8},
		},
	}
	if correct {
		v.Verdict = assess.CorrectVerdict
	}
	return v
}

// drain runs cmd and every command it produces, feeding messages back into
// s. Spinner ticks are dropped so the loop terminates.
func drain(s *SessionScreen, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := s.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(s *SessionScreen, msg tea.KeyPressMsg) {
	_, cmd := s.Update(msg)
	drain(s, cmd)
}

func view(s *SessionScreen) string {
	return ansi.Strip(s.View(120, 30))
}

func newJournal(repo store.EventRepo) *tutor.Journal {
	j := tutor.NewJournal(repo, "sess-1", "http://127.0.0.1:5000")
	j.Warnings = io.Discard
	return j
}

func TestStartShowsQuestionAndPanel(t *testing.T) {
	svc := assess.NewMockService().QueueQuestion(fractionQuestion(1))
	s := New(svc, nil, nil)
	drain(s, s.Init())

	if got := s.State().Phase(); got != tutor.PhaseAwaitingAnswer {
		t.Fatalf("phase = %s, want awaiting-answer", got)
	}
	out := view(s)
	for _, want := range []string{"What is 1/2 + 1/4?", "1) 2/6", "3) 1/8", "Skill mastery", "40%", "80%"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestNumberKeySubmitsAnswer(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(fractionQuestion(7)).
		QueueVerdict(verdict(false, "3/4"))
	s := New(svc, nil, nil)
	drain(s, s.Init())

	press(s, keyPress('1'))

	if got := s.State().Phase(); got != tutor.PhaseAnswered {
		t.Fatalf("phase = %s, want answered", got)
	}
	last := svc.Calls[len(svc.Calls)-1]
	if last.Op != assess.OpVerifyAnswer || last.Request.Answer != "2/6" || last.Request.ID != assess.IDFromInt(7) {
		t.Errorf("unexpected verify call %+v", last)
	}

	out := view(s)
	if !strings.Contains(out, "Not quite.") || !strings.Contains(out, "The correct answer is: 3/4") {
		t.Errorf("verdict not shown:\n%s", out)
	}
	if !strings.Contains(out, "55%") {
		t.Errorf("updated predictions not shown:\n%s", out)
	}
}

func TestArrowsAndEnterSubmitAnswer(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(fractionQuestion(1)).
		QueueVerdict(verdict(true, "3/4"))
	s := New(svc, nil, nil)
	drain(s, s.Init())

	press(s, specialKey(tea.KeyDown))
	press(s, specialKey(tea.KeyEnter))

	if got := s.State().Chosen(); got != "3/4" {
		t.Fatalf("chosen = %q, want 3/4", got)
	}
	if !strings.Contains(view(s), "Correct!") {
		t.Errorf("expected correct verdict:\n%s", view(s))
	}
}

func TestKeysIgnoredWhileAnswered(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(fractionQuestion(1)).
		QueueVerdict(verdict(true, "3/4"))
	s := New(svc, nil, nil)
	drain(s, s.Init())
	press(s, keyPress('2'))

	calls := len(svc.Calls)
	press(s, keyPress('1'))
	if len(svc.Calls) != calls {
		t.Errorf("option key issued a call after the verdict")
	}
	if s.State().Phase() != tutor.PhaseAnswered {
		t.Errorf("phase = %s, want answered", s.State().Phase())
	}
}

func TestOptionListFollowsVerdict(t *testing.T) {
	tests := []struct {
		name    string
		verdict *assess.VerifyResponse
		right   bool
	}{
		{name: "correct", verdict: verdict(true, "3/4"), right: true},
		{name: "incorrect naming the chosen option", verdict: verdict(false, "3/4")},
		{name: "incorrect with empty answer", verdict: verdict(false, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := assess.NewMockService().
				QueueQuestion(fractionQuestion(1)).
				QueueVerdict(tt.verdict)
			s := New(svc, nil, nil)
			drain(s, s.Init())
			press(s, keyPress('2'))

			if !s.options.Judged {
				t.Fatal("options not judged after the verdict")
			}
			if s.options.ChosenRight != tt.right {
				t.Errorf("ChosenRight = %v, want %v", s.options.ChosenRight, tt.right)
			}
			if strings.Contains(view(s), "▸") {
				t.Errorf("judged options show a cursor:\n%s", view(s))
			}
		})
	}
}

func TestNextQuestionThenCompletion(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(fractionQuestion(1)).
		QueueVerdict(verdict(true, "3/4")).
		QueueQuestion(&assess.QuestionResponse{
			Completed:   true,
			Predictions: []assess.SkillPrediction{{Skill: "fracciones", MasteryProbability: 0.9}},
		})
	s := New(svc, nil, nil)
	drain(s, s.Init())
	press(s, keyPress('2'))
	press(s, keyPress('n'))

	if !s.State().Completed() {
		t.Fatalf("phase = %s, want completed", s.State().Phase())
	}
	out := view(s)
	if !strings.Contains(out, "Congratulations!") || !strings.Contains(out, "90%") {
		t.Errorf("completion view missing content:\n%s", out)
	}
}

func TestRetakeAfterCompletion(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(&assess.QuestionResponse{Completed: true}).
		QueueQuestion(fractionQuestion(2))
	s := New(svc, nil, nil)
	drain(s, s.Init())
	if !s.State().Completed() {
		t.Fatalf("phase = %s, want completed", s.State().Phase())
	}

	press(s, keyPress('r'))

	if s.State().Completed() {
		t.Fatal("completion flag survived the restart")
	}
	if s.State().Phase() != tutor.PhaseAwaitingAnswer {
		t.Errorf("phase = %s, want awaiting-answer", s.State().Phase())
	}
	var ops []assess.Op
	for _, c := range svc.Calls {
		ops = append(ops, c.Op)
	}
	want := []assess.Op{assess.OpFetchQuestion, assess.OpReset, assess.OpFetchQuestion}
	if len(ops) != len(want) {
		t.Fatalf("calls = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("calls = %v, want %v", ops, want)
		}
	}
}

func TestRestartDropsInFlightResponse(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(fractionQuestion(1)).
		QueueVerdict(verdict(true, "3/4")).
		QueueQuestion(fractionQuestion(2))
	s := New(svc, nil, nil)
	drain(s, s.Init())

	// Submit but hold the verify response back.
	_, chooseCmd := s.Update(keyPress('2'))
	chosen := chooseCmd()
	_, verifyCmd := s.Update(chosen)
	if !s.State().Verifying() {
		t.Fatalf("phase = %s, want verifying", s.State().Phase())
	}

	press(s, keyPress('r'))
	if s.State().Phase() != tutor.PhaseAwaitingAnswer {
		t.Fatalf("phase after restart = %s, want awaiting-answer", s.State().Phase())
	}
	gen := s.State().Generation()

	drain(s, verifyCmd)

	if s.State().Phase() != tutor.PhaseAwaitingAnswer || s.State().Result() != nil {
		t.Errorf("stale verdict applied: phase = %s", s.State().Phase())
	}
	if s.State().Generation() != gen {
		t.Errorf("generation changed to %d", s.State().Generation())
	}
	if q := s.State().Question(); q == nil || q.ID != assess.IDFromInt(2) {
		t.Errorf("question = %+v, want id 2", q)
	}
}

func TestFailureAndRetry(t *testing.T) {
	svc := assess.NewMockService().
		QueueError(assess.OpFetchQuestion, &assess.ErrTransport{Op: assess.OpFetchQuestion, Err: errors.New("connection refused")}).
		QueueQuestion(fractionQuestion(1))
	s := New(svc, nil, nil)
	drain(s, s.Init())

	if !s.State().Failed() {
		t.Fatalf("phase = %s, want failed", s.State().Phase())
	}
	out := view(s)
	if !strings.Contains(out, "Could not reach the tutoring service.") {
		t.Errorf("failure not described:\n%s", out)
	}

	press(s, keyPress('t'))

	if s.State().Phase() != tutor.PhaseAwaitingAnswer {
		t.Errorf("phase after retry = %s, want awaiting-answer", s.State().Phase())
	}
}

func TestExplainAfterVerdict(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(fractionQuestion(1)).
		QueueVerdict(verdict(false, "3/4"))
	explainer := &stubExplainer{}
	s := New(svc, nil, explainer)
	drain(s, s.Init())
	press(s, keyPress('1'))

	press(s, keyPress('e'))
	press(s, keyPress('e'))

	if explainer.calls != 1 {
		t.Errorf("explainer called %d times, want 1", explainer.calls)
	}
	out := view(s)
	if !strings.Contains(out, "Because 3/4 is right.") || !strings.Contains(out, "Tip: Draw it.") {
		t.Errorf("explanation not shown:\n%s", out)
	}
}

func TestExplanationDroppedAfterNext(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(fractionQuestion(1)).
		QueueVerdict(verdict(false, "3/4")).
		QueueQuestion(fractionQuestion(2))
	s := New(svc, nil, &stubExplainer{})
	drain(s, s.Init())
	press(s, keyPress('1'))

	_, cmd := s.Update(keyPress('e'))
	press(s, keyPress('n'))
	drain(s, cmd)

	if strings.Contains(view(s), "Because") {
		t.Errorf("explanation for the previous question shown:\n%s", view(s))
	}
}

func TestExplainErrorShown(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(fractionQuestion(1)).
		QueueVerdict(verdict(true, "3/4"))
	s := New(svc, nil, &stubExplainer{err: errors.New("provider down")})
	drain(s, s.Init())
	press(s, keyPress('2'))
	press(s, keyPress('e'))

	if !strings.Contains(view(s), "Could not get an explanation: provider down") {
		t.Errorf("explain error not shown:\n%s", view(s))
	}
}

func TestExplainDisabledWithoutExplainer(t *testing.T) {
	svc := assess.NewMockService().
		QueueQuestion(fractionQuestion(1)).
		QueueVerdict(verdict(true, "3/4"))
	s := New(svc, nil, nil)
	drain(s, s.Init())
	press(s, keyPress('2'))

	if _, cmd := s.Update(keyPress('e')); cmd != nil {
		t.Error("explain issued a command without an explainer")
	}
	for _, h := range s.KeyHints() {
		if h.Key == "e" {
			t.Error("explain hint shown without an explainer")
		}
	}
}

func TestJournalRecordsSession(t *testing.T) {
	repo := &mockEventRepo{}
	svc := assess.NewMockService().
		QueueQuestion(fractionQuestion(1)).
		QueueVerdict(verdict(false, "3/4"))
	s := New(svc, newJournal(repo), nil)
	drain(s, s.Init())
	press(s, keyPress('1'))
	s.Close()
	s.Close()

	got := repo.actions()
	want := []string{store.ActionStart, store.ActionEnd}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("session actions = %v, want %v", got, want)
	}
	if len(repo.answerEvents) != 1 {
		t.Fatalf("answer events = %d, want 1", len(repo.answerEvents))
	}
	a := repo.answerEvents[0]
	if a.ChosenAnswer != "2/6" || a.CorrectAnswer != "3/4" || a.Correct || a.Skill != "fracciones" {
		t.Errorf("unexpected answer event %+v", a)
	}
	if len(repo.predictionEvents) != 2 {
		t.Errorf("prediction events = %d, want 2", len(repo.predictionEvents))
	}
}
