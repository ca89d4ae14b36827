package session

import (
	"context"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/explain"
	"github.com/abhisek/tutoria/internal/screen"
	"github.com/abhisek/tutoria/internal/tutor"
	"github.com/abhisek/tutoria/internal/ui/components"
	"github.com/abhisek/tutoria/internal/ui/layout"
	"github.com/abhisek/tutoria/internal/ui/theme"
)

// Explainer produces a short explanation of a judged answer.
type Explainer interface {
	Explain(ctx context.Context, in explain.Input) (*explain.Explanation, error)
}

// SessionScreen runs one quiz session against the assessment service. Calls
// are issued as commands and fold back in through tutor.Apply, so responses
// from before a restart are dropped by the controller itself.
type SessionScreen struct {
	svc       assess.Service
	journal   *tutor.Journal
	explainer Explainer

	keys    keyMap
	spinner spinner.Model
	ticking bool

	state   tutor.State
	options components.OptionList

	explainSeq  uint64
	explaining  bool
	explanation *explain.Explanation
	explainErr  error

	closed bool
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.Closer = (*SessionScreen)(nil)

// New creates a SessionScreen. journal and explainer may be nil; without an
// explainer the explain action is hidden.
func New(svc assess.Service, journal *tutor.Journal, explainer Explainer) *SessionScreen {
	keys := newKeyMap()
	keys.Explain.SetEnabled(explainer != nil)

	return &SessionScreen{
		svc:       svc,
		journal:   journal,
		explainer: explainer,
		keys:      keys,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	if s.journal != nil {
		s.journal.Begin(context.Background())
	}
	state, call := tutor.Start()
	return s.transition(state, &call)
}

func (s *SessionScreen) Title() string {
	return "Session"
}

// State returns the controller state.
func (s *SessionScreen) State() tutor.State {
	return s.state
}

// Close records the end of the session. It is safe to call more than once.
func (s *SessionScreen) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.journal != nil {
		s.journal.End(context.Background())
	}
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch s.state.Phase() {
	case tutor.PhaseAwaitingAnswer:
		return hints(s.keys.Pick, s.keys.Restart, s.keys.Back)
	case tutor.PhaseAnswered:
		return hints(s.keys.Next, s.keys.Explain, s.keys.Restart, s.keys.Back)
	case tutor.PhaseFailed:
		return hints(s.keys.Retry, s.keys.Restart, s.keys.Back)
	case tutor.PhaseCompleted:
		retake := s.keys.Restart
		retake.SetHelp("r", "Retake")
		return hints(retake, s.keys.Back)
	}
	return hints(s.keys.Restart, s.keys.Back)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case outcomeMsg:
		return s, s.apply(msg)

	case explanationMsg:
		s.handleExplanation(msg)
		return s, nil

	case components.OptionChosenMsg:
		next, call := tutor.SelectOption(s.state, msg.Option)
		return s, s.transition(next, call)

	case spinner.TickMsg:
		if !s.busy() {
			s.ticking = false
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, s.keys.Restart) {
		next, call := tutor.Restart(s.state)
		return s.transition(next, &call)
	}

	switch s.state.Phase() {
	case tutor.PhaseAwaitingAnswer:
		var cmd tea.Cmd
		s.options, cmd = s.options.Update(msg)
		return cmd

	case tutor.PhaseAnswered:
		switch {
		case key.Matches(msg, s.keys.Next):
			return s.transition(tutor.RequestQuestion(s.state))
		case key.Matches(msg, s.keys.Explain):
			return s.requestExplanation()
		}

	case tutor.PhaseFailed:
		if key.Matches(msg, s.keys.Retry) {
			return s.transition(tutor.Retry(s.state))
		}
	}
	return nil
}

// apply folds a resolved call into the state and issues its follow-up.
func (s *SessionScreen) apply(msg outcomeMsg) tea.Cmd {
	prev := s.state
	next, call := tutor.Apply(prev, msg.Outcome)
	if s.journal != nil {
		s.journal.Applied(context.Background(), prev, msg.Outcome, next, msg.Elapsed)
	}
	return s.transition(next, call)
}

// transition installs next and issues call if there is one.
func (s *SessionScreen) transition(next tutor.State, call *tutor.Call) tea.Cmd {
	s.setState(next)
	if call == nil {
		return nil
	}
	return tea.Batch(s.run(*call), s.startSpinner())
}

func (s *SessionScreen) setState(next tutor.State) {
	prevQ := s.state.Question()
	s.state = next

	q := next.Question()
	switch {
	case q == nil:
		s.options = components.OptionList{}
	case prevQ == nil || prevQ.ID != q.ID:
		s.options = components.NewOptionList(q.Options)
	}

	s.options.Disabled = next.Phase() != tutor.PhaseAwaitingAnswer
	s.options.Chosen = next.Chosen()
	s.options.Judged, s.options.ChosenRight, s.options.Correct = false, false, ""
	if r := next.Result(); r != nil {
		s.options.Judged = true
		s.options.ChosenRight = r.IsCorrect()
		s.options.Correct = r.CorrectAnswer
	}

	if next.Phase() != tutor.PhaseAnswered {
		s.explaining = false
		s.explanation = nil
		s.explainErr = nil
	}
}

// run executes call off the update loop.
func (s *SessionScreen) run(call tutor.Call) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		start := time.Now()
		o := tutor.Execute(context.Background(), svc, call)
		return outcomeMsg{Outcome: o, Elapsed: time.Since(start)}
	}
}

func (s *SessionScreen) requestExplanation() tea.Cmd {
	if s.explainer == nil || s.explaining || s.explanation != nil {
		return nil
	}
	q, result := s.state.Question(), s.state.Result()
	if q == nil || result == nil {
		return nil
	}

	s.explainSeq++
	s.explaining = true
	s.explainErr = nil

	seq := s.explainSeq
	explainer := s.explainer
	in := explain.Input{Question: *q, Chosen: s.state.Chosen(), Result: *result}
	return tea.Batch(func() tea.Msg {
		exp, err := explainer.Explain(context.Background(), in)
		return explanationMsg{Seq: seq, Explanation: exp, Err: err}
	}, s.startSpinner())
}

func (s *SessionScreen) handleExplanation(msg explanationMsg) {
	if !s.explaining || msg.Seq != s.explainSeq {
		return
	}
	s.explaining = false
	if msg.Err != nil {
		s.explainErr = msg.Err
		return
	}
	s.explanation = msg.Explanation
}

func (s *SessionScreen) busy() bool {
	return s.state.Loading() || s.state.Verifying() || s.explaining
}

func (s *SessionScreen) startSpinner() tea.Cmd {
	if s.ticking {
		return nil
	}
	s.ticking = true
	return s.spinner.Tick
}
