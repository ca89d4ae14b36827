// Package tutor implements the session controller: the state machine that
// sequences question delivery, answer verification, completion and reset
// against the assessment service.
package tutor

import (
	"slices"

	"github.com/abhisek/tutoria/internal/assess"
)

// Phase is the single value every observable session flag derives from.
type Phase int

const (
	PhaseLoading        Phase = iota // Waiting for a reset or a question
	PhaseAwaitingAnswer              // A question is shown, options are live
	PhaseVerifying                   // An answer is in flight
	PhaseAnswered                    // The verdict is shown
	PhaseCompleted                   // The service reported the session complete
	PhaseFailed                      // The last call failed; waiting for retry
)

var phaseNames = map[Phase]string{
	PhaseLoading:        "loading",
	PhaseAwaitingAnswer: "awaiting-answer",
	PhaseVerifying:      "verifying",
	PhaseAnswered:       "answered",
	PhaseCompleted:      "completed",
	PhaseFailed:         "failed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// State is an immutable snapshot of the session. All transitions return a
// new State; the zero value is not a valid session, use Start.
type State struct {
	phase       Phase
	question    *assess.Question
	result      *assess.AnswerResult
	chosen      string
	predictions []assess.SkillPrediction
	generation  uint64

	// pending is the operation whose response the state is waiting for.
	pending assess.Op

	err      error
	failedOp assess.Op
}

// Phase returns the current phase.
func (s State) Phase() Phase { return s.phase }

// Loading reports whether a reset or a question fetch is in flight.
func (s State) Loading() bool { return s.phase == PhaseLoading }

// Verifying reports whether an answer is in flight.
func (s State) Verifying() bool { return s.phase == PhaseVerifying }

// Completed reports whether the service declared the session complete.
func (s State) Completed() bool { return s.phase == PhaseCompleted }

// Failed reports whether the last call failed.
func (s State) Failed() bool { return s.phase == PhaseFailed }

// Interactive reports whether user input can start a new request.
func (s State) Interactive() bool {
	return s.phase != PhaseLoading && s.phase != PhaseVerifying
}

// Question returns the question on screen, or nil when none is shown.
func (s State) Question() *assess.Question {
	switch s.phase {
	case PhaseAwaitingAnswer, PhaseVerifying, PhaseAnswered:
		return s.question
	}
	return nil
}

// Result returns the verdict of the last answer while it is shown.
func (s State) Result() *assess.AnswerResult {
	if s.phase != PhaseAnswered {
		return nil
	}
	return s.result
}

// Chosen returns the submitted answer while it is verified or judged.
func (s State) Chosen() string {
	switch s.phase {
	case PhaseVerifying, PhaseAnswered:
		return s.chosen
	}
	return ""
}

// Predictions returns a copy of the current prediction set in the order the
// service sent it.
func (s State) Predictions() []assess.SkillPrediction {
	return slices.Clone(s.predictions)
}

// Generation returns the session generation. It advances on every restart.
func (s State) Generation() uint64 { return s.generation }

// Pending returns the operation the state is waiting on, if any.
func (s State) Pending() assess.Op { return s.pending }

// Err returns the failure shown in PhaseFailed.
func (s State) Err() error {
	if s.phase != PhaseFailed {
		return nil
	}
	return s.err
}

// FailedOp returns the operation that failed while in PhaseFailed.
func (s State) FailedOp() assess.Op {
	if s.phase != PhaseFailed {
		return ""
	}
	return s.failedOp
}

// Call describes one request to issue against the assessment service.
// Generation is the session generation current when the call was issued.
type Call struct {
	Op         assess.Op
	Generation uint64
	QuestionID assess.QuestionID
	Answer     string
}

func (s State) call(op assess.Op) Call {
	return Call{Op: op, Generation: s.generation}
}
