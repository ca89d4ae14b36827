package tutor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/abhisek/tutoria/internal/assess"
)

// Start returns the initial state and the first question fetch.
func Start() (State, Call) {
	s := State{phase: PhaseLoading, pending: assess.OpFetchQuestion}
	return s, s.call(assess.OpFetchQuestion)
}

// load enters Loading and issues a question fetch in the current generation.
func load(s State) (State, *Call) {
	next := State{
		phase:       PhaseLoading,
		predictions: s.predictions,
		generation:  s.generation,
		pending:     assess.OpFetchQuestion,
	}
	call := next.call(assess.OpFetchQuestion)
	return next, &call
}

// RequestQuestion moves on from a shown verdict to the next question.
// It is a no-op in every other phase.
func RequestQuestion(s State) (State, *Call) {
	if s.phase != PhaseAnswered {
		return s, nil
	}
	return load(s)
}

// SelectOption submits option as the answer to the shown question. It is a
// no-op unless a question is awaiting an answer and option is one of its
// options.
func SelectOption(s State, option string) (State, *Call) {
	if s.phase != PhaseAwaitingAnswer || s.question == nil || !s.question.HasOption(option) {
		return s, nil
	}
	next := s
	next.phase = PhaseVerifying
	next.pending = assess.OpVerifyAnswer
	next.chosen = option
	call := next.call(assess.OpVerifyAnswer)
	call.QuestionID = s.question.ID
	call.Answer = option
	return next, &call
}

// Restart abandons the current session from any phase. It advances the
// generation so responses to calls issued before the restart are discarded,
// and issues the reset call. Local state is cleared when the reset resolves.
func Restart(s State) (State, Call) {
	next := State{
		phase:       PhaseLoading,
		predictions: s.predictions,
		generation:  s.generation + 1,
		pending:     assess.OpReset,
	}
	return next, next.call(assess.OpReset)
}

// Retry re-issues the step that failed. A failed reset is retried as a
// restart; any other failure fetches a fresh question. It is a no-op
// outside PhaseFailed.
func Retry(s State) (State, *Call) {
	if s.phase != PhaseFailed {
		return s, nil
	}
	if s.failedOp == assess.OpReset {
		next, call := Restart(s)
		return next, &call
	}
	return load(s)
}

// Outcome is the resolution of one Call. Question is set for fetches and
// Verdict for verifications unless Err is set.
type Outcome struct {
	Call     Call
	Question *assess.QuestionResponse
	Verdict  *assess.VerifyResponse
	Err      error
}

// Stale reports whether o no longer belongs to s: it was issued before a
// restart, or s is not waiting for that operation.
func Stale(s State, o Outcome) bool {
	if o.Call.Generation != s.generation {
		return true
	}
	switch s.phase {
	case PhaseLoading, PhaseVerifying:
		return s.pending != o.Call.Op
	}
	return true
}

// errEmptyResponse marks a successful call that carried no payload.
var errEmptyResponse = errors.New("empty response")

// Apply folds a resolved call into s. It returns the follow-up call, if any.
// Stale outcomes leave s unchanged.
func Apply(s State, o Outcome) (State, *Call) {
	if Stale(s, o) {
		return s, nil
	}
	if o.Err != nil {
		return fail(s, o.Call.Op, o.Err), nil
	}

	switch o.Call.Op {
	case assess.OpFetchQuestion:
		return applyQuestion(s, o.Question), nil

	case assess.OpVerifyAnswer:
		if o.Verdict == nil {
			return fail(s, o.Call.Op, emptyErr(o.Call.Op)), nil
		}
		result := o.Verdict.Result()
		next := s
		next.phase = PhaseAnswered
		next.pending = ""
		next.result = &result
		next.predictions = slices.Clone(o.Verdict.Predictions)
		return next, nil

	case assess.OpReset:
		// The server has forgotten the session; so does the client.
		cleared := State{generation: s.generation}
		return load(cleared)
	}
	return s, nil
}

func applyQuestion(s State, resp *assess.QuestionResponse) State {
	if resp == nil {
		return fail(s, assess.OpFetchQuestion, emptyErr(assess.OpFetchQuestion))
	}

	next := State{
		predictions: slices.Clone(resp.Predictions),
		generation:  s.generation,
	}
	if resp.Completed {
		next.phase = PhaseCompleted
		return next
	}
	if resp.Question == nil {
		next.predictions = s.predictions
		return fail(next, assess.OpFetchQuestion, &assess.ErrMalformedResponse{
			Op:  assess.OpFetchQuestion,
			Err: errors.New("question missing from a non-completed response"),
		})
	}
	q := *resp.Question
	q.Options = slices.Clone(q.Options)
	next.phase = PhaseAwaitingAnswer
	next.question = &q
	return next
}

func fail(s State, op assess.Op, err error) State {
	return State{
		phase:       PhaseFailed,
		predictions: s.predictions,
		generation:  s.generation,
		err:         err,
		failedOp:    op,
	}
}

func emptyErr(op assess.Op) error {
	return fmt.Errorf("%s: %w", op, errEmptyResponse)
}
