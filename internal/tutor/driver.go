package tutor

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/tutoria/internal/assess"
)

// Execute performs call against svc and reports its resolution.
func Execute(ctx context.Context, svc assess.Service, call Call) Outcome {
	o := Outcome{Call: call}
	switch call.Op {
	case assess.OpFetchQuestion:
		o.Question, o.Err = svc.FetchQuestion(ctx)
	case assess.OpVerifyAnswer:
		o.Verdict, o.Err = svc.VerifyAnswer(ctx, assess.VerifyRequest{ID: call.QuestionID, Answer: call.Answer})
	case assess.OpReset:
		o.Err = svc.Reset(ctx)
	default:
		o.Err = fmt.Errorf("unknown operation %q", call.Op)
	}
	return o
}

// Observer is notified after every applied outcome. prev is the state the
// outcome was applied to; Elapsed is the call latency.
type Observer interface {
	Applied(ctx context.Context, prev State, o Outcome, next State, elapsed time.Duration)
}

// Driver runs the session loop synchronously: every action issues its call,
// waits for the resolution and applies it, following up until the session
// settles in a phase that waits for the user.
type Driver struct {
	svc      assess.Service
	observer Observer
	state    State
}

// NewDriver creates a Driver. observer may be nil.
func NewDriver(svc assess.Service, observer Observer) *Driver {
	return &Driver{svc: svc, observer: observer}
}

// State returns the current state.
func (d *Driver) State() State {
	return d.state
}

// Start begins the session with the first question fetch.
func (d *Driver) Start(ctx context.Context) State {
	s, call := Start()
	return d.run(ctx, s, &call)
}

// Select submits option as the answer to the shown question.
func (d *Driver) Select(ctx context.Context, option string) State {
	s, call := SelectOption(d.state, option)
	return d.run(ctx, s, call)
}

// Next requests the next question after a verdict.
func (d *Driver) Next(ctx context.Context) State {
	s, call := RequestQuestion(d.state)
	return d.run(ctx, s, call)
}

// Restart resets the remote session and starts over.
func (d *Driver) Restart(ctx context.Context) State {
	s, call := Restart(d.state)
	return d.run(ctx, s, &call)
}

// Retry re-issues the failed step.
func (d *Driver) Retry(ctx context.Context) State {
	s, call := Retry(d.state)
	return d.run(ctx, s, call)
}

func (d *Driver) run(ctx context.Context, s State, call *Call) State {
	d.state = s
	for call != nil {
		start := time.Now()
		o := Execute(ctx, d.svc, *call)
		elapsed := time.Since(start)

		prev := d.state
		d.state, call = Apply(prev, o)
		if d.observer != nil {
			d.observer.Applied(ctx, prev, o, d.state, elapsed)
		}
	}
	return d.state
}
