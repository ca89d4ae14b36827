package tutor

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/store"
)

// Journal is an Observer that records the session into the local event
// store. Recording failures are reported as warnings and never interrupt
// the session.
type Journal struct {
	repo      store.EventRepo
	sessionID string
	apiURL    string

	started time.Time
	served  int
	correct int

	// Warnings receives recording failures. Defaults to os.Stderr.
	Warnings io.Writer
}

var _ Observer = (*Journal)(nil)

// NewJournal creates a Journal for one session.
func NewJournal(repo store.EventRepo, sessionID, apiURL string) *Journal {
	return &Journal{
		repo:      repo,
		sessionID: sessionID,
		apiURL:    apiURL,
		Warnings:  os.Stderr,
	}
}

// SessionID returns the identifier events are recorded under.
func (j *Journal) SessionID() string {
	return j.sessionID
}

// Served returns the number of questions served since the last restart.
func (j *Journal) Served() int { return j.served }

// Correct returns the number of correct answers since the last restart.
func (j *Journal) Correct() int { return j.correct }

// Begin records the session start.
func (j *Journal) Begin(ctx context.Context) {
	j.started = time.Now()
	j.sessionEvent(ctx, store.ActionStart)
}

// End records the session end with its totals.
func (j *Journal) End(ctx context.Context) {
	j.sessionEvent(ctx, store.ActionEnd)
}

func (j *Journal) Applied(ctx context.Context, prev State, o Outcome, next State, elapsed time.Duration) {
	if Stale(prev, o) || o.Err != nil {
		return
	}

	switch o.Call.Op {
	case assess.OpFetchQuestion:
		if o.Question == nil {
			return
		}
		j.predictions(ctx, store.SourceQuestion, o.Question.Predictions)
		switch next.Phase() {
		case PhaseAwaitingAnswer:
			j.served++
		case PhaseCompleted:
			j.sessionEvent(ctx, store.ActionComplete)
		}

	case assess.OpVerifyAnswer:
		if o.Verdict == nil {
			return
		}
		result := o.Verdict.Result()
		if result.IsCorrect() {
			j.correct++
		}
		data := store.AnswerEventData{
			SessionID:     j.sessionID,
			QuestionID:    o.Call.QuestionID.String(),
			ChosenAnswer:  o.Call.Answer,
			CorrectAnswer: result.CorrectAnswer,
			Correct:       result.IsCorrect(),
			LatencyMs:     elapsed.Milliseconds(),
		}
		if q := prev.Question(); q != nil {
			data.QuestionText = q.Text
			data.Skill = q.Skill
		}
		if err := j.repo.AppendAnswerEvent(ctx, data); err != nil {
			j.warn("answer", err)
		}
		j.predictions(ctx, store.SourceVerify, o.Verdict.Predictions)

	case assess.OpReset:
		j.sessionEvent(ctx, store.ActionRestart)
		j.served, j.correct = 0, 0
	}
}

func (j *Journal) sessionEvent(ctx context.Context, action string) {
	data := store.SessionEventData{
		SessionID:       j.sessionID,
		Action:          action,
		APIURL:          j.apiURL,
		QuestionsServed: j.served,
		CorrectAnswers:  j.correct,
	}
	if !j.started.IsZero() {
		data.DurationSecs = int(time.Since(j.started).Seconds())
	}
	if err := j.repo.AppendSessionEvent(ctx, data); err != nil {
		j.warn("session "+action, err)
	}
}

func (j *Journal) predictions(ctx context.Context, source string, preds []assess.SkillPrediction) {
	data := store.PredictionEventData{
		SessionID:   j.sessionID,
		Source:      source,
		Predictions: make([]store.PredictionData, len(preds)),
	}
	for i, p := range preds {
		data.Predictions[i] = store.PredictionData{Skill: p.Skill, Probability: p.MasteryProbability}
	}
	if err := j.repo.AppendPredictionEvent(ctx, data); err != nil {
		j.warn("predictions", err)
	}
}

func (j *Journal) warn(what string, err error) {
	if j.Warnings != nil {
		fmt.Fprintf(j.Warnings, "warning: failed to record %s event: %v\n", what, err)
	}
}
