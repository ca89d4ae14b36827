package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on top of the ent SQL builder and the global
// sequence counter.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

// insert appends one row to table, prefixed with the sequence and timestamp
// columns every event carries.
func (r *eventRepo) insert(ctx context.Context, table string, cols []string, vals []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	columns := append([]string{"sequence", "timestamp"}, cols...)
	values := append([]any{seqNum, time.Now().UTC().UnixMilli()}, vals...)

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(table).
		Columns(columns...).
		Values(values...).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	return r.insert(ctx, tableSessionEvents,
		[]string{"session_id", "action", "api_url", "questions_served", "correct_answers", "duration_secs"},
		[]any{data.SessionID, data.Action, data.APIURL, data.QuestionsServed, data.CorrectAnswers, data.DurationSecs},
	)
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	return r.insert(ctx, tableAnswerEvents,
		[]string{"session_id", "question_id", "question_text", "skill", "chosen_answer", "correct_answer", "correct", "latency_ms"},
		[]any{data.SessionID, data.QuestionID, data.QuestionText, data.Skill, data.ChosenAnswer, data.CorrectAnswer, data.Correct, data.LatencyMs},
	)
}

func (r *eventRepo) AppendPredictionEvent(ctx context.Context, data PredictionEventData) error {
	preds := data.Predictions
	if preds == nil {
		preds = []PredictionData{}
	}
	b, err := json.Marshal(preds)
	if err != nil {
		return fmt.Errorf("marshal predictions: %w", err)
	}
	return r.insert(ctx, tablePredictionEvents,
		[]string{"session_id", "source", "predictions"},
		[]any{data.SessionID, data.Source, string(b)},
	)
}

func (r *eventRepo) AppendAPICall(ctx context.Context, data APICallEventData) error {
	return r.insert(ctx, tableAPICallEvents,
		[]string{"operation", "target", "latency_ms", "success", "status_code", "error_message"},
		[]any{data.Operation, data.Target, data.LatencyMs, data.Success, data.StatusCode, data.ErrorMessage},
	)
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.insert(ctx, tableLLMEvents,
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body"},
		[]any{data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody},
	)
}
