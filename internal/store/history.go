package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// historyRepo implements HistoryRepo with ent SQL selectors.
type historyRepo struct {
	drv *entsql.Driver
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// selectFrom starts a selector over table with the given columns.
func selectFrom(table string, columns ...string) *entsql.Selector {
	b := builder()
	return b.Select(columns...).From(b.Table(table))
}

// applyOpts adds time-range and limit constraints to sel.
func applyOpts(sel *entsql.Selector, opts QueryOpts) *entsql.Selector {
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC().UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC().UnixMilli()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

// each runs sel and calls scan once per row.
func (r *historyRepo) each(ctx context.Context, sel *entsql.Selector, scan func(rows *entsql.Rows) error) error {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func anySlice(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func (r *historyRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error) {
	sel := selectFrom(tableSessionEvents, "session_id", "timestamp", "api_url").
		Where(entsql.EQ("action", ActionStart)).
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)

	var sessions []SessionSummaryRecord
	index := make(map[string]int)
	err := r.each(ctx, sel, func(rows *entsql.Rows) error {
		var rec SessionSummaryRecord
		var ts int64
		if err := rows.Scan(&rec.SessionID, &ts, &rec.APIURL); err != nil {
			return err
		}
		rec.Timestamp = fromMillis(ts)
		index[rec.SessionID] = len(sessions)
		sessions = append(sessions, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session starts: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.SessionID)
	}

	// Lifecycle actions.
	sel = selectFrom(tableSessionEvents, "session_id", "action").
		Where(entsql.In("session_id", anySlice(ids)...)).
		OrderBy("sequence")
	err = r.each(ctx, sel, func(rows *entsql.Rows) error {
		var id, action string
		if err := rows.Scan(&id, &action); err != nil {
			return err
		}
		s := &sessions[index[id]]
		switch action {
		case ActionRestart:
			s.Restarts++
			s.Completed = false
		case ActionComplete:
			s.Completed = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session actions: %w", err)
	}

	// Answer counts.
	sel = selectFrom(tableAnswerEvents, "session_id", "correct").
		Where(entsql.In("session_id", anySlice(ids)...))
	err = r.each(ctx, sel, func(rows *entsql.Rows) error {
		var id string
		var correct bool
		if err := rows.Scan(&id, &correct); err != nil {
			return err
		}
		s := &sessions[index[id]]
		s.Answered++
		if correct {
			s.CorrectAnswers++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session answers: %w", err)
	}

	// Latest prediction set per session.
	sel = selectFrom(tablePredictionEvents, "session_id", "predictions").
		Where(entsql.In("session_id", anySlice(ids)...)).
		OrderBy("sequence")
	err = r.each(ctx, sel, func(rows *entsql.Rows) error {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return err
		}
		var preds []PredictionData
		if err := json.Unmarshal([]byte(raw), &preds); err != nil {
			return fmt.Errorf("decode predictions: %w", err)
		}
		sessions[index[id]].Profile = preds
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session profiles: %w", err)
	}

	return sessions, nil
}

func (r *historyRepo) QueryAnswers(ctx context.Context, sessionID string) ([]AnswerEventRecord, error) {
	sel := selectFrom(tableAnswerEvents,
		"sequence", "timestamp", "session_id", "question_id", "question_text", "skill",
		"chosen_answer", "correct_answer", "correct", "latency_ms").
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence")

	var out []AnswerEventRecord
	err := r.each(ctx, sel, func(rows *entsql.Rows) error {
		var rec AnswerEventRecord
		var ts int64
		if err := rows.Scan(&rec.Sequence, &ts, &rec.SessionID, &rec.QuestionID, &rec.QuestionText,
			&rec.Skill, &rec.ChosenAnswer, &rec.CorrectAnswer, &rec.Correct, &rec.LatencyMs); err != nil {
			return err
		}
		rec.Timestamp = fromMillis(ts)
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	return out, nil
}

func (r *historyRepo) QueryAPICalls(ctx context.Context, opts QueryOpts) ([]APICallRecord, error) {
	sel := selectFrom(tableAPICallEvents,
		"sequence", "timestamp", "operation", "target", "latency_ms", "success", "status_code", "error_message").
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)

	var out []APICallRecord
	err := r.each(ctx, sel, func(rows *entsql.Rows) error {
		var rec APICallRecord
		var ts int64
		if err := rows.Scan(&rec.Sequence, &ts, &rec.Operation, &rec.Target, &rec.LatencyMs,
			&rec.Success, &rec.StatusCode, &rec.ErrorMessage); err != nil {
			return err
		}
		rec.Timestamp = fromMillis(ts)
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query API calls: %w", err)
	}
	return out, nil
}

func (r *historyRepo) APIUsageByOperation(ctx context.Context) ([]APIUsage, error) {
	calls, err := r.QueryAPICalls(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}

	byOp := make(map[string]*APIUsage)
	totals := make(map[string]int64)
	for _, c := range calls {
		u, ok := byOp[c.Operation]
		if !ok {
			u = &APIUsage{Operation: c.Operation}
			byOp[c.Operation] = u
		}
		u.Calls++
		if !c.Success {
			u.Failures++
		}
		if c.LatencyMs > u.MaxLatencyMs {
			u.MaxLatencyMs = c.LatencyMs
		}
		totals[c.Operation] += c.LatencyMs
	}

	out := make([]APIUsage, 0, len(byOp))
	for op, u := range byOp {
		u.AvgLatencyMs = totals[op] / int64(u.Calls)
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out, nil
}

var llmColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

func scanLLMEvent(rows *entsql.Rows) (LLMEventRecord, error) {
	var rec LLMEventRecord
	var ts int64
	err := rows.Scan(&rec.ID, &rec.Sequence, &ts, &rec.Provider, &rec.Model, &rec.Purpose,
		&rec.InputTokens, &rec.OutputTokens, &rec.LatencyMs, &rec.Success, &rec.ErrorMessage,
		&rec.RequestBody, &rec.ResponseBody)
	rec.Timestamp = fromMillis(ts)
	return rec, err
}

func (r *historyRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	sel := selectFrom(tableLLMEvents, llmColumns...).OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)

	var out []LLMEventRecord
	err := r.each(ctx, sel, func(rows *entsql.Rows) error {
		rec, err := scanLLMEvent(rows)
		if err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

// GetLLMEvent returns the event with the given id, or nil if none exists.
func (r *historyRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error) {
	sel := selectFrom(tableLLMEvents, llmColumns...).Where(entsql.EQ("id", id)).Limit(1)

	var found *LLMEventRecord
	err := r.each(ctx, sel, func(rows *entsql.Rows) error {
		rec, err := scanLLMEvent(rows)
		if err != nil {
			return err
		}
		found = &rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return found, nil
}

func (r *historyRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	events, err := r.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}

	byPurpose := make(map[string]*LLMUsage)
	totals := make(map[string]int64)
	for _, e := range events {
		u, ok := byPurpose[e.Purpose]
		if !ok {
			u = &LLMUsage{Purpose: e.Purpose}
			byPurpose[e.Purpose] = u
		}
		u.Calls++
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
		totals[e.Purpose] += e.LatencyMs
	}

	out := make([]LLMUsage, 0, len(byPurpose))
	for p, u := range byPurpose {
		u.AvgLatencyMs = totals[p] / int64(u.Calls)
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Purpose < out[j].Purpose })
	return out, nil
}
