package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To
}

// Session lifecycle actions.
const (
	ActionStart    = "start"
	ActionRestart  = "restart"
	ActionComplete = "complete"
	ActionEnd      = "end"
)

// Prediction sources.
const (
	SourceQuestion = "question"
	SourceVerify   = "verify"
)

// SessionEventData captures a session lifecycle event.
type SessionEventData struct {
	SessionID       string
	Action          string
	APIURL          string
	QuestionsServed int
	CorrectAnswers  int
	DurationSecs    int
}

// AnswerEventData captures one verified answer.
type AnswerEventData struct {
	SessionID     string
	QuestionID    string
	QuestionText  string
	Skill         string
	ChosenAnswer  string
	CorrectAnswer string
	Correct       bool
	LatencyMs     int64
}

// PredictionData is a single stored skill estimate.
type PredictionData struct {
	Skill       string  `json:"skill"`
	Probability float64 `json:"probability"`
}

// PredictionEventData captures the prediction set returned by one response.
type PredictionEventData struct {
	SessionID   string
	Source      string
	Predictions []PredictionData
}

// APICallEventData captures one call against the assessment service.
type APICallEventData struct {
	Operation    string
	Target       string
	LatencyMs    int64
	Success      bool
	StatusCode   int
	ErrorMessage string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendPredictionEvent(ctx context.Context, data PredictionEventData) error
	AppendAPICall(ctx context.Context, data APICallEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// SessionSummaryRecord is one row of the session history.
type SessionSummaryRecord struct {
	SessionID      string
	Timestamp      time.Time
	APIURL         string
	Answered       int
	CorrectAnswers int
	Restarts       int
	Completed      bool
	Profile        []PredictionData
}

// AnswerEventRecord is a stored answer event.
type AnswerEventRecord struct {
	Sequence      int64
	Timestamp     time.Time
	SessionID     string
	QuestionID    string
	QuestionText  string
	Skill         string
	ChosenAnswer  string
	CorrectAnswer string
	Correct       bool
	LatencyMs     int64
}

// APICallRecord is a stored assessment API call.
type APICallRecord struct {
	Sequence     int64
	Timestamp    time.Time
	Operation    string
	Target       string
	LatencyMs    int64
	Success      bool
	StatusCode   int
	ErrorMessage string
}

// APIUsage aggregates API calls per operation.
type APIUsage struct {
	Operation    string
	Calls        int
	Failures     int
	AvgLatencyMs int64
	MaxLatencyMs int64
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID           int
	Sequence     int64
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMUsage aggregates LLM requests per purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// HistoryRepo provides read access for the history views and CLI reports.
type HistoryRepo interface {
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error)
	QueryAnswers(ctx context.Context, sessionID string) ([]AnswerEventRecord, error)
	QueryAPICalls(ctx context.Context, opts QueryOpts) ([]APICallRecord, error)
	APIUsageByOperation(ctx context.Context) ([]APIUsage, error)
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
}
