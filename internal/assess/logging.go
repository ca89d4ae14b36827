package assess

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/tutoria/internal/store"
)

// LoggingService is a decorator that records every call against the
// assessment service as an event.
type LoggingService struct {
	inner     Service
	eventRepo store.EventRepo
	target    string
}

var _ Service = (*LoggingService)(nil)

// WithLogging wraps a Service with event logging. target identifies the
// service in the recorded events, usually its base URL.
func WithLogging(svc Service, repo store.EventRepo, target string) Service {
	return &LoggingService{inner: svc, eventRepo: repo, target: target}
}

func (l *LoggingService) FetchQuestion(ctx context.Context) (*QuestionResponse, error) {
	start := time.Now()
	resp, err := l.inner.FetchQuestion(ctx)
	l.record(ctx, OpFetchQuestion, start, err)
	return resp, err
}

func (l *LoggingService) VerifyAnswer(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	start := time.Now()
	resp, err := l.inner.VerifyAnswer(ctx, req)
	l.record(ctx, OpVerifyAnswer, start, err)
	return resp, err
}

func (l *LoggingService) Reset(ctx context.Context) error {
	start := time.Now()
	err := l.inner.Reset(ctx)
	l.record(ctx, OpReset, start, err)
	return err
}

func (l *LoggingService) record(ctx context.Context, op Op, start time.Time, err error) {
	data := store.APICallEventData{
		Operation: string(op),
		Target:    l.target,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if err == nil {
		data.StatusCode = 200
	} else {
		data.StatusCode = StatusCode(err)
		data.ErrorMessage = err.Error()
	}

	// A cancelled call context must not prevent the event from being written.
	if logErr := l.eventRepo.AppendAPICall(context.WithoutCancel(ctx), data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log API call event: %v\n", logErr)
	}
}
