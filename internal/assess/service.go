package assess

import (
	"context"
	"time"
)

// DefaultBaseURL is the address the assessment service listens on in a
// local deployment.
const DefaultBaseURL = "http://127.0.0.1:5000"

// Service is the client-side abstraction of the remote assessment service.
// Implementations must be safe for use from a single goroutine at a time;
// the session controller never issues two calls concurrently.
type Service interface {
	// FetchQuestion asks for the next question. When the response reports
	// completion, Question is nil.
	FetchQuestion(ctx context.Context) (*QuestionResponse, error)

	// VerifyAnswer submits the chosen option for the question with req.ID.
	VerifyAnswer(ctx context.Context, req VerifyRequest) (*VerifyResponse, error)

	// Reset clears the server-side answer history of the session.
	Reset(ctx context.Context) error
}

// Config holds the connection settings of an HTTPService.
type Config struct {
	// BaseURL is the fixed address of the service, e.g. http://127.0.0.1:5000.
	BaseURL string

	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration
}

// DefaultConfig returns the settings of a local deployment.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: 10 * time.Second,
	}
}
