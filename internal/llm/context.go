package llm

import "context"

// Purposes recorded with LLM request events.
const (
	PurposeExplain = "explain"
	PurposeUnknown = "unknown"
)

type contextKey struct{}

// WithPurpose labels the requests made with ctx for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, contextKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(contextKey{}).(string); ok && v != "" {
		return v
	}
	return PurposeUnknown
}
