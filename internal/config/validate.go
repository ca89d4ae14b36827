package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/llm"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

var knownProviders = []string{
	"", ProviderNone,
	llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini, llm.ProviderOpenRouter, llm.ProviderMock,
}

// Validate reports every invalid field at once.
func Validate(cfg Config) error {
	var issues []Issue
	if err := assess.ValidateBaseURL(cfg.APIURL); err != nil {
		issues = append(issues, Issue{Field: "api_url", Message: err.Error()})
	}
	if cfg.Timeout <= 0 {
		issues = append(issues, Issue{Field: "timeout", Message: "must be positive"})
	}
	if !slices.Contains(knownProviders, cfg.LLMProvider) {
		issues = append(issues, Issue{Field: "llm_provider", Message: fmt.Sprintf("unknown provider %q", cfg.LLMProvider)})
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
