// Package explain asks an LLM why the correct answer to a quiz question is
// correct.
package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/llm"
)

// ErrNoVerdict is returned when Explain is called without a judged answer.
var ErrNoVerdict = errors.New("explain: question has no verdict yet")

// Input is one judged answer.
type Input struct {
	Question assess.Question
	Chosen   string
	Result   assess.AnswerResult
}

// Explanation is a short justification of the correct answer plus an
// optional study tip.
type Explanation struct {
	Text        string
	Tip         string
	Model       string
	GeneratedAt time.Time
}

// Config holds explanation generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns defaults sized for two or three sentences.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   400,
		Temperature: 0.3,
	}
}

// Service generates explanations.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates an explanation service on top of provider.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

type explanationOutput struct {
	Explanation string `json:"explanation"`
	Tip         string `json:"tip"`
}

// Explain returns an explanation of in.Result.CorrectAnswer.
func (s *Service) Explain(ctx context.Context, in Input) (*Explanation, error) {
	if in.Result.CorrectAnswer == "" {
		return nil, ErrNoVerdict
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeExplain)
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMessage(in)}},
		Schema:      Schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}

	var out explanationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse explanation: %w", err)
	}

	return &Explanation{
		Text:        strings.TrimSpace(out.Explanation),
		Tip:         strings.TrimSpace(out.Tip),
		Model:       resp.Model,
		GeneratedAt: time.Now(),
	}, nil
}
