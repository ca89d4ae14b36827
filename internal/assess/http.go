package assess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	pathQuestion = "/api/pregunta"
	pathVerify   = "/api/verificar"
	pathReset    = "/api/reiniciar"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20

	// maxErrorBody caps the body excerpt carried by ErrStatus.
	maxErrorBody = 200
)

// HTTPService implements Service over HTTP with JSON bodies.
type HTTPService struct {
	baseURL string
	client  *http.Client
}

var _ Service = (*HTTPService)(nil)

// NewHTTPService creates a client for the service at cfg.BaseURL.
func NewHTTPService(cfg Config) (*HTTPService, error) {
	if err := ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	return &HTTPService{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ValidateBaseURL checks that raw is an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	return nil
}

// BaseURL returns the address requests are sent to.
func (s *HTTPService) BaseURL() string {
	return s.baseURL
}

func (s *HTTPService) FetchQuestion(ctx context.Context) (*QuestionResponse, error) {
	var out QuestionResponse
	if err := s.do(ctx, OpFetchQuestion, http.MethodGet, pathQuestion, nil, &out); err != nil {
		return nil, err
	}
	if out.Predictions == nil {
		out.Predictions = []SkillPrediction{}
	}
	if out.Completed {
		out.Question = nil
	}
	return &out, nil
}

func (s *HTTPService) VerifyAnswer(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	var out VerifyResponse
	if err := s.do(ctx, OpVerifyAnswer, http.MethodPost, pathVerify, req, &out); err != nil {
		return nil, err
	}
	if out.Predictions == nil {
		out.Predictions = []SkillPrediction{}
	}
	return &out, nil
}

func (s *HTTPService) Reset(ctx context.Context) error {
	return s.do(ctx, OpReset, http.MethodPost, pathReset, nil, nil)
}

// do performs one request. A nil out discards the response body.
func (s *HTTPService) do(ctx context.Context, op Op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &ErrTransport{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &ErrTransport{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ErrStatus{Op: op, Code: resp.StatusCode, Body: excerpt(raw)}
	}

	if out == nil {
		return nil
	}

	if err := validateResponse(op, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ErrMalformedResponse{Op: op, Content: raw, Err: err}
	}
	return nil
}

func excerpt(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
