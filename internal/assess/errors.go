package assess

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Op names one of the three operations of the assessment service.
type Op string

const (
	OpFetchQuestion Op = "fetch-question"
	OpVerifyAnswer  Op = "verify-answer"
	OpReset         Op = "reset"
)

// ErrTransport indicates the request never produced a response
// (connection refused, DNS failure, timeout).
type ErrTransport struct {
	Op  Op
	Err error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("%s: assessment service unreachable: %v", e.Op, e.Err)
}

func (e *ErrTransport) Unwrap() error { return e.Err }

// ErrStatus indicates the service answered with a non-2xx status code.
type ErrStatus struct {
	Op   Op
	Code int
	Body string
}

func (e *ErrStatus) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: assessment service returned %d: %s", e.Op, e.Code, e.Body)
	}
	return fmt.Sprintf("%s: assessment service returned %d", e.Op, e.Code)
}

// ErrMalformedResponse indicates the response body was not valid JSON or
// did not have the expected shape.
type ErrMalformedResponse struct {
	Op      Op
	Content json.RawMessage
	Err     error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *ErrStatus
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// Describe returns a short user-facing description of err.
func Describe(err error) string {
	var (
		te *ErrTransport
		se *ErrStatus
		me *ErrMalformedResponse
	)
	switch {
	case errors.As(err, &te):
		return "Could not reach the tutoring service."
	case errors.As(err, &se):
		return fmt.Sprintf("The tutoring service returned an error (%d).", se.Code)
	case errors.As(err, &me):
		return "The tutoring service sent a response we could not understand."
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}
