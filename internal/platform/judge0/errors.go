package judge0

import (
	"errors"
	"fmt"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// ConfigurationError means the client cannot talk to Judge0 at all.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "judge0 misconfigured: " + e.Reason
}

// PollTimeoutError is returned when the caller's deadline passes before
// the submission reaches a terminal state.
type PollTimeoutError struct {
	Token     string
	LastState State
	Polls     int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("judge0 submission %s still %s after %d polls", e.Token, e.LastState, e.Polls)
}

// TransportError wraps a non-2xx response from Judge0.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("judge0 %s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}
