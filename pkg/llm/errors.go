package llm

import (
	"errors"
	"fmt"
)

// ParseError reports a completion that could not be interpreted.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return "Failed to parse agent response: " + e.Cause.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError wraps cause as a ParseError.
func NewParseError(cause error) *ParseError {
	return &ParseError{Cause: cause}
}

// TransportError reports a failed chat request. StatusCode is zero when no
// HTTP response was received.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("LLM request failed with status %d: %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Body != "":
		return fmt.Sprintf("LLM request failed with status %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("LLM request failed with status %d", e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
