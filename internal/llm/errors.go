package llm

import "fmt"

// APIError wraps a normalizer call failure so callers can distinguish it
// from a malformed-response error without inspecting strings.
type APIError struct {
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func newAPIError(msg string, err error) *APIError {
	return &APIError{Message: msg, Err: err}
}
