package remote

import "fmt"

// APIError is a non-2xx response from the upstream rental API. Message
// carries the server-provided "message" field when one was present, so the
// caller can surface it directly.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote api: unexpected status %d", e.StatusCode)
}
