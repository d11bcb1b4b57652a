package llm

import (
	"errors"
	"fmt"
)

var (
	ErrNoBody        = errors.New("response has no body")
	ErrStalled       = errors.New("stream stalled")
	ErrEmptyResponse = errors.New("model returned no text")
)

// StatusError is a non-success HTTP response from the chat endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}
