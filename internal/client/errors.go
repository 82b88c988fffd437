package client

import (
	"errors"
	"strings"
)

// ErrContentExpired matches (via errors.Is) download failures where the provider
// reports the artifact as no longer available.
var ErrContentExpired = errors.New("video content expired")

// APIError is the single error type for non-2xx provider responses.
type APIError struct {
	StatusCode int
	Status     string // HTTP status text, e.g. "404 Not Found"
	Message    string // best-effort human message
	Type       string // provider error type, when the body carried one
}

func (e *APIError) Error() string {
	return e.Message
}

// Is reports ErrContentExpired for expired-download responses.
func (e *APIError) Is(target error) bool {
	return target == ErrContentExpired && e.Expired()
}

// Expired reports whether the message says the artifact is gone.
func (e *APIError) Expired() bool {
	return strings.Contains(e.Message, "no longer available") ||
		strings.Contains(e.Message, "Downloads expire")
}

// errorBody is the provider's JSON error envelope.
type errorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
