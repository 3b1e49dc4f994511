package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidBaseURL is returned when a base URL option is invalid.
	ErrInvalidBaseURL = errors.New("client: invalid base URL")
	// ErrNilHTTPClient indicates a nil HTTP client was provided.
	ErrNilHTTPClient = errors.New("client: http client cannot be nil")

	// ErrUnauthorized classifies 401/403 responses (bad credentials).
	ErrUnauthorized = errors.New("client: unauthorized")
	// ErrRateLimited classifies 429 responses (provider throttling).
	ErrRateLimited = errors.New("client: rate limited")
	// ErrNetwork classifies transport-level failures.
	ErrNetwork = errors.New("client: network failure")
)

// APIError represents a non-2xx response from the imagery API.
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Raw    []byte `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Title != "" && e.Detail != "":
		return fmt.Sprintf("client: %s (%s)", e.Title, e.Detail)
	case e.Title != "":
		return fmt.Sprintf("client: %s", e.Title)
	case e.Detail != "":
		return fmt.Sprintf("client: %s", e.Detail)
	default:
		return fmt.Sprintf("client: api error status=%d", e.Status)
	}
}

// Unwrap maps well-known statuses to sentinel errors so callers can use
// errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

// Temporary reports whether the error may be retried.
func (e *APIError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.Status >= 500 && e.Status < 600
}
