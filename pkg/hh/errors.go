package hh

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteUnavailable is returned when the vacancy API cannot be
	// reached at the transport level. Fatal: the run aborts, no retry.
	ErrRemoteUnavailable = errors.New("vacancy API unavailable")

	// ErrMalformedResponse is returned when a detail endpoint body does not
	// decode into the expected shape. For list endpoints a missing items
	// array is end-of-pagination, not an error.
	ErrMalformedResponse = errors.New("malformed API response")
)

// APIError carries the HTTP status of a non-2xx API response.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d) on %s: %s", e.StatusCode, e.Endpoint, e.Message)
}
