package http

import (
	"errors"
	"fmt"
)

// HTTPError indicates a non-2xx HTTP response.
type HTTPError struct {
	// StatusCode is the HTTP status code
	StatusCode int
	// Body is the response body
	Body []byte
}

// Error returns a string representation of the HTTP error.
func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("http error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status %d: %s", e.StatusCode, e.Body)
}

// Sentinel errors for HTTP operations.
var (
	// ErrRequestFailed indicates the request never produced a response (network error).
	ErrRequestFailed = errors.New("http request failed")

	// ErrReadBody indicates the response arrived but its body could not be read.
	ErrReadBody = errors.New("read response body")
)
