package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations.
var (
	// ErrUpstreamUnavailable indicates the upstream host could not be reached.
	ErrUpstreamUnavailable = errors.New("catalog: upstream unavailable")
	// ErrUpstream indicates the upstream answered with a non-success status.
	// Use errors.As with *UpstreamError for the status and body.
	ErrUpstream = errors.New("catalog: upstream error")
	// ErrUpstreamProtocol indicates any other failure fetching or parsing a page.
	ErrUpstreamProtocol = errors.New("catalog: upstream protocol error")
	// ErrNotFound indicates the video is not in the catalog.
	ErrNotFound = errors.New("catalog: video not found")
	// ErrInvalidPage indicates a page number below 1.
	ErrInvalidPage = errors.New("catalog: invalid page number")
)

// UpstreamError describes a non-success response from the catalog API.
//
//	var upErr *catalog.UpstreamError
//	if errors.As(err, &upErr) {
//		fmt.Printf("page %d failed with %d\n", upErr.Page, upErr.StatusCode)
//	}
type UpstreamError struct {
	// Page is the page number that was requested.
	Page int
	// StatusCode is the HTTP status returned by the upstream.
	StatusCode int
	// Body is the raw response body.
	Body string
}

// Error returns a string representation of the upstream error.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("catalog: unable to fetch page %d: status code %d: %s", e.Page, e.StatusCode, e.Body)
}

// Unwrap returns ErrUpstream so errors.Is(err, ErrUpstream) holds.
func (e *UpstreamError) Unwrap() error { return ErrUpstream }
