package service

import (
	"context"
	"errors"
	"net"

	"cors-proxy-go/internal/client"
)

// ErrMissingTarget is returned when the url query parameter is absent or empty.
var ErrMissingTarget = errors.New("URL parameter is required")

// ErrInvalidBody is returned when a POST body does not parse as its declared content type.
var ErrInvalidBody = errors.New("invalid request body")

// UpstreamError wraps a transport-level failure of the outbound call, or a
// response body over the configured cap.
// Upstream HTTP error statuses never produce an UpstreamError.
type UpstreamError struct {
	Method  string
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string { return e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

// Kind returns the metrics label for the failure.
func (e *UpstreamError) Kind() string {
	switch {
	case e.Timeout:
		return "timeout"
	case errors.Is(e.Err, client.ErrBodyTooLarge):
		return "too_large"
	default:
		return "transport"
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
