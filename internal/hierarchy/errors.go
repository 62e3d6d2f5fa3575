package hierarchy

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("node not found")
	ErrUnavailable = errors.New("storage provider unavailable")
	ErrRateLimited = errors.New("storage provider rate limited")
)

// ErrorKind returns a short label for err, used in logs and metrics
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "unknown"
	}
}
