package resources

import (
	"context"
	"errors"
	"net/http"

	"learning-resources-backend/internal/hierarchy"
	"learning-resources-backend/internal/traversal"
)

var (
	ErrInvalidFolderID = errors.New("invalid folder id")
	ErrInvalidKind     = errors.New("kind must be folder or file")
)

type ErrorResponse struct {
	StatusCode int
	Message    string
}

// GetErrorResponse returns the HTTP response for err. fallback is the
// message used for provider-side failures.
func GetErrorResponse(err error, fallback string) ErrorResponse {
	switch {
	case errors.Is(err, ErrInvalidFolderID),
		errors.Is(err, traversal.ErrInvalidID),
		errors.Is(err, ErrInvalidKind):
		return ErrorResponse{http.StatusBadRequest, err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorResponse{http.StatusGatewayTimeout, "Request timed out while reading the folder hierarchy."}
	case errors.Is(err, context.Canceled):
		return ErrorResponse{http.StatusServiceUnavailable, "Request cancelled."}
	case errors.Is(err, traversal.ErrRootUnavailable),
		errors.Is(err, hierarchy.ErrNotFound),
		errors.Is(err, hierarchy.ErrUnavailable),
		errors.Is(err, hierarchy.ErrRateLimited):
		return ErrorResponse{http.StatusInternalServerError, fallback}
	default:
		return ErrorResponse{http.StatusInternalServerError, "An unexpected error occurred. Please try again."}
	}
}
