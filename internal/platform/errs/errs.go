package errs

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrNotFound is the generic sentinel for missing resources
	// (unknown order ids, evicted documents).
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned for missing or invalid document-link
	// tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is the generic sentinel for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Kind maps an error to a short stable label for structured logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}

// HTTPStatus maps an error to the status the transport layer should
// answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
