// Package apperr defines the error kinds shared by the RFP services and
// their mapping onto HTTP status codes.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrMalformedResponse   = errors.New("malformed completion response")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrTimeout             = errors.New("upstream timed out")
	ErrNotFound            = errors.New("not found")
	ErrPersistence         = errors.New("persistence failure")
)

// Validation builds an ErrValidation with a caller supplied reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound reports a missing entity, e.g. NotFound("rfp", 12).
func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

func Malformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
}

// Upstream wraps a failure of an external dependency (completion provider,
// mail server). Deadline and network timeouts also match ErrTimeout.
func Upstream(op string, err error) error {
	if isTimeout(err) {
		return Timeout(op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
}

func Timeout(op string, err error) error {
	return fmt.Errorf("%s: %w: %w: %w", op, ErrUpstreamUnavailable, ErrTimeout, err)
}

func Persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// HTTPStatus maps an error onto the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMalformedResponse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Kind returns a short machine readable label for the error.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}
