// Package apperr defines the stable, machine-readable error kinds the
// battle engine reports to callers. Every HTTP error response carries a
// kind plus a human-readable message so clients can branch without parsing
// message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an engine failure.
type Kind string

const (
	Unauthorized    Kind = "unauthorized"
	Forbidden       Kind = "forbidden"
	NotFound        Kind = "not_found"
	QuotaExceeded   Kind = "quota_exceeded"
	ContentRejected Kind = "content_rejected"
	ValidationError Kind = "validation_error"
	Internal        Kind = "internal"
)

// Error is the engine's error type. ContentRejected errors additionally
// carry the itemized violations from text screening.
type Error struct {
	Kind       Kind
	Message    string
	Violations []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New creates an Error with the given kind and formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Rejected creates a ContentRejected error carrying the itemized violations.
func Rejected(message string, violations []string) *Error {
	return &Error{Kind: ContentRejected, Message: message, Violations: violations}
}

// KindOf extracts the kind from err, defaulting to Internal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case QuotaExceeded:
		return http.StatusTooManyRequests
	case ContentRejected, ValidationError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
