// Package apperr is the error taxonomy shared by every aggregate.
// Services return *Error values with a stable Kind; handlers map the
// Kind to an HTTP status without inspecting message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	// ForbiddenRole: the principal's role lacks the capability.
	ForbiddenRole Kind = "FORBIDDEN_ROLE"
	// ForbiddenCrossTenant: tenant isolation violated. Deliberately
	// indistinguishable from an authorization failure so existence of
	// other tenants' data never leaks.
	ForbiddenCrossTenant Kind = "FORBIDDEN_CROSS_TENANT"
	NotFound             Kind = "NOT_FOUND"
	Validation           Kind = "VALIDATION_ERROR"
	FineValidation       Kind = "FINE_VALIDATION_ERROR"
	// SideEffect marks recoverable failures (notification, audit,
	// resource sync). Never returned as a primary error; callers log it
	// and continue.
	SideEffect Kind = "SIDE_EFFECT_FAILURE"
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a Kind to the response status the handlers use.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case ForbiddenRole, ForbiddenCrossTenant:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Validation, FineValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
