// Package apperr defines the error taxonomy shared by all domain services.
// Services return *Error values; the HTTP layer maps each Kind to a status
// code so handlers never hand-pick statuses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	// Internal is the catch-all for unexpected failures.
	Internal Kind = iota
	// Unauthenticated means no valid identity accompanied the request.
	Unauthenticated
	// Forbidden means the identity is valid but not allowed to act.
	Forbidden
	// NotFound means the addressed record does not exist.
	NotFound
	// ValidationFailed means the input is malformed or violates a constraint.
	ValidationFailed
	// InvalidTransition means a state change is not legal from the current state.
	InvalidTransition
	// UpstreamUnavailable means a dependent external service failed.
	UpstreamUnavailable
)

// Error carries a Kind, a human-readable message, and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a kinded error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from an error chain, defaulting to Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is reports whether the error chain carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ToHTTP converts a service error into an echo HTTPError with the status
// mapped from its kind. Internal errors keep a generic message so causes do
// not leak to clients.
func ToHTTP(err error) *echo.HTTPError {
	kind := KindOf(err)
	if kind == Internal {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return echo.NewHTTPError(HTTPStatus(kind), err.Error())
}

// HTTPStatus maps a Kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case ValidationFailed:
		return http.StatusBadRequest
	case InvalidTransition:
		return http.StatusConflict
	case UpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
