// Package apperr provides the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	// KindInternal is an unexpected failure.
	KindInternal Kind = iota
	// KindUnauthenticated covers missing or bad credentials.
	KindUnauthenticated
	// KindForbidden means the caller lacks the required role.
	KindForbidden
	// KindNotFound means the target does not exist.
	KindNotFound
	// KindInvalidInput covers malformed or missing fields.
	KindInvalidInput
	// KindConflict means the change collides with existing state.
	KindConflict
	// KindInvalidState means the operation is not allowed right now.
	KindInvalidState
)

// String returns a stable name for logs.
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// HTTPStatus maps the kind to a response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput, KindConflict, KindInvalidState:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string // safe to return to clients
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap returns an error of the given kind carrying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Unauthenticated returns a KindUnauthenticated error.
func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }

// Forbidden returns a KindForbidden error.
func Forbidden(msg string) *Error { return New(KindForbidden, msg) }

// NotFound returns a KindNotFound error.
func NotFound(msg string) *Error { return New(KindNotFound, msg) }

// InvalidInput returns a KindInvalidInput error.
func InvalidInput(msg string) *Error { return New(KindInvalidInput, msg) }

// Conflict returns a KindConflict error.
func Conflict(msg string) *Error { return New(KindConflict, msg) }

// InvalidState returns a KindInvalidState error.
func InvalidState(msg string) *Error { return New(KindInvalidState, msg) }

// Internal wraps an unexpected failure.
func Internal(msg string, cause error) *Error { return Wrap(KindInternal, msg, cause) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
