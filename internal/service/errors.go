package service

import "errors"

// Kind classifies a service failure. The API layer maps kinds to HTTP
// status codes; everything unclassified is internal.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// Error is the failure type every service method returns. Message is
// safe to surface to the client; cause, when set, is the underlying store
// or system error and stays in the logs.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// KindOf extracts the kind from err, defaulting to KindInternal for
// unclassified errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func Invalid(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Internal wraps a store or system failure. The client-visible message is
// generic; err is preserved for logging and errors.Is checks.
func Internal(err error, msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: err}
}
