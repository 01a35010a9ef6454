package service

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to test an error's kind.
var (
	// ErrTransport reports a failure reaching the remote store.
	ErrTransport = errors.New("transport error")

	// ErrValidation reports that the remote store rejected or returned a malformed record.
	ErrValidation = errors.New("validation error")

	// ErrNotFound reports an operation targeting an unknown task.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized reports a missing or wrong photo passphrase or API token.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a remote store failure tagged with its kind.
type Error struct {
	Kind error
	Msg  string
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Transportf returns a transport error.
func Transportf(cause error, format string, args ...any) *Error {
	return newError(ErrTransport, cause, format, args...)
}

// Validationf returns a validation error.
func Validationf(cause error, format string, args ...any) *Error {
	return newError(ErrValidation, cause, format, args...)
}

// NotFoundf returns a not-found error.
func NotFoundf(format string, args ...any) *Error {
	return newError(ErrNotFound, nil, format, args...)
}

// Unauthorizedf returns an unauthorized error.
func Unauthorizedf(format string, args ...any) *Error {
	return newError(ErrUnauthorized, nil, format, args...)
}

// AsError normalizes err into an *Error. Errors of unknown origin are
// classified as transport errors. Returns nil for a nil err.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Transportf(err, "%s", err.Error())
}

// KindName returns a short name for the error's kind.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "transport"
	}
}
