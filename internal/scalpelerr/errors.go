// Package scalpelerr defines the closed set of error kinds every core
// component attributes its failures to, and the single conversion point
// that turns one into a dispatcher response-envelope error code.
package scalpelerr

import "fmt"

// Kind is a closed set of error categories. A component must attribute a
// failure to one of these rather than returning an opaque error; the
// dispatcher never invents a new kind, it only forwards or wraps as
// KindInternal.
type Kind string

const (
	KindInvalidArgument       Kind = "invalid_argument"
	KindInvalidPath           Kind = "invalid_path"
	KindForbidden             Kind = "forbidden"
	KindNotFound              Kind = "not_found"
	KindTimeout               Kind = "timeout"
	KindTooLarge              Kind = "too_large"
	KindResourceExhausted     Kind = "resource_exhausted"
	KindNotImplemented        Kind = "not_implemented"
	KindUpgradeRequired       Kind = "upgrade_required"
	KindDependencyUnavailable Kind = "dependency_unavailable"
	KindInternal              Kind = "internal_error"
)

// Error is an attributed failure. The envelope-facing error code is
// always string(Kind); there is no separately settable code.
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// New builds an attributed error.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches structured detail data (e.g. a violated rule id)
// used to populate the envelope's error.details field.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// InvalidPath reports a root/path that does not exist.
func InvalidPath(path string) *Error {
	return New(KindInvalidPath, "path does not exist: %s", path)
}

// Forbidden reports a path or resource that exists but is not readable,
// or a policy-denied request.
func Forbidden(format string, args ...interface{}) *Error {
	return New(KindForbidden, format, args...)
}

// NotFound reports a missing symbol, cache key, or tool id.
func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

// Internal wraps an unattributed failure with a request-bound id so it
// can be correlated in logs. The message includes the cause's text.
func Internal(requestID string, cause error) *Error {
	return New(KindInternal, "internal error (request %s): %v", requestID, cause)
}

// As extracts an *Error from err, or returns (nil, false) if err is not
// one (or is nil).
func As(err error) (*Error, bool) {
	se, ok := err.(*Error)
	return se, ok
}

// KindOf returns the attributed kind of err, or KindInternal if err does
// not carry one — the dispatcher's catch-all per the propagation policy.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if se, ok := As(err); ok {
		return se.Kind
	}
	return KindInternal
}
