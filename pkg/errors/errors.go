// Package errors defines the closed error taxonomy exposed by the console
// API. Every failure that crosses the HTTP boundary is expressed as an
// AppError with one of the kinds below; nothing else is echoed to clients.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of API failure.
type Kind string

const (
	// KindUnauthenticated covers missing, invalid, or expired credentials.
	KindUnauthenticated Kind = "unauthenticated"
	// KindNotFound covers absent schemas, tables, and buckets.
	KindNotFound Kind = "not_found"
	// KindAlreadyExists covers schema and table name collisions.
	KindAlreadyExists Kind = "already_exists"
	// KindInvalidArgument covers malformed names and bad column specs.
	KindInvalidArgument Kind = "invalid_argument"
	// KindForbidden covers permission denials reported upstream.
	KindForbidden Kind = "forbidden"
	// KindTooLarge covers requests the store refuses for size.
	KindTooLarge Kind = "too_large"
	// KindUnavailable covers an unconfigured, driver-less, or
	// circuit-broken store subsystem.
	KindUnavailable Kind = "unavailable"
	// KindUpstreamTimeout covers remote calls that exceeded their deadline.
	KindUpstreamTimeout Kind = "upstream_timeout"
	// KindUpstreamConnection covers unreachable remote hosts.
	KindUpstreamConnection Kind = "upstream_connection"
	// KindRateLimited covers sliding-window admission rejections.
	KindRateLimited Kind = "rate_limited"
	// KindInternal is the fallback for unclassified failures.
	KindInternal Kind = "internal"
)

// HTTPStatus maps a kind onto its HTTP-equivalent status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case KindUpstreamConnection:
		return http.StatusBadGateway
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// AppError is a structured application error carrying a taxonomy kind and a
// client-safe message. The wrapped cause, if any, is for server-side logs
// only and never serialized.
type AppError struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap supports errors.Is and errors.As over the cause chain.
func (e *AppError) Unwrap() error { return e.cause }

// HTTPStatus returns the status code for the error's kind.
func (e *AppError) HTTPStatus() int { return e.Kind.HTTPStatus() }

// WithCause attaches an underlying error for server-side diagnostics.
func (e *AppError) WithCause(cause error) *AppError {
	return &AppError{Kind: e.Kind, Message: e.Message, cause: cause}
}

// New creates an AppError with the given kind and message.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Convenience constructors for the common kinds.

func Unauthenticated(message string) *AppError { return New(KindUnauthenticated, message) }
func NotFound(message string) *AppError        { return New(KindNotFound, message) }
func AlreadyExists(message string) *AppError   { return New(KindAlreadyExists, message) }
func InvalidArgument(message string) *AppError { return New(KindInvalidArgument, message) }
func Forbidden(message string) *AppError       { return New(KindForbidden, message) }
func Unavailable(message string) *AppError     { return New(KindUnavailable, message) }
func Internal(message string) *AppError        { return New(KindInternal, message) }

// AsAppError extracts an AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the taxonomy kind of err. Errors that carry no AppError in
// their chain classify as KindInternal.
func KindOf(err error) Kind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err classifies as the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
