package handler

import (
	"errors"
	"net/http"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is the single structured error type that crosses the HTTP boundary.
// Services declare sentinels with NewHTTPError and return them, optionally
// wrapping the underlying cause for logs.
type HTTPError struct {
	Code    int
	Message string
	cause   error
}

// NewHTTPError creates an error with the given status code and client-facing message.
func NewHTTPError(code int, message string) HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return HTTPError{Code: code, Message: message}
}

func (e HTTPError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e HTTPError) Unwrap() error { return e.cause }

// Is matches another HTTPError with the same code and message. A generic
// status sentinel such as ErrNotFound matches every error with its code.
func (e HTTPError) Is(target error) bool {
	t, ok := target.(HTTPError)
	if !ok || t.Code != e.Code {
		return false
	}
	return t.Message == e.Message || t.Message == http.StatusText(t.Code)
}

// Wrap attaches cause. The cause is logged but never rendered to clients.
func (e HTTPError) Wrap(cause error) HTTPError {
	e.cause = cause
	return e
}

// WithMessage returns a copy with a different client-facing message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

var (
	ErrBadRequest           = NewHTTPError(http.StatusBadRequest, "")
	ErrUnauthorized         = NewHTTPError(http.StatusUnauthorized, "")
	ErrForbidden            = NewHTTPError(http.StatusForbidden, "")
	ErrNotFound             = NewHTTPError(http.StatusNotFound, "")
	ErrConflict             = NewHTTPError(http.StatusConflict, "")
	ErrGone                 = NewHTTPError(http.StatusGone, "")
	ErrRequestTooLarge      = NewHTTPError(http.StatusRequestEntityTooLarge, "")
	ErrUnsupportedMediaType = NewHTTPError(http.StatusUnsupportedMediaType, "")
	ErrInternalServerError  = NewHTTPError(http.StatusInternalServerError, "")
)
