// Package apperror defines the errors handlers return to the client. Each
// carries the HTTP status to answer with and a message that is safe to
// show; anything else (SQL text, hostnames, stack traces) stays in Internal
// and only reaches the logs.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error with an HTTP status and a client-safe message.
type AppError struct {
	Code     int    `json:"-"`
	Type     string `json:"type"`    // machine-readable, e.g. "not_found"
	Message  string `json:"message"` // shown to the client
	Internal error  `json:"-"`       // logged, never shown
}

func (e *AppError) Error() string {
	if e.Internal == nil {
		return e.Type + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
}

func (e *AppError) Unwrap() error { return e.Internal }

// typeNames maps the statuses this package produces to their Type.
var typeNames = map[int]string{
	http.StatusBadRequest:          "bad_request",
	http.StatusUnauthorized:        "unauthorized",
	http.StatusForbidden:           "forbidden",
	http.StatusNotFound:            "not_found",
	http.StatusConflict:            "conflict",
	http.StatusUnprocessableEntity: "validation_error",
	http.StatusInternalServerError: "internal_error",
}

func newError(code int, message string) *AppError {
	return &AppError{Code: code, Type: typeNames[code], Message: message}
}

func NewBadRequest(message string) *AppError   { return newError(http.StatusBadRequest, message) }
func NewUnauthorized(message string) *AppError { return newError(http.StatusUnauthorized, message) }
func NewForbidden(message string) *AppError    { return newError(http.StatusForbidden, message) }
func NewNotFound(message string) *AppError     { return newError(http.StatusNotFound, message) }
func NewConflict(message string) *AppError     { return newError(http.StatusConflict, message) }

// NewValidation reports rejected input with 422.
func NewValidation(message string) *AppError {
	return newError(http.StatusUnprocessableEntity, message)
}

// internalMessage is all a client learns about a 500.
const internalMessage = "An unexpected error occurred. Please try again."

// NewInternal hides err behind a generic 500.
func NewInternal(err error) *AppError {
	e := newError(http.StatusInternalServerError, internalMessage)
	e.Internal = err
	return e
}

var errMissingContext = errors.New("missing required request context")

// NewMissingContext is returned by handlers whose route middleware did not
// run, such as a campaign handler mounted without RequireCampaignAccess.
func NewMissingContext() *AppError { return NewInternal(errMissingContext) }

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// SafeMessage returns the message of the AppError in err's chain, or a
// generic text for any other error.
func SafeMessage(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the status of the AppError in err's chain, or 500.
func SafeCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is, or wraps, a 404 AppError.
func IsNotFound(err error) bool { return SafeCode(err) == http.StatusNotFound }

// UserFacing returns the message of an AppError in err's chain that a form
// can show next to the input: any status below 500. ok is false for
// internal and non-AppError failures, which the caller should return.
func UserFacing(err error) (message string, ok bool) {
	appErr, found := As(err)
	if !found || appErr.Code >= http.StatusInternalServerError {
		return "", false
	}
	return appErr.Message, true
}
