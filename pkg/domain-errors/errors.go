// Package domainerrors provides coded errors that cross the service boundary.
// Services translate store sentinel errors into these; the HTTP layer maps
// codes onto statuses. Every failure the registration flow can surface has a
// stable code here so clients can branch on `error` without parsing messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure independent of its human-readable message.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_error"
	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeInternal     Code = "internal_error"
	CodeTimeout      Code = "timeout"

	// Registration-flow specific codes. Kept distinct from the generic ones so
	// the client can tell an email conflict from any other conflict and an
	// expired token from a missing one, even though both map to HTTP 400.
	CodeDuplicateEmail Code = "duplicate_email"
	CodeTokenNotFound  Code = "token_not_found"
	CodeTokenExpired   Code = "token_expired"
	CodeInvalidCode    Code = "invalid_code"
)

// Error is a coded domain error. Message is safe to show to API clients for
// all codes except CodeInternal.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// CodeOf returns the outermost code carried by err, or CodeInternal when err
// is not a coded error. Unrecognized failures are treated as internal so they
// never leak store details to clients.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
