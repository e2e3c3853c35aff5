package domain

import (
	"errors"
	"fmt"
)

// Stable error codes surfaced to API clients
const (
	CodeValidation         = "VALIDATION"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeRateLimited        = "RATE_LIMITED"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
)

// Error is the domain error type carrying a stable code and a
// human-readable message. The wrapped cause, if any, is internal and
// never sent to clients.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a domain error with a stable code
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError creates a domain error wrapping an underlying cause
func WrapError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// NewValidationError reports malformed or missing input
func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NewNotFoundError reports an absent referenced entity
func NewNotFoundError(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewForbiddenError reports a valid caller with insufficient rights
func NewForbiddenError(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NewInvalidCredentialsError is returned for both unknown email and wrong
// password so the response cannot be used for user enumeration.
func NewInvalidCredentialsError() *Error {
	return &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
}

// NewStorageUnavailableError reports a transient storage failure the
// caller may retry
func NewStorageUnavailableError(err error) *Error {
	return &Error{Code: CodeStorageUnavailable, Message: "storage temporarily unavailable", Err: err}
}

// CodeOf extracts the stable code from an error chain. Unknown errors
// map to STORAGE_UNAVAILABLE since every other failure class is created
// explicitly with a code.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeStorageUnavailable
}

// IsCode reports whether err carries the given stable code
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
