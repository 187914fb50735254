// Package apperr defines the error kinds shared by every Bookit service.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Services wrap one of these in an *Error so callers can
// branch with errors.Is without inspecting messages.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInternal          = errors.New("internal error")
)

// Error carries a kind, a client-safe message, optional field-level
// messages and the underlying cause.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind error, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Internal wraps a store or infrastructure failure. The message is what
// clients see; err stays server-side.
func Internal(message string, err error) *Error {
	return Wrap(ErrInternal, message, err)
}

func NotFound(what string) *Error {
	return Newf(ErrNotFound, "%s not found", what)
}

func Invalid(message string) *Error {
	return New(ErrInvalidInput, message)
}

// InvalidFields builds a validation error with per-field messages.
func InvalidFields(message string, fields map[string]string) *Error {
	return &Error{Kind: ErrInvalidInput, Message: message, Fields: fields}
}

func Forbidden(message string) *Error {
	return New(ErrForbidden, message)
}

func Conflict(message string) *Error {
	return New(ErrConflict, message)
}

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
func IsInvalid(err error) bool      { return errors.Is(err, ErrInvalidInput) }

func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// MessageOf returns the client-safe message for err. Errors that are not
// an *Error get the generic fallback so store details never leak.
func MessageOf(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if errors.Is(appErr.Kind, ErrInternal) {
			return fallback
		}
		return appErr.Message
	}
	return fallback
}

// FieldsOf returns field-level messages attached to err, if any.
func FieldsOf(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
