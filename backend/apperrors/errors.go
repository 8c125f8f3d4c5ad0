// Package apperrors defines the error kinds shared by all controllers and
// services, so handlers can map failures to HTTP statuses in one place.
package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindPreconditionFailed
	KindTooManyRequests
)

// Error carries a kind plus a human-readable reason. An optional cause is
// preserved for errors.Is/As chains.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error         { return New(KindValidation, message) }
func NotFound(message string) *Error           { return New(KindNotFound, message) }
func Forbidden(message string) *Error          { return New(KindForbidden, message) }
func Conflict(message string) *Error           { return New(KindConflict, message) }
func PreconditionFailed(message string) *Error { return New(KindPreconditionFailed, message) }
func TooManyRequests(message string) *Error    { return New(KindTooManyRequests, message) }

// Internal wraps a storage or otherwise unexpected error.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to its response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	case KindPreconditionFailed:
		return fiber.StatusPreconditionFailed
	case KindTooManyRequests:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}
