package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("Validation Error")
	ErrMissingField       = errors.New("missing field")
	ErrConflict           = errors.New("conflict")
	ErrDuplicate          = errors.New("duplicate identity")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrUnexpected         = errors.New("unexpected")
)

type AppError struct {
	Err     error    // actual error
	Message string   // Human-readable error message
	Field   string   // Optional: field causing the error
	Fields  []string // Optional: every missing field, in request order
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// MissingFields reports required request fields that were absent or blank.
// All of them are listed so a client can fix the request in one round trip.
func MissingFields(fields ...string) *AppError {
	return &AppError{
		Err:     ErrMissingField,
		Message: "missing required fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Duplicate returns an AppError for a uniqueness violation on an identity
// (username, email) or a 1:1 relation such as a second profile for a user.
// HTTP handlers map this to 400 Bad Request.
func Duplicate(message string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidCredentials is the single login failure. The message is the same
// whether the email is unknown or the password is wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid credentials",
	}
}

// Unauthenticated means no valid bearer token accompanied the request.
func Unauthenticated() *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: "valid authentication required",
	}
}

// Unexpected wraps a store failure that is not one of the known cases.
// The cause stays reachable through errors.Is/As for logging, but the
// message shown to clients is generic.
func Unexpected(cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrUnexpected, cause),
		Message: "the request could not be processed",
	}
}
