package errors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid credentials towards an upstream
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a conflict with existing data
	ErrConflict = errors.New("conflict")

	// ErrUnavailable indicates an upstream dependency cannot serve requests right now
	ErrUnavailable = errors.New("service unavailable")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// GenericMessage is shown to users when an error carries no usable text
const GenericMessage = "Something went wrong. Please try again."

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// UnavailableError creates an unavailable error for the named dependency
func UnavailableError(dependency string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%s: %w: %w", dependency, ErrUnavailable, cause)
	}
	return fmt.Errorf("%s: %w", dependency, ErrUnavailable)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

// UserMessager is implemented by errors that carry text meant for end users
type UserMessager interface {
	UserMessage() string
}

// UserMessage derives the text shown to a user from err. Errors carrying a
// user message win; otherwise the error text is used; empty text falls back
// to GenericMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var um UserMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}

	if errors.Is(err, ErrUnavailable) {
		return "The contact service is temporarily unavailable. Please try again later."
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericMessage
}
