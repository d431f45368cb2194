// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Validation errors.
	ErrUnknownCategory = errors.New("unsupported category")
	ErrInvalidFeatures = errors.New("invalid behavior features")
	ErrInvalidGoal     = errors.New("invalid goal")
	ErrInvalidRequest  = errors.New("invalid request")

	// Model artifact errors.
	ErrArtifactUnavailable = errors.New("model artifact unavailable")
	ErrArtifactInvalid     = errors.New("model artifact invalid")

	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError describes a single field rejected at the input boundary.
type ValidationError struct {
	Err    error
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", e.Err, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error wrapping the given sentinel.
func NewValidationError(sentinel error, field, reason string) error {
	return &ValidationError{
		Err:    sentinel,
		Field:  field,
		Reason: reason,
	}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsValidation reports whether err was produced by boundary validation.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
