// Package errors provides typed errors for the application
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypeUnavailable
	ErrorTypeInternal
)

// baseError is the base implementation for all error types
type baseError struct {
	msg string
}

func (e *baseError) Error() string {
	return e.msg
}

// ValidationError represents malformed input from a user or a peer
type ValidationError struct {
	baseError
}

// NewValidationError creates a new ValidationError
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{baseError{msg: msg}}
}

// NewValidationErrorf creates a new ValidationError with a formatted message
func NewValidationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{baseError{msg: fmt.Sprintf(format, args...)}}
}

// NotFoundError represents a lookup that definitely missed
type NotFoundError struct {
	baseError
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{baseError{msg: msg}}
}

// ConflictError represents a request that collides with existing state
type ConflictError struct {
	baseError
}

// NewConflictError creates a new ConflictError
func NewConflictError(msg string) *ConflictError {
	return &ConflictError{baseError{msg: msg}}
}

// UnavailableError represents a collaborator that is not ready (disconnected client, closed store)
type UnavailableError struct {
	baseError
}

// NewUnavailableError creates a new UnavailableError
func NewUnavailableError(msg string) *UnavailableError {
	return &UnavailableError{baseError{msg: msg}}
}

// InternalError represents an unexpected failure
type InternalError struct {
	baseError
}

// NewInternalError creates a new InternalError
func NewInternalError(msg string) *InternalError {
	return &InternalError{baseError{msg: msg}}
}

// IsValidationError checks if err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsNotFoundError checks if err is or wraps a NotFoundError
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsConflictError checks if err is or wraps a ConflictError
func IsConflictError(err error) bool {
	var target *ConflictError
	return stderrors.As(err, &target)
}

// IsUnavailableError checks if err is or wraps an UnavailableError
func IsUnavailableError(err error) bool {
	var target *UnavailableError
	return stderrors.As(err, &target)
}

// IsInternalError checks if err is or wraps an InternalError
func IsInternalError(err error) bool {
	var target *InternalError
	return stderrors.As(err, &target)
}

// TypeOf returns the ErrorType of err, defaulting to ErrorTypeInternal
func TypeOf(err error) ErrorType {
	switch {
	case IsValidationError(err):
		return ErrorTypeValidation
	case IsNotFoundError(err):
		return ErrorTypeNotFound
	case IsConflictError(err):
		return ErrorTypeConflict
	case IsUnavailableError(err):
		return ErrorTypeUnavailable
	default:
		return ErrorTypeInternal
	}
}
