package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError
// 3. Domain errors (game, board, domain packages) pass through unwrapped
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrSessionNotFound indicates that no session exists with the given ID.
	// API layer should map this to HTTP 404 Not Found.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists indicates that a session with the given ID already exists.
	// API layer should map this to HTTP 409 Conflict.
	ErrSessionExists = errors.New("session already exists")

	// ErrCorruptSession indicates that a stored session could not be restored.
	ErrCorruptSession = errors.New("stored session is corrupt")
)

// ServiceError is a custom error type for session service errors.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("game service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("game service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
