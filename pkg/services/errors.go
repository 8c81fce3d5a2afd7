// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrMissingRequiredValue = errors.New("missing value for required column")
	ErrTypeMismatch         = errors.New("value does not match column type")
	ErrUnknownColumn        = errors.New("unknown column")
	ErrUnknownTable         = errors.New("unknown table")
	ErrInvalidRelationship  = errors.New("invalid relationship")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError creates a validation error with a message for the client.
func NewValidationError(op, message string, err error) *ServiceError {
	return &ServiceError{Op: op, Message: message, Err: err}
}

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrMissingRequiredValue) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrUnknownTable) ||
		errors.Is(err, ErrInvalidRelationship)
}
