// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrTableNotFound indicates a table was not found by the given identifier.
	ErrTableNotFound = errors.New("table not found")

	// ErrRowNotFound indicates a row was not found by the given identifier.
	ErrRowNotFound = errors.New("row not found")

	// ErrRelationshipNotFound indicates a relationship was not found by the given identifier.
	ErrRelationshipNotFound = errors.New("relationship not found")

	// ErrStorageUnavailable indicates the backing store could not be reached or written.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// StoreError wraps a failed persistence operation with context.
type StoreError struct {
	Op  string // Operation being performed (e.g., "Load", "SaveAll")
	Key string // Storage key if applicable
	Err error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.Key, e.Err)
	}

	return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for store errors.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a new store error with context.
func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Err: err}
}

// IsTableNotFound checks if an error indicates a table was not found.
func IsTableNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound)
}

// IsRowNotFound checks if an error indicates a row was not found.
func IsRowNotFound(err error) bool {
	return errors.Is(err, ErrRowNotFound)
}

// IsRelationshipNotFound checks if an error indicates a relationship was not found.
func IsRelationshipNotFound(err error) bool {
	return errors.Is(err, ErrRelationshipNotFound)
}

// IsStorageUnavailable checks if an error indicates the backing store failed.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
