// Package flow provides standardized error types for graph operations.
package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrTabNotFound indicates a flow tab was not found by the given identifier.
	ErrTabNotFound = errors.New("tab not found")

	// ErrNodeNotFound indicates a flow node was not found by the given identifier.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound indicates a flow edge was not found by the given identifier.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrReservedTab indicates an attempt to modify one of the built-in views.
	ErrReservedTab = errors.New("tab is reserved")

	// ErrInvalidConnection indicates a proposed edge violates the connection rules.
	ErrInvalidConnection = errors.New("invalid connection")
)

// ConnectionError wraps a rejected connection with its endpoints.
type ConnectionError struct {
	TabID  string
	Source string
	Target string
	Reason string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s -> %s rejected in tab %s: %s", e.Source, e.Target, e.TabID, e.Reason)
}

func (e *ConnectionError) Unwrap() error {
	return ErrInvalidConnection
}

// IsTabNotFound checks if an error indicates a tab was not found.
func IsTabNotFound(err error) bool {
	return errors.Is(err, ErrTabNotFound)
}

// IsNodeNotFound checks if an error indicates a node was not found.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsInvalidConnection checks if an error indicates a rejected connection.
func IsInvalidConnection(err error) bool {
	return errors.Is(err, ErrInvalidConnection)
}

// IsReservedTab checks if an error indicates a reserved tab was targeted.
func IsReservedTab(err error) bool {
	return errors.Is(err, ErrReservedTab)
}
