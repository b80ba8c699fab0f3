// Package errs holds the error values shared across the application layers.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no record exists for the requested short ID.
	ErrNotFound = errors.New("not found")
	// ErrAllocationExhausted is matched by AllocationExhaustedError.
	ErrAllocationExhausted = errors.New("allocation exhausted")
	// ErrInvalidRequest reports a malformed client request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDBNotConnected is returned by Ping of a store that has been closed.
	ErrDBNotConnected = errors.New("database not connected")
	// ErrNilDependency is returned by constructors given a nil dependency.
	ErrNilDependency = errors.New("nil dependency")
)

// AllocationExhaustedError reports that every generated candidate ID
// collided with an existing one and the retry budget ran out.
type AllocationExhaustedError struct {
	// Retries is the number of retries attempted after the first candidate.
	Retries int
}

// Error implements the error interface.
func (e *AllocationExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d retries", ErrAllocationExhausted, e.Retries)
}

// Is reports whether target is ErrAllocationExhausted.
func (e *AllocationExhaustedError) Is(target error) bool {
	return target == ErrAllocationExhausted
}
