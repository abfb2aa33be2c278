package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. An expired record reports the same error as one never written.
	ErrNotFound = errors.New("entity not found")

	// ErrUnavailable is returned when the backing store cannot be reached.
	// Callers must treat this as fatal for the operation in progress, since
	// task state can no longer be tracked.
	ErrUnavailable = errors.New("store unavailable")

	// ErrTaskNotFound indicates that the requested task record does not
	// exist in the store or has passed its TTL.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailableError checks if the error indicates the store is unreachable.
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
