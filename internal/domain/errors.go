package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyTaskID is returned when a task record has no identifier.
	ErrEmptyTaskID = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)

	// ErrEmptyTaskType is returned when a task record has no task type.
	ErrEmptyTaskType = fmt.Errorf("%w: task type cannot be empty", ErrValidation)

	// ErrInvalidTaskStatus is returned when a status value is outside the
	// known lifecycle states.
	ErrInvalidTaskStatus = fmt.Errorf("%w: invalid task status", ErrValidation)
)
