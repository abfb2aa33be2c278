package inference

import (
	"context"
	"errors"
)

// Common errors returned by the inference boundary. These are the only
// failure kinds defined at this boundary; any other error a concrete
// model raises is mapped to a generic processing failure by the caller.
var (
	// ErrInvalidInput is returned when the decoded payload fails
	// required-field validation.
	ErrInvalidInput = errors.New("invalid input data")

	// ErrUnsupportedTaskType is returned when the task type tag is not one
	// the model recognizes.
	ErrUnsupportedTaskType = errors.New("unsupported task type")
)

// Model executes one analysis task over a decoded input payload.
//
// Implementations return a structured result on success, ErrInvalidInput
// or ErrUnsupportedTaskType (possibly wrapped) on bad input, and any other
// error for internal failures.
type Model interface {
	// Infer runs the analysis selected by taskType over payload.
	Infer(ctx context.Context, payload map[string]interface{}, taskType string) (map[string]interface{}, error)

	// Version returns the model version tag reported in results.
	Version() string
}
