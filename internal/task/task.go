package task

import (
	"context"

	"github.com/google/uuid"
)

// Task type constants
const (
	// TaskTypeWebhookDelivery represents the task type for delivering
	// webhook callbacks after a task reaches a terminal state.
	TaskTypeWebhookDelivery = "webhook_delivery"
)

// Task represents a unit of background work to be processed off the
// request-handling path.
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}
