package store

import (
	"context"
	"time"

	"github.com/insightforge/ai-service/internal/domain"
)

// TaskStore defines the interface for persisting analysis task state.
//
// Records are keyed by the caller-supplied task ID. Writes upsert the
// named fields and, when ttl > 0, (re)start the record's time-to-live
// countdown from the moment of the call. A record whose TTL has elapsed
// is indistinguishable from one that never existed.
type TaskStore interface {
	// WriteFields upserts the given fields on the task record. A ttl of
	// zero leaves any existing countdown running.
	WriteFields(ctx context.Context, taskID string, fields map[string]interface{}, ttl time.Duration) error

	// Read retrieves the current record for the task.
	// Returns ErrTaskNotFound if the record is absent or expired.
	Read(ctx context.Context, taskID string) (*domain.TaskRecord, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}

// Field names of a task record as persisted by TaskStore implementations.
const (
	FieldStatus       = "status"
	FieldTaskType     = "task_type"
	FieldModelVersion = "model_version"
	FieldDataPayload  = "data_payload"
	FieldResult       = "result"
	FieldError        = "error"
)
