// Package redis provides the Redis-backed implementation of the store
// interfaces. Task records are kept as hashes with a bounded TTL, chosen
// over a full database because tasks are transient work items whose
// results only need to stay queryable for a short window after completion.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/insightforge/ai-service/internal/domain"
	"github.com/insightforge/ai-service/internal/store"
)

// taskKeyPrefix namespaces task hashes in the shared keyspace.
const taskKeyPrefix = "task:"

// TaskStore persists task records as Redis hashes.
// It implements store.TaskStore.
type TaskStore struct {
	client *redis.Client
}

// NewTaskStore creates a TaskStore backed by the Redis server at addr
// (host:port). The connection is lazy; use Ping to verify reachability.
func NewTaskStore(addr string) *TaskStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	return &TaskStore{client: rdb}
}

// NewTaskStoreWithClient wraps an existing Redis client, allowing the
// caller to share a client or supply custom options.
func NewTaskStoreWithClient(client *redis.Client) *TaskStore {
	return &TaskStore{client: client}
}

// Close closes the underlying Redis connection.
func (s *TaskStore) Close() error {
	return s.client.Close()
}

// Ping checks if the Redis connection is alive.
func (s *TaskStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// WriteFields upserts the given fields on the task hash and, when ttl > 0,
// restarts the record's expiry countdown from now. Each hash write is a
// single primitive; no transaction spans the field write and the expiry.
func (s *TaskStore) WriteFields(
	ctx context.Context,
	taskID string,
	fields map[string]interface{},
	ttl time.Duration,
) error {
	key := taskKeyPrefix + taskID

	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	if ttl > 0 {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
	}

	return nil
}

// Read retrieves the task record for taskID. An absent or expired hash
// yields store.ErrTaskNotFound.
func (s *TaskStore) Read(ctx context.Context, taskID string) (*domain.TaskRecord, error) {
	key := taskKeyPrefix + taskID

	data, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	// HGetAll reports a missing key as an empty map, not an error.
	if len(data) == 0 {
		return nil, store.ErrTaskNotFound
	}

	return recordFromHash(taskID, data), nil
}

// recordFromHash maps the stored hash fields onto a TaskRecord.
func recordFromHash(taskID string, data map[string]string) *domain.TaskRecord {
	return &domain.TaskRecord{
		TaskID:       taskID,
		Status:       domain.TaskStatus(data[store.FieldStatus]),
		TaskType:     data[store.FieldTaskType],
		ModelVersion: data[store.FieldModelVersion],
		DataPayload:  data[store.FieldDataPayload],
		Result:       data[store.FieldResult],
		Error:        data[store.FieldError],
	}
}
