package domain

import (
	"encoding/json"
)

// TaskStatus represents the lifecycle state of an analysis task
type TaskStatus string

// Possible task status values. A task is created as processing and is
// mutated exactly once more, to completed or failed.
const (
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Known analysis task types handled by the reference model.
// The store treats task types as opaque tags; only the inference
// component attaches meaning to them.
const (
	TaskTypeSentimentAnalysis      = "sentiment_analysis"
	TaskTypeNamedEntityRecognition = "named_entity_recognition"
)

// DefaultModelVersion is applied when a request does not name a model version.
const DefaultModelVersion = "v1.0"

// TaskRecord represents the stored state of a single analysis task.
// DataPayload retains the raw submitted input for traceability; Result
// holds the serialized inference output once the task completes, and
// Error holds a human-readable message once it fails. Exactly one of
// Result/Error is populated on a terminal record.
type TaskRecord struct {
	TaskID       string     `json:"task_id"`
	Status       TaskStatus `json:"status"`
	TaskType     string     `json:"task_type"`
	ModelVersion string     `json:"model_version"`
	DataPayload  string     `json:"data_payload"`
	Result       string     `json:"result,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// NewTaskRecord creates a processing-state record for a freshly received task.
// Returns an error if validation fails.
func NewTaskRecord(taskID, taskType, modelVersion, dataPayload string) (*TaskRecord, error) {
	if modelVersion == "" {
		modelVersion = DefaultModelVersion
	}

	record := &TaskRecord{
		TaskID:       taskID,
		Status:       TaskStatusProcessing,
		TaskType:     taskType,
		ModelVersion: modelVersion,
		DataPayload:  dataPayload,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the TaskRecord has valid data.
func (r *TaskRecord) Validate() error {
	if r.TaskID == "" {
		return ErrEmptyTaskID
	}

	if r.TaskType == "" {
		return ErrEmptyTaskType
	}

	switch r.Status {
	case TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		// valid
	default:
		return ErrInvalidTaskStatus
	}

	return nil
}

// IsTerminal reports whether the record has reached a terminal state.
func (r *TaskRecord) IsTerminal() bool {
	return r.Status == TaskStatusCompleted || r.Status == TaskStatusFailed
}

// DecodedPayload parses DataPayload back into structured form.
func (r *TaskRecord) DecodedPayload() (map[string]interface{}, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(r.DataPayload), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// DecodedResult parses the serialized Result back into structured form.
// Returns nil without error when no result is present.
func (r *TaskRecord) DecodedResult() (map[string]interface{}, error) {
	if r.Result == "" {
		return nil, nil
	}
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(r.Result), &result); err != nil {
		return nil, err
	}
	return result, nil
}
