package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/insightforge/ai-service/internal/domain"
	"github.com/insightforge/ai-service/internal/inference"
	"github.com/insightforge/ai-service/internal/notifier"
	"github.com/insightforge/ai-service/internal/redact"
	"github.com/insightforge/ai-service/internal/store"
	"github.com/insightforge/ai-service/internal/task"
)

// TaskSubmitter defines the interface for scheduling background tasks
type TaskSubmitter interface {
	// Submit adds a task to the processing queue without blocking
	Submit(t task.Task) error
}

// WebhookDefaults are the process-wide callback endpoint and secret,
// applied when a request does not name its own.
type WebhookDefaults struct {
	URL    string
	Secret string
}

// AnalysisRequest carries one analysis task submission.
// Data is the serialized JSON input exactly as the caller sent it.
type AnalysisRequest struct {
	TaskID        string
	Data          string
	TaskType      string
	ModelVersion  string
	WebhookURL    string
	WebhookSecret string
}

// TaskResult is the decoded view of a task record returned by the query
// interface. DataPayload and Result are decoded back into structured form;
// a payload that was never valid JSON is returned as the raw string.
type TaskResult struct {
	TaskID       string            `json:"task_id"`
	Status       domain.TaskStatus `json:"status"`
	TaskType     string            `json:"task_type"`
	ModelVersion string            `json:"model_version"`
	DataPayload  interface{}       `json:"data_payload"`
	Result       interface{}       `json:"result,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// AnalysisService provides the task lifecycle operations
type AnalysisService interface {
	// ProcessAnalysis runs the full lifecycle for one submission: it records
	// the processing state, invokes inference, persists the terminal state,
	// and schedules the webhook callback. The returned record reflects the
	// terminal state. The only error it returns is a store failure at
	// intake, before task existence could be recorded at all.
	ProcessAnalysis(ctx context.Context, req AnalysisRequest) (*domain.TaskRecord, error)

	// GetResult looks up the current state of a task.
	// Returns store.ErrTaskNotFound when the record is absent or expired.
	GetResult(ctx context.Context, taskID string) (*TaskResult, error)
}

// analysisService is the production implementation of AnalysisService.
type analysisService struct {
	taskStore store.TaskStore
	model     inference.Model
	notifier  task.Notifier
	submitter TaskSubmitter
	logger    *slog.Logger
	taskTTL   time.Duration
	webhook   WebhookDefaults
}

// NewAnalysisService creates an AnalysisService with its collaborators.
// taskTTL bounds how long a record stays queryable after the processing
// write; the terminal write leaves the original countdown running.
func NewAnalysisService(
	taskStore store.TaskStore,
	model inference.Model,
	n task.Notifier,
	submitter TaskSubmitter,
	logger *slog.Logger,
	taskTTL time.Duration,
	webhook WebhookDefaults,
) (AnalysisService, error) {
	if taskStore == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if model == nil {
		return nil, errors.New("model cannot be nil")
	}
	if n == nil {
		return nil, errors.New("notifier cannot be nil")
	}
	if submitter == nil {
		return nil, errors.New("task submitter cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &analysisService{
		taskStore: taskStore,
		model:     model,
		notifier:  n,
		submitter: submitter,
		logger:    logger.With("component", "analysis_service"),
		taskTTL:   taskTTL,
		webhook:   webhook,
	}, nil
}

// ProcessAnalysis implements the task state machine. The processing and
// terminal writes happen synchronously before it returns; only the
// notification send is decoupled from the caller's response.
func (s *analysisService) ProcessAnalysis(
	ctx context.Context,
	req AnalysisRequest,
) (*domain.TaskRecord, error) {
	record, err := domain.NewTaskRecord(req.TaskID, req.TaskType, req.ModelVersion, req.Data)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(
		"task_id", record.TaskID,
		"task_type", record.TaskType,
		"model_version", record.ModelVersion,
	)

	// Record task existence first. If this fails the task cannot be
	// tracked, so the whole request aborts and no callback is sent.
	err = s.taskStore.WriteFields(ctx, record.TaskID, map[string]interface{}{
		store.FieldStatus:       string(record.Status),
		store.FieldTaskType:     record.TaskType,
		store.FieldModelVersion: record.ModelVersion,
		store.FieldDataPayload:  record.DataPayload,
	}, s.taskTTL)
	if err != nil {
		logger.Error("failed to record processing state", "error", redact.Error(err))
		return nil, fmt.Errorf("failed to record task state: %w", err)
	}

	logger.Info("task received")

	result, inferErr := s.runInference(ctx, record)
	if inferErr != nil {
		record.Status = domain.TaskStatusFailed
		record.Error = inferErr.message
	} else {
		serialized, err := json.Marshal(result)
		if err != nil {
			// A model result that cannot be serialized is an internal failure.
			logger.Error("failed to serialize inference result", "error", err)
			record.Status = domain.TaskStatusFailed
			record.Error = "internal error while processing the task"
			result = nil
		} else {
			record.Status = domain.TaskStatusCompleted
			record.Result = string(serialized)
		}
	}

	// Terminal write extends the same record; the TTL countdown started at
	// the processing write keeps running. A late store failure is logged
	// and the callback is still attempted, best effort.
	if err := s.writeTerminalState(ctx, record); err != nil {
		logger.Error("failed to record terminal state", "error", redact.Error(err))
	}

	logger.Info("task reached terminal state", "status", record.Status)

	s.scheduleCallback(req, record, result, logger)

	return record, nil
}

// inferenceFailure pairs an inference error with the public message
// recorded on the task.
type inferenceFailure struct {
	err     error
	message string
}

// runInference decodes the submitted payload and invokes the model,
// classifying failures into the public error messages the record carries.
func (s *analysisService) runInference(
	ctx context.Context,
	record *domain.TaskRecord,
) (map[string]interface{}, *inferenceFailure) {
	payload, err := record.DecodedPayload()
	if err != nil {
		return nil, &inferenceFailure{
			err:     err,
			message: fmt.Sprintf("invalid input or task type: data is not valid JSON: %v", err),
		}
	}

	result, err := s.model.Infer(ctx, payload, record.TaskType)
	if err == nil {
		return result, nil
	}

	if errors.Is(err, inference.ErrInvalidInput) || errors.Is(err, inference.ErrUnsupportedTaskType) {
		return nil, &inferenceFailure{
			err:     err,
			message: fmt.Sprintf("invalid input or task type: %v", err),
		}
	}

	// Anything else is an internal model failure. The public error field
	// carries a summary only, never internal details.
	s.logger.Error("inference failed",
		"task_id", record.TaskID,
		"task_type", record.TaskType,
		"error", redact.Error(err))
	return nil, &inferenceFailure{
		err:     err,
		message: "internal error while processing the task",
	}
}

// writeTerminalState persists the terminal status plus result-or-error.
func (s *analysisService) writeTerminalState(ctx context.Context, record *domain.TaskRecord) error {
	fields := map[string]interface{}{
		store.FieldStatus: string(record.Status),
	}
	if record.Status == domain.TaskStatusCompleted {
		fields[store.FieldResult] = record.Result
	} else {
		fields[store.FieldError] = record.Error
	}

	return s.taskStore.WriteFields(ctx, record.TaskID, fields, 0)
}

// scheduleCallback builds the terminal-state notification and hands it to
// the dispatcher. Failures here are logged and swallowed; the query
// interface remains the durable fallback.
func (s *analysisService) scheduleCallback(
	req AnalysisRequest,
	record *domain.TaskRecord,
	result map[string]interface{},
	logger *slog.Logger,
) {
	notification := &notifier.Notification{
		TaskID:       record.TaskID,
		Status:       record.Status,
		Result:       result,
		ErrorMessage: record.Error,
		ModelVersion: record.ModelVersion,
	}

	url := req.WebhookURL
	if url == "" {
		url = s.webhook.URL
	}
	secret := req.WebhookSecret
	if secret == "" {
		secret = s.webhook.Secret
	}

	deliveryTask, err := task.NewWebhookDeliveryTask(
		url,
		secret,
		notification,
		s.notifier,
		s.logger,
	)
	if err != nil {
		logger.Error("failed to build webhook delivery task", "error", err)
		return
	}

	if err := s.submitter.Submit(deliveryTask); err != nil {
		logger.Error("failed to schedule webhook delivery", "error", err)
	}
}

// GetResult implements the read-only query interface.
func (s *analysisService) GetResult(ctx context.Context, taskID string) (*TaskResult, error) {
	record, err := s.taskStore.Read(ctx, taskID)
	if err != nil {
		return nil, err
	}

	result := &TaskResult{
		TaskID:       record.TaskID,
		Status:       record.Status,
		TaskType:     record.TaskType,
		ModelVersion: record.ModelVersion,
		Error:        record.Error,
	}

	// Failed tasks can hold a payload that never was valid JSON; in that
	// case the raw string is returned as submitted.
	if payload, err := record.DecodedPayload(); err == nil {
		result.DataPayload = payload
	} else {
		result.DataPayload = record.DataPayload
	}

	if record.Result != "" {
		decoded, err := record.DecodedResult()
		if err != nil {
			return nil, fmt.Errorf("failed to decode stored result: %w", err)
		}
		result.Result = decoded
	}

	return result, nil
}
