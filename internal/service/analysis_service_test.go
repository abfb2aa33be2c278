package service_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightforge/ai-service/internal/domain"
	"github.com/insightforge/ai-service/internal/inference"
	"github.com/insightforge/ai-service/internal/notifier"
	"github.com/insightforge/ai-service/internal/service"
	"github.com/insightforge/ai-service/internal/store"
	"github.com/insightforge/ai-service/internal/task"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fakeTaskStore is an in-memory store.TaskStore that merges field writes
// per task, the way the Redis hash implementation does.
type fakeTaskStore struct {
	mu      sync.Mutex
	records map[string]map[string]string
	ttls    map[string]time.Duration

	failWrites      bool
	failAfterWrites int // fail writes after this many succeeded; 0 disables
	writes          int
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{
		records: make(map[string]map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (s *fakeTaskStore) WriteFields(
	ctx context.Context,
	taskID string,
	fields map[string]interface{},
	ttl time.Duration,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return store.ErrUnavailable
	}
	if s.failAfterWrites > 0 && s.writes >= s.failAfterWrites {
		return store.ErrUnavailable
	}
	s.writes++

	record, ok := s.records[taskID]
	if !ok {
		record = make(map[string]string)
		s.records[taskID] = record
	}
	for k, v := range fields {
		record[k] = v.(string)
	}
	if ttl > 0 {
		s.ttls[taskID] = ttl
	}
	return nil
}

func (s *fakeTaskStore) Read(ctx context.Context, taskID string) (*domain.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return nil, store.ErrUnavailable
	}

	record, ok := s.records[taskID]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	return &domain.TaskRecord{
		TaskID:       taskID,
		Status:       domain.TaskStatus(record[store.FieldStatus]),
		TaskType:     record[store.FieldTaskType],
		ModelVersion: record[store.FieldModelVersion],
		DataPayload:  record[store.FieldDataPayload],
		Result:       record[store.FieldResult],
		Error:        record[store.FieldError],
	}, nil
}

func (s *fakeTaskStore) Ping(ctx context.Context) error { return nil }

// syncSubmitter executes submitted tasks inline so tests observe
// deliveries deterministically.
type syncSubmitter struct {
	submitted []task.Task
}

func (s *syncSubmitter) Submit(t task.Task) error {
	s.submitted = append(s.submitted, t)
	return t.Execute(context.Background())
}

// capturingNotifier records every notification it is asked to deliver.
type capturingNotifier struct {
	mu            sync.Mutex
	notifications []*notifier.Notification
	urls          []string
	secrets       []string
}

func (n *capturingNotifier) Notify(
	ctx context.Context,
	url, secret string,
	notification *notifier.Notification,
) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
	n.urls = append(n.urls, url)
	n.secrets = append(n.secrets, secret)
	return nil
}

type serviceFixture struct {
	service   service.AnalysisService
	store     *fakeTaskStore
	notifier  *capturingNotifier
	submitter *syncSubmitter
}

func newServiceFixture(t *testing.T, taskStore *fakeTaskStore) *serviceFixture {
	t.Helper()

	captured := &capturingNotifier{}
	submitter := &syncSubmitter{}

	svc, err := service.NewAnalysisService(
		taskStore,
		inference.NewKeywordModel("v1.0", 0),
		captured,
		submitter,
		newTestLogger(),
		60*time.Second,
		service.WebhookDefaults{},
	)
	require.NoError(t, err)

	return &serviceFixture{
		service:   svc,
		store:     taskStore,
		notifier:  captured,
		submitter: submitter,
	}
}

func validRequest(taskID string) service.AnalysisRequest {
	return service.AnalysisRequest{
		TaskID:     taskID,
		Data:       `{"text": "我很喜歡這個產品，很好！"}`,
		TaskType:   domain.TaskTypeSentimentAnalysis,
		WebhookURL: "https://example.com/webhook",
	}
}

func TestProcessAnalysisCompletesSentimentTask(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	record, err := f.service.ProcessAnalysis(context.Background(), validRequest("task-1"))
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusCompleted, record.Status)
	assert.NotEmpty(t, record.Result)
	assert.Empty(t, record.Error)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(record.Result), &result))
	assert.Equal(t, "Positive", result["sentiment"])
}

func TestProcessAnalysisCompletesEntityRecognitionTask(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	record, err := f.service.ProcessAnalysis(context.Background(), service.AnalysisRequest{
		TaskID:     "task-ner",
		Data:       `{"text": "蘋果公司在台灣"}`,
		TaskType:   domain.TaskTypeNamedEntityRecognition,
		WebhookURL: "https://example.com/webhook",
	})
	require.NoError(t, err)
	require.Equal(t, domain.TaskStatusCompleted, record.Status)

	result, err := f.service.GetResult(context.Background(), "task-ner")
	require.NoError(t, err)

	resultMap, ok := result.Result.(map[string]interface{})
	require.True(t, ok)
	entities, ok := resultMap["entities"].([]interface{})
	require.True(t, ok)
	require.Len(t, entities, 2)

	first, ok := entities[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "蘋果", first["text"])
	assert.Equal(t, "ORGANIZATION", first["type"])

	second, ok := entities[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "台灣", second["text"])
	assert.Equal(t, "LOCATION", second["type"])
}

func TestProcessAnalysisRecordsMalformedDataAsFailed(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	record, err := f.service.ProcessAnalysis(context.Background(), service.AnalysisRequest{
		TaskID:     "task-bad-json",
		Data:       "this is not json",
		TaskType:   domain.TaskTypeSentimentAnalysis,
		WebhookURL: "https://example.com/webhook",
	})

	// A malformed payload is a task failure, not a request failure.
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, record.Status)
	assert.Contains(t, record.Error, "invalid input or task type")
	assert.Empty(t, record.Result)
}

func TestProcessAnalysisRecordsUnsupportedTaskTypeAsFailed(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	record, err := f.service.ProcessAnalysis(context.Background(), service.AnalysisRequest{
		TaskID:     "task-unknown",
		Data:       `{"text": "hello"}`,
		TaskType:   "unknown_type",
		WebhookURL: "https://example.com/webhook",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusFailed, record.Status)
	assert.Contains(t, record.Error, "invalid input or task type")
	assert.Contains(t, record.Error, "unknown_type")
}

func TestProcessAnalysisTerminalRecordHasExactlyOneOutcome(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	requests := []service.AnalysisRequest{
		validRequest("task-ok"),
		{
			TaskID:     "task-bad",
			Data:       "{broken",
			TaskType:   domain.TaskTypeSentimentAnalysis,
			WebhookURL: "https://example.com/webhook",
		},
	}

	for _, req := range requests {
		_, err := f.service.ProcessAnalysis(context.Background(), req)
		require.NoError(t, err)

		record, err := f.store.Read(context.Background(), req.TaskID)
		require.NoError(t, err)
		require.True(t, record.IsTerminal())

		hasResult := record.Result != ""
		hasError := record.Error != ""
		assert.NotEqual(t, hasResult, hasError,
			"terminal record must carry exactly one of result/error")
	}
}

func TestProcessAnalysisRetainsSubmittedPayload(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())
	data := `{"text": "round trip me", "extra": [1, 2, 3]}`

	_, err := f.service.ProcessAnalysis(context.Background(), service.AnalysisRequest{
		TaskID:     "task-roundtrip",
		Data:       data,
		TaskType:   domain.TaskTypeSentimentAnalysis,
		WebhookURL: "https://example.com/webhook",
	})
	require.NoError(t, err)

	record, err := f.store.Read(context.Background(), "task-roundtrip")
	require.NoError(t, err)
	assert.Equal(t, data, record.DataPayload, "data payload is stored exactly as submitted")
}

func TestProcessAnalysisAbortsWhenStoreUnavailableAtIntake(t *testing.T) {
	t.Parallel()

	failing := newFakeTaskStore()
	failing.failWrites = true
	f := newServiceFixture(t, failing)

	_, err := f.service.ProcessAnalysis(context.Background(), validRequest("task-down"))
	require.Error(t, err)
	assert.True(t, store.IsUnavailableError(err))

	// Task existence was never recorded, so no callback may be sent.
	assert.Empty(t, f.notifier.notifications)
}

func TestProcessAnalysisStillNotifiesWhenTerminalWriteFails(t *testing.T) {
	t.Parallel()

	flaky := newFakeTaskStore()
	flaky.failAfterWrites = 1 // processing write succeeds, terminal write fails
	f := newServiceFixture(t, flaky)

	record, err := f.service.ProcessAnalysis(context.Background(), validRequest("task-flaky"))
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, record.Status)

	require.Len(t, f.notifier.notifications, 1)
	assert.Equal(t, "task-flaky", f.notifier.notifications[0].TaskID)
}

func TestProcessAnalysisSendsNotificationForBothOutcomes(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	_, err := f.service.ProcessAnalysis(context.Background(), validRequest("task-completed"))
	require.NoError(t, err)

	_, err = f.service.ProcessAnalysis(context.Background(), service.AnalysisRequest{
		TaskID:        "task-failed",
		Data:          "not json",
		TaskType:      domain.TaskTypeSentimentAnalysis,
		WebhookURL:    "https://example.com/hooks",
		WebhookSecret: "secret-1",
	})
	require.NoError(t, err)

	require.Len(t, f.notifier.notifications, 2)

	completed := f.notifier.notifications[0]
	assert.Equal(t, "task-completed", completed.TaskID)
	assert.Equal(t, domain.TaskStatusCompleted, completed.Status)
	assert.NotNil(t, completed.Result)
	assert.Empty(t, completed.ErrorMessage)
	assert.Equal(t, "v1.0", completed.ModelVersion)

	failed := f.notifier.notifications[1]
	assert.Equal(t, "task-failed", failed.TaskID)
	assert.Equal(t, domain.TaskStatusFailed, failed.Status)
	assert.Nil(t, failed.Result)
	assert.NotEmpty(t, failed.ErrorMessage)

	assert.Equal(t, "https://example.com/hooks", f.notifier.urls[1])
	assert.Equal(t, "secret-1", f.notifier.secrets[1])
}

func TestProcessAnalysisAppliesWebhookDefaults(t *testing.T) {
	t.Parallel()

	captured := &capturingNotifier{}
	svc, err := service.NewAnalysisService(
		newFakeTaskStore(),
		inference.NewKeywordModel("v1.0", 0),
		captured,
		&syncSubmitter{},
		newTestLogger(),
		60*time.Second,
		service.WebhookDefaults{URL: "https://fallback.example.com", Secret: "fallback-secret"},
	)
	require.NoError(t, err)

	_, err = svc.ProcessAnalysis(context.Background(), service.AnalysisRequest{
		TaskID:   "task-defaults",
		Data:     `{"text": "hello"}`,
		TaskType: domain.TaskTypeSentimentAnalysis,
	})
	require.NoError(t, err)

	require.Len(t, captured.urls, 1)
	assert.Equal(t, "https://fallback.example.com", captured.urls[0])
	assert.Equal(t, "fallback-secret", captured.secrets[0])
}

func TestProcessAnalysisDefaultsModelVersion(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	record, err := f.service.ProcessAnalysis(context.Background(), validRequest("task-version"))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultModelVersion, record.ModelVersion)
}

func TestProcessAnalysisSetsTTLOnlyAtIntake(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	_, err := f.service.ProcessAnalysis(context.Background(), validRequest("task-ttl"))
	require.NoError(t, err)

	// Exactly one write (the processing one) carried a TTL, so the
	// terminal write leaves the original countdown running.
	assert.Equal(t, 60*time.Second, f.store.ttls["task-ttl"])
	assert.Equal(t, 2, f.store.writes)
}

func TestGetResultDecodesStoredFields(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	_, err := f.service.ProcessAnalysis(context.Background(), validRequest("task-query"))
	require.NoError(t, err)

	result, err := f.service.GetResult(context.Background(), "task-query")
	require.NoError(t, err)

	assert.Equal(t, "task-query", result.TaskID)
	assert.Equal(t, domain.TaskStatusCompleted, result.Status)
	assert.Equal(t, domain.TaskTypeSentimentAnalysis, result.TaskType)

	payload, ok := result.DataPayload.(map[string]interface{})
	require.True(t, ok, "valid JSON payload should be decoded")
	assert.Equal(t, "我很喜歡這個產品，很好！", payload["text"])

	resultMap, ok := result.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Positive", resultMap["sentiment"])
}

func TestGetResultReturnsRawPayloadWhenNotJSON(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	_, err := f.service.ProcessAnalysis(context.Background(), service.AnalysisRequest{
		TaskID:     "task-raw",
		Data:       "plain text, not json",
		TaskType:   domain.TaskTypeSentimentAnalysis,
		WebhookURL: "https://example.com/webhook",
	})
	require.NoError(t, err)

	result, err := f.service.GetResult(context.Background(), "task-raw")
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusFailed, result.Status)
	assert.Equal(t, "plain text, not json", result.DataPayload)
	assert.NotEmpty(t, result.Error)
}

func TestGetResultUnknownTask(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	_, err := f.service.GetResult(context.Background(), "never-submitted")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestProcessAnalysisReusedTaskIDOverwrites(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, newFakeTaskStore())

	_, err := f.service.ProcessAnalysis(context.Background(), validRequest("task-reuse"))
	require.NoError(t, err)

	_, err = f.service.ProcessAnalysis(context.Background(), service.AnalysisRequest{
		TaskID:     "task-reuse",
		Data:       `{"text": "蘋果"}`,
		TaskType:   domain.TaskTypeNamedEntityRecognition,
		WebhookURL: "https://example.com/webhook",
	})
	require.NoError(t, err)

	record, err := f.store.Read(context.Background(), "task-reuse")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskTypeNamedEntityRecognition, record.TaskType, "last write wins")
}
