package task

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/insightforge/ai-service/internal/notifier"
)

// Common errors
var (
	ErrNilNotifier     = errors.New("notifier cannot be nil")
	ErrNilNotification = errors.New("notification cannot be nil")
	ErrNilLogger       = errors.New("logger cannot be nil")
)

// Notifier is the delivery capability the task depends on.
type Notifier interface {
	Notify(ctx context.Context, url, secret string, notification *notifier.Notification) error
}

// WebhookDeliveryTask implements the Task interface for delivering one
// terminal-state callback. Delivery is attempted exactly once; a failure
// is logged by the runner and not retried.
type WebhookDeliveryTask struct {
	id           uuid.UUID
	url          string
	secret       string
	notification *notifier.Notification
	notifier     Notifier
	logger       *slog.Logger
}

// NewWebhookDeliveryTask creates a delivery task for the given
// notification and endpoint.
func NewWebhookDeliveryTask(
	url, secret string,
	notification *notifier.Notification,
	n Notifier,
	logger *slog.Logger,
) (*WebhookDeliveryTask, error) {
	if n == nil {
		return nil, ErrNilNotifier
	}
	if notification == nil {
		return nil, ErrNilNotification
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &WebhookDeliveryTask{
		id:           uuid.New(),
		url:          url,
		secret:       secret,
		notification: notification,
		notifier:     n,
		logger:       logger.With("task_type", TaskTypeWebhookDelivery, "analysis_task_id", notification.TaskID),
	}, nil
}

// ID returns the task's unique identifier
func (t *WebhookDeliveryTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *WebhookDeliveryTask) Type() string {
	return TaskTypeWebhookDelivery
}

// Execute delivers the callback.
func (t *WebhookDeliveryTask) Execute(ctx context.Context) error {
	t.logger.Debug("delivering webhook callback", "url", t.url)
	return t.notifier.Notify(ctx, t.url, t.secret, t.notification)
}
