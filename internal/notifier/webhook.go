package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single webhook delivery attempt.
const DefaultTimeout = 10 * time.Second

// Common notifier errors
var (
	ErrNoWebhookURL   = errors.New("webhook URL is not set")
	ErrDeliveryFailed = errors.New("webhook delivery failed")
)

// WebhookNotifier delivers notifications to a caller-specified endpoint
// via HTTP POST, signing the body when a shared secret is configured.
type WebhookNotifier struct {
	client *http.Client
	logger *slog.Logger
}

// NewWebhookNotifier creates a WebhookNotifier with the given delivery
// timeout. A non-positive timeout falls back to DefaultTimeout.
func NewWebhookNotifier(logger *slog.Logger, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &WebhookNotifier{
		client: &http.Client{Timeout: timeout},
		logger: logger.With("component", "webhook_notifier"),
	}
}

// Notify serializes the notification once, signs the exact body bytes when
// secret is non-empty, and POSTs them to url. Network errors, timeouts and
// non-2xx responses are reported as ErrDeliveryFailed; callers log and
// move on, they do not retry.
func (n *WebhookNotifier) Notify(ctx context.Context, url, secret string, notification *Notification) error {
	if url == "" {
		return ErrNoWebhookURL
	}

	body, err := notification.CanonicalBody()
	if err != nil {
		return fmt.Errorf("failed to serialize notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if secret != "" {
		signature := Sign(secret, body)
		req.Header.Set(SignatureHeader, signature)
		n.logger.Debug("signed webhook payload",
			"task_id", notification.TaskID,
			"signature", signature)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: endpoint returned status %d", ErrDeliveryFailed, resp.StatusCode)
	}

	n.logger.Info("webhook delivered",
		"task_id", notification.TaskID,
		"status", notification.Status,
		"response_status", resp.StatusCode)

	return nil
}
