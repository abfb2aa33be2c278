package notifier

import (
	"encoding/json"

	"github.com/insightforge/ai-service/internal/domain"
)

// Notification is the ephemeral callback message describing a task's
// terminal state. It is constructed once per task and sent at most once;
// it is never persisted.
type Notification struct {
	TaskID       string                 `json:"task_id"`
	Status       domain.TaskStatus      `json:"status"`
	Result       map[string]interface{} `json:"result,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	ModelVersion string                 `json:"model_version"`
}

// CanonicalBody serializes the notification to the exact bytes transmitted
// as the request body. The signature is computed over these same bytes, so
// the receiver can verify by recomputing over the raw body it received.
func (n *Notification) CanonicalBody() ([]byte, error) {
	return json.Marshal(n)
}
