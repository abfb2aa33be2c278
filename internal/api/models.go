package api

// AnalyzeRequest represents the request body for submitting an analysis task.
// Data carries the serialized JSON input; it is stored as submitted and
// decoded only by the inference step, so a malformed Data still yields an
// accepted task that fails asynchronously.
type AnalyzeRequest struct {
	TaskID        string `json:"task_id"        validate:"required"`
	Data          string `json:"data"           validate:"required"`
	TaskType      string `json:"task_type"      validate:"required"`
	ModelVersion  string `json:"model_version"`
	WebhookURL    string `json:"webhook_url"    validate:"required,url"`
	WebhookSecret string `json:"webhook_secret" validate:"omitempty"`
}

// AnalyzeResponse is the immediate acknowledgement returned by /analyze.
// It is sent once the terminal state is recorded but before the webhook
// callback is delivered.
type AnalyzeResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

// HealthResponse is the liveness message returned by GET /.
type HealthResponse struct {
	Message string `json:"message"`
}
