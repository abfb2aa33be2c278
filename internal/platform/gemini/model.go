// Package gemini implements the inference.Model interface on top of
// Google's Gemini API, as the substitutable real-model backend for the
// keyword reference implementation.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/insightforge/ai-service/internal/domain"
	"github.com/insightforge/ai-service/internal/inference"
	"github.com/insightforge/ai-service/internal/redact"
)

// ErrModelFailure is returned for Gemini failures outside the inference
// boundary's typed errors. The orchestrator records these as generic
// processing failures.
var ErrModelFailure = errors.New("gemini model failure")

// Model calls the Gemini API to execute analysis tasks.
type Model struct {
	logger  *slog.Logger
	client  *genai.Client
	model   string
	version string
}

// NewModel creates a Gemini-backed model. apiKey and modelName must be
// non-empty; version is the tag reported in results and callbacks.
func NewModel(ctx context.Context, logger *slog.Logger, apiKey, modelName, version string) (*Model, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", ErrModelFailure)
	}
	if modelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrModelFailure)
	}
	if version == "" {
		version = domain.DefaultModelVersion
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create client: %v", ErrModelFailure, err)
	}

	return &Model{
		logger:  logger.With("component", "gemini_model"),
		client:  client,
		model:   modelName,
		version: version,
	}, nil
}

// Version returns the model version tag.
func (m *Model) Version() string {
	return m.version
}

// Infer prompts Gemini for the analysis selected by taskType and parses
// the JSON object it returns. The payload must carry a non-empty string
// field "text", matching the contract of the reference model.
func (m *Model) Infer(
	ctx context.Context,
	payload map[string]interface{},
	taskType string,
) (map[string]interface{}, error) {
	text, ok := payload["text"].(string)
	if !ok || text == "" {
		return nil, fmt.Errorf("%w: input data must contain a 'text' field (string)", inference.ErrInvalidInput)
	}

	prompt, err := buildPrompt(taskType, text)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), nil)
	if err != nil {
		m.logger.ErrorContext(ctx, "Gemini API call failed", "task_type", taskType, "error", redact.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrModelFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty response", ErrModelFailure)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: content blocked by safety filters", ErrModelFailure)
	}

	raw := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			raw += part.Text
		}
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response JSON: %v", ErrModelFailure, err)
	}

	result["model_info"] = fmt.Sprintf("Gemini %s (%s)", m.model, m.version)
	return result, nil
}

// buildPrompt maps a task type to its instruction prompt.
func buildPrompt(taskType, text string) (string, error) {
	switch taskType {
	case domain.TaskTypeSentimentAnalysis:
		return fmt.Sprintf(
			"Classify the sentiment of the following text as Positive, Negative or Neutral. "+
				"Respond with a JSON object {\"sentiment\": string, \"score\": number}.\n\nText: %s",
			text,
		), nil
	case domain.TaskTypeNamedEntityRecognition:
		return fmt.Sprintf(
			"Extract named entities from the following text. "+
				"Respond with a JSON object {\"entities\": [{\"text\": string, \"type\": string}]} "+
				"using types such as ORGANIZATION, LOCATION and PERSON.\n\nText: %s",
			text,
		), nil
	default:
		return "", fmt.Errorf("%w: %s", inference.ErrUnsupportedTaskType, taskType)
	}
}
