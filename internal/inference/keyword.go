package inference

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/insightforge/ai-service/internal/domain"
)

// KeywordModel is a keyword-matching stand-in for a real analysis model.
// It serves as the reference implementation of the Model interface and as
// a test double; real backends implement the same contract.
type KeywordModel struct {
	version string
	latency time.Duration
}

// NewKeywordModel creates a KeywordModel reporting the given version tag.
// latency is an artificial delay per inference, standing in for real
// model latency; zero disables it.
func NewKeywordModel(version string, latency time.Duration) *KeywordModel {
	if version == "" {
		version = domain.DefaultModelVersion
	}
	return &KeywordModel{version: version, latency: latency}
}

// Version returns the model version tag.
func (m *KeywordModel) Version() string {
	return m.version
}

// Infer runs the keyword analysis selected by taskType over payload.
// The payload must carry a non-empty string field "text".
func (m *KeywordModel) Infer(
	ctx context.Context,
	payload map[string]interface{},
	taskType string,
) (map[string]interface{}, error) {
	if m.latency > 0 {
		select {
		case <-time.After(m.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	text, ok := payload["text"].(string)
	if !ok || text == "" {
		return nil, fmt.Errorf("%w: input data must contain a 'text' field (string)", ErrInvalidInput)
	}

	switch taskType {
	case domain.TaskTypeSentimentAnalysis:
		return m.analyzeSentiment(text), nil
	case domain.TaskTypeNamedEntityRecognition:
		return m.recognizeEntities(text), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTaskType, taskType)
	}
}

// analyzeSentiment classifies text by keyword lookup.
func (m *KeywordModel) analyzeSentiment(text string) map[string]interface{} {
	lower := strings.ToLower(text)

	sentiment := "Neutral"
	switch {
	case strings.Contains(lower, "positive"),
		strings.Contains(text, "好"),
		strings.Contains(text, "棒"):
		sentiment = "Positive"
	case strings.Contains(lower, "negative"),
		strings.Contains(text, "壞"),
		strings.Contains(text, "差"):
		sentiment = "Negative"
	}

	return map[string]interface{}{
		"sentiment":  sentiment,
		"score":      sentimentScore(text),
		"model_info": fmt.Sprintf("Sentiment Model %s", m.version),
	}
}

// recognizeEntities extracts known entities by substring match.
func (m *KeywordModel) recognizeEntities(text string) map[string]interface{} {
	entities := make([]map[string]interface{}, 0)

	if strings.Contains(text, "蘋果") {
		entities = append(entities, map[string]interface{}{"text": "蘋果", "type": "ORGANIZATION"})
	}
	if strings.Contains(text, "台灣") {
		entities = append(entities, map[string]interface{}{"text": "台灣", "type": "LOCATION"})
	}
	if strings.Contains(text, "張三") {
		entities = append(entities, map[string]interface{}{"text": "張三", "type": "PERSON"})
	}

	return map[string]interface{}{
		"entities":   entities,
		"model_info": fmt.Sprintf("NER Model %s", m.version),
	}
}

// sentimentScore derives a deterministic pseudo-confidence from the text,
// so repeated runs over the same input report the same score.
func sentimentScore(text string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	return float64(h.Sum32()%100) / 100
}
