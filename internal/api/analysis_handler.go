package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/insightforge/ai-service/internal/api/shared"
	"github.com/insightforge/ai-service/internal/service"
	"github.com/insightforge/ai-service/internal/store"
)

// AnalysisHandler handles analysis task submission and result lookup.
type AnalysisHandler struct {
	analysisService service.AnalysisService
	validator       *validator.Validate
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		validator:       validator.New(),
	}
}

// Analyze handles POST /analyze requests.
//
// The response acknowledges receipt, not success: the task's true outcome
// is reported through the webhook callback and the result endpoint. The
// only caller-visible failure past validation is the store being
// unavailable before the task could be recorded.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error(), nil)
		return
	}

	record, err := h.analysisService.ProcessAnalysis(r.Context(), service.AnalysisRequest{
		TaskID:        req.TaskID,
		Data:          req.Data,
		TaskType:      req.TaskType,
		ModelVersion:  req.ModelVersion,
		WebhookURL:    req.WebhookURL,
		WebhookSecret: req.WebhookSecret,
	})
	if err != nil {
		if store.IsUnavailableError(err) {
			shared.RespondWithError(w, r, http.StatusInternalServerError,
				"AI service internal error: task store unavailable", err)
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid analysis request", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AnalyzeResponse{
		Message: fmt.Sprintf(
			"analysis task accepted; outcome will be reported via webhook callback to %s",
			req.WebhookURL,
		),
		TaskID: record.TaskID,
	})
}

// GetResult handles GET /result/{task_id} requests.
func (h *AnalysisHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing task ID", nil)
		return
	}

	result, err := h.analysisService.GetResult(r.Context(), taskID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTaskNotFound):
			shared.RespondWithError(w, r, http.StatusNotFound, "task not found or expired", nil)
		case store.IsUnavailableError(err):
			shared.RespondWithError(w, r, http.StatusInternalServerError,
				"AI service internal error: task store unavailable", err)
		default:
			shared.RespondWithError(w, r, http.StatusInternalServerError,
				"Failed to load task result", err)
		}
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Health handles GET / requests with a liveness message.
func (h *AnalysisHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Message: "InsightForge AI Service is running",
	})
}
