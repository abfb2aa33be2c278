package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/insightforge/ai-service/internal/api/middleware"
)

// NewRouter builds the service's HTTP router with the standard middleware
// chain mounted ahead of the handlers.
func NewRouter(handler *AnalysisHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Get("/", handler.Health)
	r.Post("/analyze", handler.Analyze)
	r.Get("/result/{task_id}", handler.GetResult)

	return r
}
