package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/insightforge/ai-service/internal/api"
	"github.com/insightforge/ai-service/internal/config"
	"github.com/insightforge/ai-service/internal/inference"
	"github.com/insightforge/ai-service/internal/notifier"
	"github.com/insightforge/ai-service/internal/platform/gemini"
	"github.com/insightforge/ai-service/internal/platform/logger"
	redisplatform "github.com/insightforge/ai-service/internal/platform/redis"
	"github.com/insightforge/ai-service/internal/service"
	"github.com/insightforge/ai-service/internal/task"
)

// application holds the wired components of the running service.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	taskStore *redisplatform.TaskStore
	runner    *task.Runner
	router    http.Handler
}

// newApplication wires the application from configuration: logging, the
// Redis task store, the inference model, the webhook notifier with its
// dispatch pool, the orchestrating service, and the HTTP router.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	appLogger := logger.Setup(cfg.Server)

	taskStore := redisplatform.NewTaskStore(
		fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
	)

	// Startup reachability check. The service still starts when the store
	// is down: requests fail with a store-unavailable response until it
	// comes back, matching per-call error handling.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := taskStore.Ping(pingCtx); err != nil {
		appLogger.Error("task store unreachable at startup",
			"host", cfg.Redis.Host,
			"port", cfg.Redis.Port,
			"error", err)
	} else {
		appLogger.Info("connected to task store",
			"host", cfg.Redis.Host,
			"port", cfg.Redis.Port)
	}

	model, err := buildModel(ctx, appLogger, cfg.Inference)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize inference model: %w", err)
	}

	webhookNotifier := notifier.NewWebhookNotifier(
		appLogger,
		time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second,
	)

	runner := task.NewRunner(task.RunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, appLogger)
	runner.Start()

	analysisService, err := service.NewAnalysisService(
		taskStore,
		model,
		webhookNotifier,
		runner,
		appLogger,
		time.Duration(cfg.Task.TTLSeconds)*time.Second,
		service.WebhookDefaults{
			URL:    cfg.Webhook.URL,
			Secret: cfg.Webhook.Secret,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis service: %w", err)
	}

	handler := api.NewAnalysisHandler(analysisService)

	return &application{
		config:    cfg,
		logger:    appLogger,
		taskStore: taskStore,
		runner:    runner,
		router:    api.NewRouter(handler),
	}, nil
}

// buildModel selects the inference backend from configuration.
func buildModel(ctx context.Context, appLogger *slog.Logger, cfg config.InferenceConfig) (inference.Model, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewModel(ctx, appLogger, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ModelVersion)
	default:
		return inference.NewKeywordModel(
			cfg.ModelVersion,
			time.Duration(cfg.LatencyMS)*time.Millisecond,
		), nil
	}
}

// cleanup releases application resources during shutdown. The runner is
// stopped first so queued webhook deliveries drain before the store closes.
func (app *application) cleanup() {
	app.runner.Stop()

	if err := app.taskStore.Close(); err != nil {
		app.logger.Error("failed to close task store", "error", err)
	}
}
