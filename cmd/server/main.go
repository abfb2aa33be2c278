// Package main implements the entry point for the InsightForge AI service,
// which accepts asynchronous analysis tasks, tracks their lifecycle in the
// task store, and reports terminal outcomes through signed webhook callbacks.
package main

import (
	"context"
	"log"

	"github.com/insightforge/ai-service/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := newApplication(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(context.Background()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
