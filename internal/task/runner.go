package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/insightforge/ai-service/internal/redact"
)

// ErrQueueFull is returned by Submit when the in-memory queue has no room.
// The work is dropped; for best-effort deliveries the caller logs and
// moves on.
var ErrQueueFull = errors.New("task queue is full")

// ErrRunnerStopped is returned by Submit after Stop has been called.
var ErrRunnerStopped = errors.New("task runner is stopped")

// RunnerConfig holds configuration for the background task runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Runner manages background task processing. Tasks submitted to the
// runner execute independently of any request lifetime: a response can be
// sent before, during, or after the work it scheduled runs. Stop drains
// the queue, so work accepted before shutdown still runs to completion.
type Runner struct {
	taskChan chan Task
	wg       sync.WaitGroup
	config   RunnerConfig
	logger   *slog.Logger

	mu      sync.Mutex
	stopped bool
}

// NewRunner creates a new Runner
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultRunnerConfig().QueueSize
	}

	return &Runner{
		taskChan: make(chan Task, config.QueueSize),
		config:   config,
		logger:   logger,
	}
}

// Start launches the worker pool
func (r *Runner) Start() {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

// Submit adds a task to the queue without blocking. Returns ErrQueueFull
// when the buffer is exhausted and ErrRunnerStopped after shutdown began.
func (r *Runner) Submit(task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return ErrRunnerStopped
	}

	select {
	case r.taskChan <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop shuts the runner down gracefully: no further submissions are
// accepted, queued tasks are drained, and Stop returns once all workers
// have finished.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.taskChan)
	r.mu.Unlock()

	r.wg.Wait()
}

// worker processes tasks from the queue until it is closed and drained
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for task := range r.taskChan {
		r.processTask(task, id)
	}

	r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
}

// processTask handles execution of a single task
func (r *Runner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	logger.Debug("processing task")

	// The execution context is deliberately detached from any request
	// context: scheduled work must survive the response that queued it.
	if err := task.Execute(context.Background()); err != nil {
		// Delivery errors can embed callback endpoints; keep them out of logs.
		logger.Error("task execution failed", "error", redact.Error(err))
		return
	}

	logger.Debug("task completed")
}
