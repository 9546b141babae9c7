package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/zombar/sentimentanalyzer/internal/analyzer"
	"github.com/zombar/sentimentanalyzer/internal/database"
	"github.com/zombar/sentimentanalyzer/internal/metrics"
)

// Worker wraps the asynq server for processing analysis tasks.
type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	db          *database.DB
	analyzer    *analyzer.Analyzer
	metrics     *metrics.Metrics
	concurrency int
	logger      *slog.Logger
}

// WorkerConfig contains configuration for the queue worker.
type WorkerConfig struct {
	RedisAddr   string
	Concurrency int
}

// NewWorker creates a new queue worker.
func NewWorker(cfg WorkerConfig, db *database.DB, a *analyzer.Analyzer, m *metrics.Metrics) *Worker {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	serverCfg := asynq.Config{
		Concurrency: cfg.Concurrency,

		// Single-file requests come from interactive callers and outrank
		// corpus runs.
		Queues: map[string]int{
			"file-analysis":   6,
			"corpus-analysis": 3,
		},
		StrictPriority: false,

		RetryDelayFunc: retryDelay,

		ShutdownTimeout: 30 * time.Second,

		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)

			slog.Error("task processing error",
				"task_type", task.Type(),
				"error", err,
				"retry_count", retried,
				"max_retries", maxRetry,
			)
		}),
	}

	w := &Worker{
		server:      asynq.NewServer(redisOpt, serverCfg),
		mux:         asynq.NewServeMux(),
		db:          db,
		analyzer:    a,
		metrics:     m,
		concurrency: cfg.Concurrency,
		logger:      slog.Default(),
	}

	w.registerHandlers()

	return w
}

// retryDelay backs off quickly for file tasks and more slowly for corpus
// tasks, which are expensive to rerun.
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	var delays []time.Duration
	if task.Type() == TypeAnalyzeDirectory {
		delays = []time.Duration{2 * time.Minute, 10 * time.Minute, 30 * time.Minute}
	} else {
		delays = []time.Duration{30 * time.Second, 2 * time.Minute, 5 * time.Minute}
	}
	if n < len(delays) {
		return delays[n]
	}
	return delays[len(delays)-1]
}

func (w *Worker) registerHandlers() {
	w.mux.HandleFunc(TypeAnalyzeFile, w.handleAnalyzeFile)
	w.mux.HandleFunc(TypeAnalyzeDirectory, w.handleAnalyzeDirectory)
}

// Start begins processing tasks. It blocks until the server stops.
func (w *Worker) Start() error {
	w.logger.Info("starting asynq worker",
		"concurrency", w.concurrency,
		"queues", map[string]int{"file-analysis": 6, "corpus-analysis": 3},
	)

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("asynq server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the worker.
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down asynq worker")
	w.server.Shutdown()
}
