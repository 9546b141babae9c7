package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"

	"github.com/zombar/sentimentanalyzer/internal/analyzer"
	"github.com/zombar/sentimentanalyzer/internal/api"
	"github.com/zombar/sentimentanalyzer/internal/classifier"
	"github.com/zombar/sentimentanalyzer/internal/database"
	"github.com/zombar/sentimentanalyzer/internal/extractor"
	"github.com/zombar/sentimentanalyzer/internal/metrics"
	"github.com/zombar/sentimentanalyzer/internal/queue"
	"github.com/zombar/sentimentanalyzer/pkg/logging"
)

func main() {
	// Local overrides from .env, silently skipped when absent.
	gotenv.Load()

	portDefault := getEnv("PORT", "8080")
	dbPathDefault := getEnv("DB_PATH", "sentimentanalyzer.db")
	redisAddrDefault := getEnv("REDIS_ADDR", "localhost:6379")
	useQueueDefault := getEnvBool("USE_QUEUE", false)
	modelPathDefault := getEnv("SENTIMENT_MODEL_PATH", "")
	logFormatDefault := getEnv("LOG_FORMAT", "json")

	var (
		port      = flag.String("port", portDefault, "Server port (env: PORT)")
		dbPath    = flag.String("db", dbPathDefault, "Database file path (env: DB_PATH)")
		redisAddr = flag.String("redis", redisAddrDefault, "Redis address for the task queue (env: REDIS_ADDR)")
		useQueue  = flag.Bool("use-queue", useQueueDefault, "Process file analysis through the Redis queue (env: USE_QUEUE)")
		modelPath = flag.String("model", modelPathDefault, "Path to a local ONNX sentiment model (env: SENTIMENT_MODEL_PATH)")
		logFormat = flag.String("log-format", logFormatDefault, "Log format, json or dev (env: LOG_FORMAT)")
	)
	flag.Parse()

	logger := logging.Init(*logFormat, slog.LevelInfo)
	logger.Info("sentimentanalyzer service initializing", "version", "1.0.0")

	db, err := database.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "database_path", *dbPath)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	cls := classifier.Load(classifier.Config{
		ModelPath: *modelPath,
		Logger:    logger,
	})

	sentimentAnalyzer := analyzer.New(cls, extractor.New(), logger)
	m, registry := metrics.New()

	// Queue wiring is optional: without it file and directory analysis run
	// inline in the request.
	var (
		queueClient *queue.Client
		worker      *queue.Worker
		enqueuer    api.Enqueuer
	)
	if *useQueue {
		queueClient = queue.NewClient(queue.ClientConfig{RedisAddr: *redisAddr})
		defer queueClient.Close()
		enqueuer = queueClient

		worker = queue.NewWorker(queue.WorkerConfig{RedisAddr: *redisAddr}, db, sentimentAnalyzer, m)
		go func() {
			if err := worker.Start(); err != nil {
				logger.Error("queue worker failed", "error", err)
				os.Exit(1)
			}
		}()
	}

	apiHandler := api.NewHandler(db, sentimentAnalyzer, enqueuer, m, registry, logger)
	handler := logging.HTTPLoggingMiddleware(logger)(apiHandler)

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 6 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("sentimentanalyzer service starting",
			"port", *port,
			"database", *dbPath,
			"queue_enabled", *useQueue,
			"model_source", cls.Source(),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if worker != nil {
		worker.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
