// Package queue provides asynchronous file and directory analysis backed by
// Redis via asynq. The queue is optional: when no client is wired, callers
// run analysis inline.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants.
const (
	TypeAnalyzeFile      = "sentiment:analyze_file"
	TypeAnalyzeDirectory = "sentiment:analyze_directory"
)

// AnalyzeFilePayload is the payload for asynchronous single-file analysis.
type AnalyzeFilePayload struct {
	ResultID   string `json:"result_id"`
	Path       string `json:"path"`
	TextColumn string `json:"text_column,omitempty"`
	MaxUnits   int    `json:"max_units,omitempty"`
	// EnqueuedAt is a Unix timestamp in nanoseconds, used for queue wait
	// logging.
	EnqueuedAt int64 `json:"enqueued_at"`
}

// AnalyzeDirectoryPayload is the payload for asynchronous corpus analysis.
type AnalyzeDirectoryPayload struct {
	ResultID   string `json:"result_id"`
	Directory  string `json:"directory"`
	TextColumn string `json:"text_column,omitempty"`
	MaxFiles   int    `json:"max_files,omitempty"`
	MaxUnits   int    `json:"max_units_per_file,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"`
}

// Client wraps the asynq client for enqueueing analysis tasks.
type Client struct {
	client *asynq.Client
}

// ClientConfig contains configuration for the queue client.
type ClientConfig struct {
	RedisAddr string
}

// NewClient creates a new queue client.
func NewClient(cfg ClientConfig) *Client {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}
	return &Client{client: asynq.NewClient(redisOpt)}
}

// EnqueueAnalyzeFile enqueues a single-file analysis task.
func (c *Client) EnqueueAnalyzeFile(resultID, path, textColumn string, maxUnits int) (string, error) {
	payload := AnalyzeFilePayload{
		ResultID:   resultID,
		Path:       path,
		TextColumn: textColumn,
		MaxUnits:   maxUnits,
		EnqueuedAt: time.Now().UnixNano(),
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeAnalyzeFile, payloadBytes, asynq.TaskID(resultID))

	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(10 * time.Minute),
		asynq.Queue("file-analysis"),
		asynq.Retention(24 * time.Hour),
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue file analysis task: %w", err)
	}

	return info.ID, nil
}

// EnqueueAnalyzeDirectory enqueues a corpus analysis task. Corpus runs can
// touch many files, so they sit on a lower-priority queue with a longer
// timeout.
func (c *Client) EnqueueAnalyzeDirectory(resultID, dir, textColumn string, maxFiles, maxUnitsPerFile int) (string, error) {
	payload := AnalyzeDirectoryPayload{
		ResultID:   resultID,
		Directory:  dir,
		TextColumn: textColumn,
		MaxFiles:   maxFiles,
		MaxUnits:   maxUnitsPerFile,
		EnqueuedAt: time.Now().UnixNano(),
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeAnalyzeDirectory, payloadBytes, asynq.TaskID(resultID))

	opts := []asynq.Option{
		asynq.MaxRetry(2),
		asynq.Timeout(30 * time.Minute),
		asynq.Queue("corpus-analysis"),
		asynq.Retention(24 * time.Hour),
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue directory analysis task: %w", err)
	}

	return info.ID, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
