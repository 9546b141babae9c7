package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/zombar/sentimentanalyzer/internal/analyzer"
)

// handleAnalyzeFile runs a queued single-file analysis and persists the
// result under the pre-assigned id.
func (w *Worker) handleAnalyzeFile(ctx context.Context, t *asynq.Task) error {
	var payload AnalyzeFilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	w.logger.Info("processing queued file analysis",
		"result_id", payload.ResultID,
		"path", payload.Path,
		"queue_wait_seconds", queueWait(payload.EnqueuedAt).Seconds(),
	)

	start := time.Now()
	result := w.analyzer.AnalyzeFile(payload.Path, analyzer.FileOptions{
		TextColumn: payload.TextColumn,
		MaxUnits:   payload.MaxUnits,
	})
	w.metrics.ObserveDuration("file", time.Since(start).Seconds())
	w.metrics.RecordFile(result.Success)
	if result.Success {
		w.metrics.RecordUnits(result.Analysis.Statistics.SentimentCounts)
	}

	if err := w.db.SaveResult(payload.ResultID, result); err != nil {
		return fmt.Errorf("failed to save result %s: %w", payload.ResultID, err)
	}

	w.logger.Info("queued file analysis saved",
		"result_id", payload.ResultID,
		"success", result.Success,
		"dominant", result.Analysis.Statistics.DominantSentiment,
	)

	return nil
}

// handleAnalyzeDirectory runs a queued corpus analysis. Each successful file
// result is persisted under an id derived from the corpus result id.
func (w *Worker) handleAnalyzeDirectory(ctx context.Context, t *asynq.Task) error {
	var payload AnalyzeDirectoryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	w.logger.Info("processing queued directory analysis",
		"result_id", payload.ResultID,
		"directory", payload.Directory,
		"queue_wait_seconds", queueWait(payload.EnqueuedAt).Seconds(),
	)

	start := time.Now()
	corpus := w.analyzer.AnalyzeDirectory(payload.Directory, analyzer.DirectoryOptions{
		TextColumn:      payload.TextColumn,
		MaxFiles:        payload.MaxFiles,
		MaxUnitsPerFile: payload.MaxUnits,
	})
	w.metrics.ObserveDuration("directory", time.Since(start).Seconds())

	for i, fileResult := range corpus.FileResults {
		w.metrics.RecordFile(fileResult.Success)
		if !fileResult.Success {
			continue
		}
		w.metrics.RecordUnits(fileResult.Analysis.Statistics.SentimentCounts)

		id := fmt.Sprintf("%s-%03d", payload.ResultID, i)
		if err := w.db.SaveResult(id, fileResult); err != nil {
			w.logger.Error("failed to save corpus file result",
				"result_id", id, "file", fileResult.FileName, "error", err)
		}
	}

	w.logger.Info("queued directory analysis complete",
		"result_id", payload.ResultID,
		"success", corpus.Success,
		"successful_files", corpus.SuccessfulFiles,
		"dominant", corpus.Dominant,
	)

	if !corpus.Success {
		// Not retriable: the directory is missing or holds no supported
		// files, retrying will not change that.
		w.logger.Warn("corpus analysis unsuccessful", "error", corpus.Error)
	}

	return nil
}

func queueWait(enqueuedAt int64) time.Duration {
	if enqueuedAt <= 0 {
		return 0
	}
	return time.Since(time.Unix(0, enqueuedAt))
}
