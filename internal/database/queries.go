package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zombar/sentimentanalyzer/internal/models"
)

// ErrNotFound is returned when a result id does not exist.
var ErrNotFound = errors.New("result not found")

// SaveResult stores a file analysis under the given id, replacing any
// existing row with the same id.
func (db *DB) SaveResult(id string, result models.FileResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	stats := result.Analysis.Statistics
	now := time.Now().UTC()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO results (
			id, file_name, file_type, dominant_sentiment,
			positive_count, negative_count, neutral_count,
			total_texts, processed_texts, model_source,
			result, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_name = excluded.file_name,
			file_type = excluded.file_type,
			dominant_sentiment = excluded.dominant_sentiment,
			positive_count = excluded.positive_count,
			negative_count = excluded.negative_count,
			neutral_count = excluded.neutral_count,
			total_texts = excluded.total_texts,
			processed_texts = excluded.processed_texts,
			model_source = excluded.model_source,
			result = excluded.result,
			updated_at = excluded.updated_at
	`, id, result.FileName, result.FileType, stats.DominantSentiment,
		stats.SentimentCounts[models.LabelPositive],
		stats.SentimentCounts[models.LabelNegative],
		stats.SentimentCounts[models.LabelNeutral],
		result.TotalTexts, result.ProcessedTexts, result.Analysis.ModelSource,
		string(payload), now, now)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetResult retrieves a stored result by id.
func (db *DB) GetResult(id string) (*models.StoredResult, error) {
	var (
		payload   string
		createdAt time.Time
		updatedAt time.Time
	)

	err := db.conn.QueryRow(`
		SELECT result, created_at, updated_at
		FROM results
		WHERE id = ?
	`, id).Scan(&payload, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var result models.FileResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &models.StoredResult{
		ID:        id,
		Result:    result,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// ListResults returns stored results newest first, with optional dominant
// sentiment filtering.
func (db *DB) ListResults(limit, offset int, sentiment string) ([]*models.StoredResult, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, result, created_at, updated_at
		FROM results
	`
	args := []any{}
	if sentiment != "" {
		query += " WHERE dominant_sentiment = ?"
		args = append(args, sentiment)
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*models.StoredResult
	for rows.Next() {
		var (
			id        string
			payload   string
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &payload, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var result models.FileResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}

		results = append(results, &models.StoredResult{
			ID:        id,
			Result:    result,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		})
	}

	return results, rows.Err()
}

// DeleteResult removes a stored result by id.
func (db *DB) DeleteResult(id string) error {
	res, err := db.conn.Exec("DELETE FROM results WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// CountResults returns the number of stored results.
func (db *DB) CountResults() (int, error) {
	var count int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM results").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}
