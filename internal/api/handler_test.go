package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zombar/sentimentanalyzer/internal/analyzer"
	"github.com/zombar/sentimentanalyzer/internal/classifier"
	"github.com/zombar/sentimentanalyzer/internal/database"
	"github.com/zombar/sentimentanalyzer/internal/extractor"
	"github.com/zombar/sentimentanalyzer/internal/metrics"
	"github.com/zombar/sentimentanalyzer/internal/models"
)

func newTestHandler(t *testing.T, q Enqueuer) http.Handler {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	cls := classifier.Load(classifier.Config{DisableVader: true})
	a := analyzer.New(cls, extractor.New(), nil)
	m, registry := metrics.New()

	return NewHandler(db, a, q, m, registry, nil)
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", resp["status"])
	}
	if resp["model_source"] != "seed" {
		t.Errorf("Expected seed model source, got %q", resp["model_source"])
	}
}

func TestFormatsEndpoint(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".csv") {
		t.Error("Expected .csv in supported extensions")
	}
}

func TestAnalyzeTextEndpoint(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := postJSON(t, handler, "/api/analyze/text", map[string]string{"text": "amazing wonderful product"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.SingleResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("Expected success")
	}
	if resp.Analysis.Sentiment != models.LabelPositive {
		t.Errorf("Expected positive, got %q", resp.Analysis.Sentiment)
	}
}

func TestAnalyzeTextValidation(t *testing.T) {
	handler := newTestHandler(t, nil)

	tests := []struct {
		name string
		body any
		code int
	}{
		{"missing text", map[string]string{}, http.StatusBadRequest},
		{"blank text", map[string]string{"text": "   "}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, handler, "/api/analyze/text", tt.body)
			if rec.Code != tt.code {
				t.Errorf("Expected %d, got %d", tt.code, rec.Code)
			}
		})
	}
}

func TestAnalyzeTextMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analyze/text", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestAnalyzeBatchEndpoint(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := postJSON(t, handler, "/api/analyze/batch", map[string][]string{
		"texts": {"great product", "terrible product"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.BatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Statistics.AnalyzedTexts != 2 {
		t.Errorf("Expected 2 analyzed, got %d", resp.Statistics.AnalyzedTexts)
	}
	if resp.Statistics.DominantSentiment != models.LabelPositive {
		t.Errorf("Expected positive tie-break, got %q", resp.Statistics.DominantSentiment)
	}
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := postJSON(t, handler, "/api/analyze/batch", map[string][]string{"texts": {}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeFileInline(t *testing.T) {
	handler := newTestHandler(t, nil)

	path := filepath.Join(t.TempDir(), "reviews.txt")
	if err := os.WriteFile(path, []byte("Great stuff.\n\nAwful stuff."), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := postJSON(t, handler, "/api/analyze/file", map[string]string{"path": path})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ResultID string            `json:"result_id"`
		Result   models.FileResult `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ResultID == "" {
		t.Error("Expected a result id")
	}
	if resp.Result.TotalTexts != 2 {
		t.Errorf("Expected 2 units, got %d", resp.Result.TotalTexts)
	}

	// Stored result should be retrievable.
	req := httptest.NewRequest(http.MethodGet, "/api/results/"+resp.ResultID, nil)
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, req)
	if getRec.Code != http.StatusOK {
		t.Errorf("Expected stored result, got %d", getRec.Code)
	}
}

func TestAnalyzeFileMissingPath(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := postJSON(t, handler, "/api/analyze/file", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeFileUnreadable(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := postJSON(t, handler, "/api/analyze/file", map[string]string{
		"path": filepath.Join(t.TempDir(), "absent.txt"),
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", rec.Code)
	}
}

// fakeEnqueuer records enqueue calls for queued-path tests.
type fakeEnqueuer struct {
	fileCalls int
	dirCalls  int
	fail      bool
}

func (f *fakeEnqueuer) EnqueueAnalyzeFile(resultID, path, textColumn string, maxUnits int) (string, error) {
	f.fileCalls++
	if f.fail {
		return "", fmt.Errorf("redis unavailable")
	}
	return "task-" + resultID, nil
}

func (f *fakeEnqueuer) EnqueueAnalyzeDirectory(resultID, dir, textColumn string, maxFiles, maxUnitsPerFile int) (string, error) {
	f.dirCalls++
	if f.fail {
		return "", fmt.Errorf("redis unavailable")
	}
	return "task-" + resultID, nil
}

func TestAnalyzeFileQueued(t *testing.T) {
	q := &fakeEnqueuer{}
	handler := newTestHandler(t, q)

	rec := postJSON(t, handler, "/api/analyze/file", map[string]string{"path": "/data/some.csv"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", rec.Code)
	}
	if q.fileCalls != 1 {
		t.Errorf("Expected 1 enqueue call, got %d", q.fileCalls)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "queued" {
		t.Errorf("Expected queued status, got %q", resp["status"])
	}
	if resp["result_id"] == "" || resp["task_id"] == "" {
		t.Error("Expected result and task ids")
	}
}

func TestAnalyzeFileQueueFailure(t *testing.T) {
	handler := newTestHandler(t, &fakeEnqueuer{fail: true})

	rec := postJSON(t, handler, "/api/analyze/file", map[string]string{"path": "/data/some.csv"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func TestAnalyzeDirectoryInline(t *testing.T) {
	handler := newTestHandler(t, nil)
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("wonderful"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := postJSON(t, handler, "/api/analyze/directory", map[string]string{"directory": dir})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.CorpusResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SuccessfulFiles != 1 {
		t.Errorf("Expected 1 successful file, got %d", resp.SuccessfulFiles)
	}
	if resp.Dominant != models.LabelPositive {
		t.Errorf("Expected positive dominant, got %q", resp.Dominant)
	}
}

func TestAnalyzeDirectoryQueued(t *testing.T) {
	q := &fakeEnqueuer{}
	handler := newTestHandler(t, q)

	rec := postJSON(t, handler, "/api/analyze/directory", map[string]string{"directory": "/data"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", rec.Code)
	}
	if q.dirCalls != 1 {
		t.Errorf("Expected 1 enqueue call, got %d", q.dirCalls)
	}
}

func TestListResults(t *testing.T) {
	handler := newTestHandler(t, nil)

	// Empty store still yields a JSON array.
	req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("Expected empty array, got %q", rec.Body.String())
	}
}

func TestGetResultNotFound(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/results/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestDeleteResultNotFound(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/results/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(t, nil)

	// Drive one classification so a counter exists.
	postJSON(t, handler, "/api/analyze/text", map[string]string{"text": "wonderful"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sentiment_units_classified_total") {
		t.Error("Expected units counter in metrics output")
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("Expected runtime collector metrics in output")
	}
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateID()
		if len(id) != 36 {
			t.Fatalf("Expected UUID length 36, got %d (%q)", len(id), id)
		}
		if seen[id] {
			t.Fatalf("Duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}
