// Package api exposes the sentiment pipeline over HTTP.
package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/zombar/sentimentanalyzer/internal/analyzer"
	"github.com/zombar/sentimentanalyzer/internal/database"
	"github.com/zombar/sentimentanalyzer/internal/metrics"
	"github.com/zombar/sentimentanalyzer/internal/models"
)

// Enqueuer is the queue capability the handlers need. A nil Enqueuer means
// file and directory analysis run inline in the request.
type Enqueuer interface {
	EnqueueAnalyzeFile(resultID, path, textColumn string, maxUnits int) (string, error)
	EnqueueAnalyzeDirectory(resultID, dir, textColumn string, maxFiles, maxUnitsPerFile int) (string, error)
}

// Handler handles HTTP requests
type Handler struct {
	db       *database.DB
	analyzer *analyzer.Analyzer
	queue    Enqueuer
	metrics  *metrics.Metrics
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewHandler creates a new API handler with CORS support and metrics.
func NewHandler(db *database.DB, a *analyzer.Analyzer, q Enqueuer, m *metrics.Metrics, registry *prometheus.Registry, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		db:       db,
		analyzer: a,
		queue:    q,
		metrics:  m,
		logger:   logger,
		mux:      http.NewServeMux(),
	}

	h.setupRoutes(registry)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(h.mux)
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes(registry *prometheus.Registry) {
	h.mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	h.mux.HandleFunc("/health", h.handleHealth)
	h.mux.HandleFunc("/api/formats", h.handleFormats)
	h.mux.HandleFunc("/api/analyze/text", h.handleAnalyzeText)
	h.mux.HandleFunc("/api/analyze/batch", h.handleAnalyzeBatch)
	h.mux.HandleFunc("/api/analyze/file", h.handleAnalyzeFile)
	h.mux.HandleFunc("/api/analyze/directory", h.handleAnalyzeDirectory)
	h.mux.HandleFunc("/api/results", h.handleListResults)
	h.mux.HandleFunc("/api/results/", h.handleResultOperations)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]any{
		"status":       "ok",
		"model_source": h.analyzer.ModelSource(),
		"time":         time.Now().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleFormats lists the supported input formats.
func (h *Handler) handleFormats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, map[string]any{
		"supported_extensions": h.analyzer.SupportedExtensions(),
		"fallback":             "files with other extensions are read as plain text",
	}, http.StatusOK)
}

// handleAnalyzeText classifies one raw text synchronously.
func (h *Handler) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, "Text field is required", http.StatusBadRequest)
		return
	}

	result := h.analyzer.AnalyzeText(req.Text)
	h.metrics.RecordUnits(map[string]int{result.Analysis.Sentiment: 1})

	respondJSON(w, result, http.StatusOK)
}

// handleAnalyzeBatch classifies an ordered list of texts synchronously.
func (h *Handler) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Texts []string `json:"texts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Texts) == 0 {
		respondError(w, "Texts field is required", http.StatusBadRequest)
		return
	}

	resultChan := make(chan models.BatchResult)

	go func() {
		start := time.Now()
		result := h.analyzer.AnalyzeBatch(req.Texts)
		h.metrics.ObserveDuration("batch", time.Since(start).Seconds())
		h.metrics.RecordUnits(result.Statistics.SentimentCounts)
		resultChan <- result
	}()

	select {
	case result := <-resultChan:
		respondJSON(w, result, http.StatusOK)
	case <-time.After(30 * time.Second):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleAnalyzeFile analyzes one file. With a queue wired the request is
// enqueued and a result id returned immediately; otherwise analysis runs
// inline and the stored result is returned.
func (h *Handler) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Path       string `json:"path"`
		TextColumn string `json:"text_column,omitempty"`
		MaxUnits   int    `json:"max_units,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		respondError(w, "Path field is required", http.StatusBadRequest)
		return
	}

	resultID := generateID()

	if h.queue != nil {
		taskID, err := h.queue.EnqueueAnalyzeFile(resultID, req.Path, req.TextColumn, req.MaxUnits)
		if err != nil {
			respondError(w, fmt.Sprintf("Failed to enqueue analysis: %v", err), http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]any{
			"result_id": resultID,
			"task_id":   taskID,
			"status":    "queued",
		}, http.StatusAccepted)
		return
	}

	start := time.Now()
	result := h.analyzer.AnalyzeFile(req.Path, analyzer.FileOptions{
		TextColumn: req.TextColumn,
		MaxUnits:   req.MaxUnits,
	})
	h.metrics.ObserveDuration("file", time.Since(start).Seconds())
	h.metrics.RecordFile(result.Success)

	if !result.Success {
		respondJSON(w, result, http.StatusUnprocessableEntity)
		return
	}
	h.metrics.RecordUnits(result.Analysis.Statistics.SentimentCounts)

	if err := h.db.SaveResult(resultID, result); err != nil {
		h.logger.Error("failed to save result", "result_id", resultID, "error", err)
		respondError(w, "Failed to save result", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]any{
		"result_id": resultID,
		"result":    result,
	}, http.StatusOK)
}

// handleAnalyzeDirectory analyzes a directory tree, queued when possible.
func (h *Handler) handleAnalyzeDirectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Directory       string `json:"directory"`
		TextColumn      string `json:"text_column,omitempty"`
		MaxFiles        int    `json:"max_files,omitempty"`
		MaxUnitsPerFile int    `json:"max_units_per_file,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Directory == "" {
		respondError(w, "Directory field is required", http.StatusBadRequest)
		return
	}

	resultID := generateID()

	if h.queue != nil {
		taskID, err := h.queue.EnqueueAnalyzeDirectory(resultID, req.Directory, req.TextColumn, req.MaxFiles, req.MaxUnitsPerFile)
		if err != nil {
			respondError(w, fmt.Sprintf("Failed to enqueue analysis: %v", err), http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]any{
			"result_id": resultID,
			"task_id":   taskID,
			"status":    "queued",
		}, http.StatusAccepted)
		return
	}

	resultChan := make(chan models.CorpusResult)

	go func() {
		start := time.Now()
		corpus := h.analyzer.AnalyzeDirectory(req.Directory, analyzer.DirectoryOptions{
			TextColumn:      req.TextColumn,
			MaxFiles:        req.MaxFiles,
			MaxUnitsPerFile: req.MaxUnitsPerFile,
		})
		h.metrics.ObserveDuration("directory", time.Since(start).Seconds())
		for _, fr := range corpus.FileResults {
			h.metrics.RecordFile(fr.Success)
			if fr.Success {
				h.metrics.RecordUnits(fr.Analysis.Statistics.SentimentCounts)
			}
		}
		resultChan <- corpus
	}()

	select {
	case corpus := <-resultChan:
		status := http.StatusOK
		if !corpus.Success {
			status = http.StatusUnprocessableEntity
		}
		respondJSON(w, corpus, status)
	case <-time.After(5 * time.Minute):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleListResults lists stored results with pagination and optional
// dominant sentiment filtering.
func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 10
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	sentiment := r.URL.Query().Get("sentiment")

	resultChan := make(chan []*models.StoredResult)
	errorChan := make(chan error)

	go func() {
		results, err := h.db.ListResults(limit, offset, sentiment)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- results
	}()

	select {
	case results := <-resultChan:
		if results == nil {
			results = []*models.StoredResult{}
		}
		respondJSON(w, results, http.StatusOK)
	case err := <-errorChan:
		respondError(w, err.Error(), http.StatusInternalServerError)
	case <-time.After(30 * time.Second):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleResultOperations handles GET and DELETE for specific results.
func (h *Handler) handleResultOperations(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/api/results/"):]
	if idx := strings.Index(id, "/"); idx != -1 {
		id = id[:idx]
	}
	if id == "" {
		respondError(w, "Result ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getResult(w, r, id)
	case http.MethodDelete:
		h.deleteResult(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getResult(w http.ResponseWriter, r *http.Request, id string) {
	resultChan := make(chan *models.StoredResult)
	errorChan := make(chan error)

	go func() {
		stored, err := h.db.GetResult(id)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- stored
	}()

	select {
	case stored := <-resultChan:
		respondJSON(w, stored, http.StatusOK)
	case err := <-errorChan:
		if err == database.ErrNotFound {
			respondError(w, err.Error(), http.StatusNotFound)
			return
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
	case <-time.After(30 * time.Second):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

func (h *Handler) deleteResult(w http.ResponseWriter, r *http.Request, id string) {
	errorChan := make(chan error)

	go func() {
		errorChan <- h.db.DeleteResult(id)
	}()

	select {
	case err := <-errorChan:
		if err == database.ErrNotFound {
			respondError(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			respondError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]string{"status": "deleted", "id": id}, http.StatusOK)
	case <-time.After(30 * time.Second):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// generateID generates a UUID for a result
func generateID() string {
	uuid := make([]byte, 16)
	_, err := rand.Read(uuid)
	if err != nil {
		return time.Now().Format("20060102150405") + "-" + strconv.FormatInt(time.Now().UnixNano()%1000000, 10)
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x40
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hex.EncodeToString(uuid[0:4]),
		hex.EncodeToString(uuid[4:6]),
		hex.EncodeToString(uuid[6:8]),
		hex.EncodeToString(uuid[8:10]),
		hex.EncodeToString(uuid[10:16]))
}
