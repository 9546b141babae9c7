package models

import "time"

// Sentiment labels produced by the classifier. LabelOrder is the fixed
// enumeration used for dominant-label tie-breaking: when two labels hold the
// same count, the one appearing first wins.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
	LabelError    = "error"
)

// LabelOrder lists the sentiment labels in tie-break priority order.
var LabelOrder = []string{LabelPositive, LabelNegative, LabelNeutral}

// ResultMetadata carries per-classification bookkeeping.
type ResultMetadata struct {
	ModelSource string `json:"model_source"`
	ProcessedAt string `json:"processed_at"`
	TextLength  int    `json:"text_length"`
	WordCount   int    `json:"word_count"`
}

// ClassificationResult is the outcome of classifying a single text unit.
// Text longer than 500 characters is truncated in this payload only; the
// classifier always sees the full unit.
type ClassificationResult struct {
	Text           string             `json:"text"`
	Sentiment      string             `json:"sentiment"`
	Confidence     float64            `json:"confidence"`
	SentimentScore float64            `json:"sentiment_score"`
	Probabilities  map[string]float64 `json:"probabilities"`
	Error          string             `json:"error,omitempty"`
	Metadata       ResultMetadata     `json:"metadata"`
}

// BatchStatistics summarizes a batch of classification results. It is always
// recomputed from the full result sequence, never patched incrementally.
type BatchStatistics struct {
	TotalTexts           int                `json:"total_texts"`
	AnalyzedTexts        int                `json:"analyzed_texts"`
	SentimentCounts      map[string]int     `json:"sentiment_counts"`
	SentimentPercentages map[string]float64 `json:"sentiment_percentages"`
	DominantSentiment    string             `json:"dominant_sentiment"`
	AverageConfidence    float64            `json:"average_confidence"`
	AverageScore         float64            `json:"average_sentiment_score"`
}

// BatchResult is the full outcome of analyzing an ordered sequence of texts.
// Results is capped at the first 100 entries for payload size; Statistics
// covers the complete batch.
type BatchResult struct {
	Success     bool                   `json:"success"`
	Error       string                 `json:"error,omitempty"`
	ModelSource string                 `json:"model_source"`
	Statistics  BatchStatistics        `json:"statistics"`
	Results     []ClassificationResult `json:"results"`
}

// FileResult is the per-file analysis outcome.
type FileResult struct {
	Success        bool        `json:"success"`
	Error          string      `json:"error,omitempty"`
	FileName       string      `json:"file_name"`
	FileType       string      `json:"file_type"`
	TotalTexts     int         `json:"total_texts"`
	ProcessedTexts int         `json:"processed_texts"`
	Analysis       BatchResult `json:"analysis"`
	ProcessedAt    time.Time   `json:"processed_at"`
}

// CorpusResult aggregates the file results of a directory run. Counts sum
// the per-unit sentiment counts of successful files and percentages are
// taken over that summed total; failed files are retained in FileResults
// with their error.
type CorpusResult struct {
	Success         bool               `json:"success"`
	Error           string             `json:"error,omitempty"`
	Directory       string             `json:"directory"`
	TotalFiles      int                `json:"total_files"`
	ProcessedFiles  int                `json:"processed_files"`
	SuccessfulFiles int                `json:"successful_files"`
	Counts          map[string]int     `json:"counts"`
	Percentages     map[string]float64 `json:"percentages"`
	Dominant        string             `json:"dominant"`
	FileResults     []FileResult       `json:"file_results"`
	ProcessedAt     time.Time          `json:"processed_at"`
}

// SingleResult is the outcome of classifying one raw text string.
type SingleResult struct {
	Success     bool                 `json:"success"`
	InputType   string               `json:"input_type"`
	Analysis    ClassificationResult `json:"analysis"`
	ProcessedAt time.Time            `json:"processed_at"`
}

// StoredResult is a persisted file analysis row.
type StoredResult struct {
	ID        string     `json:"id"`
	Result    FileResult `json:"result"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
