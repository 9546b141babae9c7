// Package analyzer runs the sentiment pipeline: classify single texts,
// ordered batches, extracted files, and whole directories, and aggregate the
// outcomes into batch and corpus statistics.
package analyzer

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zombar/sentimentanalyzer/internal/classifier"
	"github.com/zombar/sentimentanalyzer/internal/extractor"
	"github.com/zombar/sentimentanalyzer/internal/models"
)

const (
	// MaxUnitsPerFile is the hard cap on text units classified per file.
	MaxUnitsPerFile = 10000
	// ResultCap bounds how many per-unit results a batch payload carries.
	// Statistics always cover the full batch.
	ResultCap = 100
	// PreviewLength truncates unit text in result payloads. Classification
	// always sees the full text.
	PreviewLength = 500
)

// Analyzer ties the extractor and classifier together.
type Analyzer struct {
	classifier *classifier.Adapter
	extractor  *extractor.Extractor
	logger     *slog.Logger
}

// New creates an Analyzer around a loaded classifier and an extractor.
func New(cls *classifier.Adapter, ext *extractor.Extractor, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{classifier: cls, extractor: ext, logger: logger}
}

// ModelSource reports the classifier implementation in use.
func (a *Analyzer) ModelSource() string {
	return string(a.classifier.Source())
}

// SupportedExtensions exposes the extractor's format list.
func (a *Analyzer) SupportedExtensions() []string {
	return a.extractor.SupportedExtensions()
}

// AnalyzeText classifies one raw text string.
func (a *Analyzer) AnalyzeText(text string) models.SingleResult {
	result := a.classifyUnit(text)
	return models.SingleResult{
		Success:     result.Error == "",
		InputType:   "text",
		Analysis:    result,
		ProcessedAt: time.Now().UTC(),
	}
}

// AnalyzeBatch classifies an ordered sequence of texts. Blank entries are
// skipped; per-unit classification failures become error-labeled results and
// never abort the batch. Result order follows input order.
func (a *Analyzer) AnalyzeBatch(texts []string) models.BatchResult {
	if len(texts) > MaxUnitsPerFile {
		a.logger.Warn("batch truncated to unit cap", "total", len(texts), "cap", MaxUnitsPerFile)
		texts = texts[:MaxUnitsPerFile]
	}

	results := make([]models.ClassificationResult, 0, len(texts))
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		results = append(results, a.classifyUnit(text))
	}

	stats := computeStatistics(len(texts), results)

	payload := results
	if len(payload) > ResultCap {
		payload = payload[:ResultCap]
	}

	return models.BatchResult{
		Success:     true,
		ModelSource: a.ModelSource(),
		Statistics:  stats,
		Results:     payload,
	}
}

// FileOptions tunes a single file analysis.
type FileOptions struct {
	// TextColumn is passed through to the extractor for tabular and JSON
	// formats.
	TextColumn string
	// MaxUnits bounds how many extracted units are classified. Zero means
	// the hard cap.
	MaxUnits int
}

// AnalyzeFile extracts a file into text units and analyzes them as a batch.
// Extraction falls back to raw text internally; an unreadable file or one
// with no usable text yields a failed result.
func (a *Analyzer) AnalyzeFile(path string, opts FileOptions) models.FileResult {
	extraction, err := a.extractor.Extract(path, extractor.Options{TextColumn: opts.TextColumn})
	if err != nil {
		a.logger.Error("file extraction failed", "path", path, "error", err)
		return models.FileResult{
			Success:     false,
			Error:       err.Error(),
			FileName:    path,
			ProcessedAt: time.Now().UTC(),
		}
	}

	if len(extraction.Units) == 0 {
		a.logger.Warn("no text content extracted", "path", path)
		return models.FileResult{
			Success:     false,
			Error:       "no text content found in file",
			FileName:    extraction.FileName,
			FileType:    extraction.FileType,
			ProcessedAt: time.Now().UTC(),
		}
	}

	limit := opts.MaxUnits
	if limit <= 0 || limit > MaxUnitsPerFile {
		limit = MaxUnitsPerFile
	}
	units := extraction.Units
	if len(units) > limit {
		a.logger.Warn("file truncated to unit cap", "path", path, "total", len(units), "cap", limit)
		units = units[:limit]
	}

	analysis := a.AnalyzeBatch(units)
	analysis.Statistics.TotalTexts = extraction.TotalUnits

	return models.FileResult{
		Success:        true,
		FileName:       extraction.FileName,
		FileType:       extraction.FileType,
		TotalTexts:     extraction.TotalUnits,
		ProcessedTexts: len(units),
		Analysis:       analysis,
		ProcessedAt:    time.Now().UTC(),
	}
}

// classifyUnit runs the classifier over one unit and packages the outcome.
// The payload text is truncated to PreviewLength; metadata reflects the full
// text.
func (a *Analyzer) classifyUnit(text string) models.ClassificationResult {
	res := a.classifier.Classify(text)

	preview := truncate(text, PreviewLength)

	return models.ClassificationResult{
		Text:           preview,
		Sentiment:      res.Label,
		Confidence:     round3(res.Confidence),
		SentimentScore: classifier.Score(res.Probabilities),
		Probabilities:  res.Probabilities,
		Error:          res.Err,
		Metadata: models.ResultMetadata{
			ModelSource: a.ModelSource(),
			ProcessedAt: time.Now().UTC().Format(time.RFC3339),
			TextLength:  len(text),
			WordCount:   len(strings.Fields(text)),
		},
	}
}

// computeStatistics aggregates a full result sequence. Percentages are taken
// over processed units and are all zero when nothing was processed.
// Averages cover successfully classified units only. The dominant label is
// chosen among positive, negative and neutral, ties resolved in that order;
// when every count is zero the batch reports neutral.
func computeStatistics(total int, results []models.ClassificationResult) models.BatchStatistics {
	counts := make(map[string]int)
	percentages := make(map[string]float64)
	for _, label := range models.LabelOrder {
		counts[label] = 0
		percentages[label] = 0
	}

	var confidenceSum, scoreSum float64
	classified := 0
	for _, r := range results {
		counts[r.Sentiment]++
		if r.Sentiment == models.LabelError {
			continue
		}
		classified++
		confidenceSum += r.Confidence
		scoreSum += r.SentimentScore
	}

	if len(results) > 0 {
		for label, count := range counts {
			percentages[label] = round1(float64(count) / float64(len(results)) * 100)
		}
	}

	dominant := models.LabelNeutral
	best := 0
	for _, label := range models.LabelOrder {
		if counts[label] > best {
			best = counts[label]
			dominant = label
		}
	}

	stats := models.BatchStatistics{
		TotalTexts:           total,
		AnalyzedTexts:        len(results),
		SentimentCounts:      counts,
		SentimentPercentages: percentages,
		DominantSentiment:    dominant,
	}
	if classified > 0 {
		stats.AverageConfidence = round3(confidenceSum / float64(classified))
		stats.AverageScore = round3(scoreSum / float64(classified))
	}
	return stats
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func statDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
