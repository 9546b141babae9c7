package analyzer

import (
	"io/fs"
	"path/filepath"
	"time"

	"github.com/zombar/sentimentanalyzer/internal/models"
)

const (
	// DefaultMaxFiles bounds how many files a directory run analyzes.
	DefaultMaxFiles = 50
	// DefaultDirectoryUnitCap bounds units classified per file during a
	// directory run, keeping corpus runs tractable.
	DefaultDirectoryUnitCap = 100
)

// DirectoryOptions tunes a corpus analysis.
type DirectoryOptions struct {
	TextColumn      string
	MaxFiles        int
	MaxUnitsPerFile int
}

// AnalyzeDirectory walks a directory tree, analyzes every supported file and
// sums the per-unit sentiment counts across successful files into corpus
// counts. Failed files stay in the result with their error but are excluded
// from the aggregate.
func (a *Analyzer) AnalyzeDirectory(dir string, opts DirectoryOptions) models.CorpusResult {
	now := time.Now().UTC()

	if err := statDir(dir); err != nil {
		return models.CorpusResult{
			Success:     false,
			Error:       err.Error(),
			Directory:   dir,
			ProcessedAt: now,
		}
	}

	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	unitCap := opts.MaxUnitsPerFile
	if unitCap <= 0 {
		unitCap = DefaultDirectoryUnitCap
	}

	files, total := a.collectFiles(dir, maxFiles)
	if len(files) == 0 {
		return models.CorpusResult{
			Success:     false,
			Error:       "no supported files found",
			Directory:   dir,
			ProcessedAt: now,
		}
	}

	counts := make(map[string]int)
	for _, label := range models.LabelOrder {
		counts[label] = 0
	}

	fileResults := make([]models.FileResult, 0, len(files))
	successful := 0
	for _, path := range files {
		result := a.AnalyzeFile(path, FileOptions{TextColumn: opts.TextColumn, MaxUnits: unitCap})
		fileResults = append(fileResults, result)
		if !result.Success {
			continue
		}
		successful++
		for _, label := range models.LabelOrder {
			counts[label] += result.Analysis.Statistics.SentimentCounts[label]
		}
	}

	totalUnits := 0
	for _, label := range models.LabelOrder {
		totalUnits += counts[label]
	}

	percentages := make(map[string]float64)
	for _, label := range models.LabelOrder {
		percentages[label] = 0
	}
	if totalUnits > 0 {
		for label, count := range counts {
			percentages[label] = round1(float64(count) / float64(totalUnits) * 100)
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

	a.logger.Info("directory analysis complete",
		"directory", dir,
		"total_files", total,
		"processed_files", len(files),
		"successful_files", successful,
		"dominant", dominant)

	return models.CorpusResult{
		Success:         successful > 0,
		Directory:       dir,
		TotalFiles:      total,
		ProcessedFiles:  len(files),
		SuccessfulFiles: successful,
		Counts:          counts,
		Percentages:     percentages,
		Dominant:        dominant,
		FileResults:     fileResults,
		ProcessedAt:     now,
	}
}

// collectFiles walks dir in lexical order and gathers supported files up to
// max, also reporting how many supported files exist in total.
func (a *Analyzer) collectFiles(dir string, max int) ([]string, int) {
	var files []string
	total := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			a.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !a.extractor.Supported(path) {
			return nil
		}
		total++
		if len(files) < max {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		a.logger.Error("directory walk failed", "directory", dir, "error", err)
	}

	return files, total
}
