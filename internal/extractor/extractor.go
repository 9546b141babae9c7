// Package extractor turns document files of heterogeneous formats into flat
// ordered sequences of cleaned text units ready for classification.
//
// Supported formats:
//   - .txt: plain text, split on blank-line boundaries
//   - .csv: tabular, text column selected by hint or heuristic
//   - .xlsx / .xlsm: Excel via excelize, same column selection as CSV
//   - .json: string values collected recursively, deduplicated
//   - .pdf: per-page text via pdfcpu, paragraph split
//   - .docx: paragraphs then table rows, in document order
//
// Unknown extensions and any per-format parse failure fall back to the
// raw-text-as-paragraphs strategy; extraction never fails for a readable
// file.
package extractor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Options configures a single extraction.
type Options struct {
	// TextColumn names the column (CSV/Excel) or top-level key (JSON)
	// supplying text. Empty means auto-detect.
	TextColumn string
}

// Extraction is the result of pulling text units out of one file.
type Extraction struct {
	FileType   string   `json:"file_type"`
	FileName   string   `json:"file_name"`
	Units      []string `json:"texts"`
	RawText    string   `json:"raw_text,omitempty"`
	TotalUnits int      `json:"total_texts"`
}

type extractFunc func(path string, opts Options) (*Extraction, error)

// Extractor dispatches files to per-format extraction strategies.
type Extractor struct {
	formats map[string]extractFunc
	logger  *slog.Logger
}

// New creates an Extractor with all format strategies registered.
func New() *Extractor {
	e := &Extractor{logger: slog.Default()}
	e.formats = map[string]extractFunc{
		".txt":  e.extractText,
		".csv":  e.extractCSV,
		".xlsx": e.extractExcel,
		".xlsm": e.extractExcel,
		".xls":  e.extractExcel,
		".json": e.extractJSON,
		".pdf":  e.extractPDF,
		".docx": e.extractDocx,
	}
	return e
}

// SupportedExtensions returns the registered extensions, including the
// implicit raw-text handling of anything else.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".csv", ".xlsx", ".xlsm", ".xls", ".json", ".pdf", ".docx"}
}

// Supported reports whether the extension has a dedicated strategy.
func (e *Extractor) Supported(path string) bool {
	_, ok := e.formats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract reads the file and returns its ordered text units. Format-specific
// parse failures are recovered by re-reading the file as raw text; only a
// missing or unreadable file surfaces as an error.
func (e *Extractor) Extract(path string, opts Options) (*Extraction, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := e.formats[ext]
	if !ok {
		return e.extractRaw(path, "unknown")
	}

	result, err := fn(path, opts)
	if err != nil {
		e.logger.Warn("format extraction failed, falling back to raw text",
			"path", path, "format", ext, "error", err)
		return e.extractRaw(path, "unknown")
	}
	return result, nil
}

// blankLineRe matches one-or-more blank lines, the paragraph boundary shared
// by the text, PDF and raw fallback strategies.
var blankLineRe = regexp.MustCompile(`\n\s*\n`)

// splitParagraphs splits content on blank-line boundaries. When the content
// has no paragraph boundary the whole of it is one unit. Blank content
// yields no units.
func splitParagraphs(content string) []string {
	parts := blankLineRe.Split(content, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 && strings.TrimSpace(content) != "" {
		out = append(out, content)
	}
	return out
}

// decodeBytes decodes file content as UTF-8 when valid, otherwise as
// Latin-1, which maps every byte to a rune and cannot fail.
func decodeBytes(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

// extractText handles plain .txt files.
func (e *Extractor) extractText(path string, _ Options) (*Extraction, error) {
	return e.extractRaw(path, "txt")
}

// extractRaw is the universal fallback: whole file as text, paragraphs on
// blank lines.
func (e *Extractor) extractRaw(path, fileType string) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	content := decodeBytes(data)
	units := cleanAll(splitParagraphs(content))

	return &Extraction{
		FileType:   fileType,
		FileName:   filepath.Base(path),
		Units:      units,
		RawText:    content,
		TotalUnits: len(units),
	}, nil
}
