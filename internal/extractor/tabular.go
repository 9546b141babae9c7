package extractor

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// textColumnPriority is scanned in order when no explicit column is named;
// the first header present wins.
var textColumnPriority = []string{
	"text", "content", "review", "comment", "message",
	"tweet", "sentence", "body", "description",
}

// table is the shared shape CSV and Excel parse into.
type table struct {
	headers []string
	rows    [][]string
}

func (e *Extractor) extractCSV(path string, opts Options) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	r := csv.NewReader(strings.NewReader(decodeBytes(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	t := recordsToTable(records)
	units := cleanAll(extractTableTexts(t, opts.TextColumn))

	return &Extraction{
		FileType:   "csv",
		FileName:   filepath.Base(path),
		Units:      units,
		TotalUnits: len(units),
	}, nil
}

func (e *Extractor) extractExcel(path string, opts Options) (*Extraction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	t := recordsToTable(records)
	units := cleanAll(extractTableTexts(t, opts.TextColumn))

	return &Extraction{
		FileType:   "excel",
		FileName:   filepath.Base(path),
		Units:      units,
		TotalUnits: len(units),
	}, nil
}

func recordsToTable(records [][]string) table {
	if len(records) == 0 {
		return table{}
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return table{headers: headers, rows: records[1:]}
}

// extractTableTexts picks the text-bearing column and returns its non-empty
// values in row order. Selection: explicit column if present, then the
// priority list, then the textual column with the largest mean string
// length, then all columns concatenated per row.
func extractTableTexts(t table, textColumn string) []string {
	if len(t.headers) == 0 {
		return nil
	}

	if textColumn != "" {
		if idx := columnIndex(t.headers, textColumn); idx >= 0 {
			return columnValues(t, idx)
		}
	}

	for _, name := range textColumnPriority {
		if idx := columnIndex(t.headers, name); idx >= 0 {
			return columnValues(t, idx)
		}
	}

	if idx := longestTextualColumn(t); idx >= 0 {
		return columnValues(t, idx)
	}

	return joinedRows(t)
}

func columnIndex(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func columnValues(t table, idx int) []string {
	out := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		if idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// longestTextualColumn returns the index of the non-numeric column with the
// highest mean value length, or -1 when every column is numeric.
func longestTextualColumn(t table) int {
	best, bestLen := -1, -1.0
	for idx := range t.headers {
		var total, count int
		numeric := true
		for _, row := range t.rows {
			if idx >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[idx])
			if v == "" {
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
			}
			total += len(v)
			count++
		}
		if numeric || count == 0 {
			continue
		}
		if mean := float64(total) / float64(count); mean > bestLen {
			best, bestLen = idx, mean
		}
	}
	return best
}

// joinedRows concatenates every cell of each row into one unit.
func joinedRows(t table) []string {
	out := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		fields := make([]string, 0, len(row))
		for _, cell := range row {
			if v := strings.TrimSpace(cell); v != "" {
				fields = append(fields, v)
			}
		}
		if len(fields) > 0 {
			out = append(out, strings.Join(fields, " "))
		}
	}
	return out
}
