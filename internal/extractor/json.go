package extractor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// minJSONStringLen filters out short identifier-like string values when
// walking object trees.
const minJSONStringLen = 10

func (e *Extractor) extractJSON(path string, opts Options) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	var units []string
	switch v := root.(type) {
	case []any:
		for _, item := range v {
			if s := stringifyJSONValue(item); strings.TrimSpace(s) != "" {
				units = append(units, s)
			}
		}
	case map[string]any:
		if opts.TextColumn != "" {
			if val, ok := v[opts.TextColumn]; ok {
				units = []string{stringifyJSONValue(val)}
				break
			}
		}
		units = collectJSONStrings(v)
	default:
		if s := stringifyJSONValue(root); strings.TrimSpace(s) != "" {
			units = []string{s}
		}
	}

	// JSON units are deduplicated with set semantics; duplicate counts and
	// encounter order are not part of the contract.
	units = dedupe(cleanAll(units))

	return &Extraction{
		FileType:   "json",
		FileName:   filepath.Base(path),
		Units:      units,
		TotalUnits: len(units),
	}, nil
}

// collectJSONStrings walks an object tree collecting direct string values
// longer than minJSONStringLen and recursing into nested containers.
func collectJSONStrings(node any) []string {
	var out []string
	switch v := node.(type) {
	case map[string]any:
		for _, val := range v {
			switch inner := val.(type) {
			case string:
				if len(strings.TrimSpace(inner)) > minJSONStringLen {
					out = append(out, inner)
				}
			case map[string]any, []any:
				out = append(out, collectJSONStrings(inner)...)
			}
		}
	case []any:
		for _, item := range v {
			switch inner := item.(type) {
			case string:
				if len(strings.TrimSpace(inner)) > minJSONStringLen {
					out = append(out, inner)
				}
			case map[string]any, []any:
				out = append(out, collectJSONStrings(inner)...)
			}
		}
	}
	return out
}

// stringifyJSONValue renders a decoded JSON value as text: strings pass
// through, everything else is re-marshaled.
func stringifyJSONValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func dedupe(units []string) []string {
	seen := make(map[string]bool, len(units))
	out := make([]string, 0, len(units))
	for _, u := range units {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}
