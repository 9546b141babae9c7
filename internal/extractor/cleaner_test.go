package extractor

import (
	"reflect"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple text unchanged", "hello world", "hello world"},
		{"collapses spaces", "hello    world", "hello world"},
		{"collapses newlines and tabs", "hello\n\tworld", "hello world"},
		{"trims surrounding whitespace", "  hello world  ", "hello world"},
		{"drops control characters", "hello\x00\x07world", "helloworld"},
		{"empty string", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"unicode preserved", "café résumé", "café résumé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{"hello   world", " spaced \n out ", "plain"}
	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestCleanAll(t *testing.T) {
	got := cleanAll([]string{"  first  ", "", "second\nline", "   "})
	want := []string{"first", "second line"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cleanAll = %v, want %v", got, want)
	}
}
