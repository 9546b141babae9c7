package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zombar/sentimentanalyzer/internal/classifier"
	"github.com/zombar/sentimentanalyzer/internal/extractor"
	"github.com/zombar/sentimentanalyzer/internal/models"
)

// newTestAnalyzer uses the deterministic seed classifier so assertions on
// labels and statistics are stable.
func newTestAnalyzer() *Analyzer {
	cls := classifier.Load(classifier.Config{DisableVader: true})
	return New(cls, extractor.New(), nil)
}

func TestAnalyzeText(t *testing.T) {
	a := newTestAnalyzer()

	result := a.AnalyzeText("this product is great, love it")
	if !result.Success {
		t.Error("Expected success")
	}
	if result.InputType != "text" {
		t.Errorf("Expected input type 'text', got %q", result.InputType)
	}
	if result.Analysis.Sentiment != models.LabelPositive {
		t.Errorf("Expected positive sentiment, got %q", result.Analysis.Sentiment)
	}
	if result.Analysis.Metadata.WordCount != 6 {
		t.Errorf("Expected word count 6, got %d", result.Analysis.Metadata.WordCount)
	}
	if result.Analysis.Metadata.ModelSource != string(classifier.SourceSeed) {
		t.Errorf("Expected seed model source, got %q", result.Analysis.Metadata.ModelSource)
	}
}

func TestAnalyzeTextBlank(t *testing.T) {
	a := newTestAnalyzer()

	result := a.AnalyzeText("   ")
	if result.Success {
		t.Error("Expected failure for blank text")
	}
	if result.Analysis.Sentiment != models.LabelError {
		t.Errorf("Expected error label, got %q", result.Analysis.Sentiment)
	}
}

func TestAnalyzeBatchPreservesOrder(t *testing.T) {
	a := newTestAnalyzer()

	texts := []string{"great stuff", "terrible stuff", "the sky is blue"}
	result := a.AnalyzeBatch(texts)

	if !result.Success {
		t.Fatal("Expected success")
	}
	if len(result.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(result.Results))
	}

	expected := []string{models.LabelPositive, models.LabelNegative, models.LabelNeutral}
	for i, label := range expected {
		if result.Results[i].Sentiment != label {
			t.Errorf("Result %d: expected %q, got %q", i, label, result.Results[i].Sentiment)
		}
		if result.Results[i].Text != texts[i] {
			t.Errorf("Result %d: text order not preserved", i)
		}
	}
}

func TestAnalyzeBatchSkipsBlanks(t *testing.T) {
	a := newTestAnalyzer()

	result := a.AnalyzeBatch([]string{"great", "", "  ", "terrible"})
	if result.Statistics.TotalTexts != 4 {
		t.Errorf("Expected total 4, got %d", result.Statistics.TotalTexts)
	}
	if result.Statistics.AnalyzedTexts != 2 {
		t.Errorf("Expected 2 analyzed, got %d", result.Statistics.AnalyzedTexts)
	}
	if len(result.Results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(result.Results))
	}
}

func TestAnalyzeBatchStatistics(t *testing.T) {
	a := newTestAnalyzer()

	result := a.AnalyzeBatch([]string{"great product", "awesome and wonderful", "terrible product", "the box"})
	stats := result.Statistics

	if stats.SentimentCounts[models.LabelPositive] != 2 {
		t.Errorf("Expected 2 positive, got %d", stats.SentimentCounts[models.LabelPositive])
	}
	if stats.SentimentCounts[models.LabelNegative] != 1 {
		t.Errorf("Expected 1 negative, got %d", stats.SentimentCounts[models.LabelNegative])
	}
	if stats.SentimentCounts[models.LabelNeutral] != 1 {
		t.Errorf("Expected 1 neutral, got %d", stats.SentimentCounts[models.LabelNeutral])
	}
	if stats.SentimentPercentages[models.LabelPositive] != 50.0 {
		t.Errorf("Expected 50%% positive, got %f", stats.SentimentPercentages[models.LabelPositive])
	}
	if stats.DominantSentiment != models.LabelPositive {
		t.Errorf("Expected positive dominant, got %q", stats.DominantSentiment)
	}
	if stats.AverageConfidence <= 0 || stats.AverageConfidence > 1 {
		t.Errorf("Average confidence out of range: %f", stats.AverageConfidence)
	}
}

func TestAnalyzeBatchDominantTieBreak(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name     string
		texts    []string
		expected string
	}{
		{"positive beats negative on tie", []string{"great", "terrible"}, models.LabelPositive},
		{"negative beats neutral on tie", []string{"terrible", "the box"}, models.LabelNegative},
		{"empty batch is neutral", []string{}, models.LabelNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.AnalyzeBatch(tt.texts)
			if result.Statistics.DominantSentiment != tt.expected {
				t.Errorf("Expected dominant %q, got %q", tt.expected, result.Statistics.DominantSentiment)
			}
		})
	}
}

func TestAnalyzeBatchEmptyPercentages(t *testing.T) {
	a := newTestAnalyzer()

	result := a.AnalyzeBatch(nil)
	for _, label := range models.LabelOrder {
		if result.Statistics.SentimentPercentages[label] != 0 {
			t.Errorf("Expected zero percentage for %q", label)
		}
	}
	if result.Statistics.AverageConfidence != 0 {
		t.Errorf("Expected zero average confidence, got %f", result.Statistics.AverageConfidence)
	}
}

func TestAnalyzeBatchResultCap(t *testing.T) {
	a := newTestAnalyzer()

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = "great"
	}

	result := a.AnalyzeBatch(texts)
	if len(result.Results) != ResultCap {
		t.Errorf("Expected %d results in payload, got %d", ResultCap, len(result.Results))
	}
	if result.Statistics.AnalyzedTexts != 150 {
		t.Errorf("Statistics should cover the full batch, got %d", result.Statistics.AnalyzedTexts)
	}
}

func TestClassifyUnitTruncatesPreview(t *testing.T) {
	a := newTestAnalyzer()

	long := ""
	for len(long) < PreviewLength+200 {
		long += "wonderful product "
	}

	result := a.AnalyzeBatch([]string{long})
	if len(result.Results[0].Text) > PreviewLength {
		t.Errorf("Expected preview capped at %d, got %d", PreviewLength, len(result.Results[0].Text))
	}
	if result.Results[0].Metadata.TextLength != len(long) {
		t.Errorf("Metadata should report full length %d, got %d", len(long), result.Results[0].Metadata.TextLength)
	}
}

func TestAnalyzeFile(t *testing.T) {
	a := newTestAnalyzer()
	dir := t.TempDir()

	path := filepath.Join(dir, "reviews.txt")
	content := "Great product, love it.\n\nTerrible service, very disappointed.\n\nDelivery was on time."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	result := a.AnalyzeFile(path, FileOptions{})
	if !result.Success {
		t.Fatalf("Expected success, got error %q", result.Error)
	}
	if result.FileType != "txt" {
		t.Errorf("Expected file type txt, got %q", result.FileType)
	}
	if result.TotalTexts != 3 {
		t.Errorf("Expected 3 units, got %d", result.TotalTexts)
	}
	if result.ProcessedTexts != 3 {
		t.Errorf("Expected 3 processed, got %d", result.ProcessedTexts)
	}
}

func TestAnalyzeFileMissing(t *testing.T) {
	a := newTestAnalyzer()

	result := a.AnalyzeFile(filepath.Join(t.TempDir(), "absent.txt"), FileOptions{})
	if result.Success {
		t.Error("Expected failure for missing file")
	}
	if result.Error == "" {
		t.Error("Expected error description")
	}
}

func TestAnalyzeFileNoContent(t *testing.T) {
	a := newTestAnalyzer()
	dir := t.TempDir()

	path := filepath.Join(dir, "blank.txt")
	if err := os.WriteFile(path, []byte("   \n\n  \t\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := a.AnalyzeFile(path, FileOptions{})
	if result.Success {
		t.Error("Expected failure for file without usable text")
	}
	if result.Error != "no text content found in file" {
		t.Errorf("Unexpected error: %q", result.Error)
	}
}

func TestAnalyzeFileUnitCap(t *testing.T) {
	a := newTestAnalyzer()
	dir := t.TempDir()

	content := ""
	for i := 0; i < 10; i++ {
		content += "great product\n\n"
	}
	path := filepath.Join(dir, "many.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	result := a.AnalyzeFile(path, FileOptions{MaxUnits: 4})
	if result.TotalTexts != 10 {
		t.Errorf("Expected 10 total units, got %d", result.TotalTexts)
	}
	if result.ProcessedTexts != 4 {
		t.Errorf("Expected 4 processed units, got %d", result.ProcessedTexts)
	}
}

func TestAnalyzeDirectory(t *testing.T) {
	a := newTestAnalyzer()
	dir := t.TempDir()

	files := map[string]string{
		"a.txt": "Wonderful, amazing, great experience.\n\nGreat product, love it.\n\nThe meeting starts at noon.",
		"b.txt": "Terrible, awful, horrible experience.",
		"c.log": "unsupported extension, ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	result := a.AnalyzeDirectory(dir, DirectoryOptions{})
	if !result.Success {
		t.Fatalf("Expected success, got error %q", result.Error)
	}
	if result.TotalFiles != 2 {
		t.Errorf("Expected 2 supported files, got %d", result.TotalFiles)
	}
	if result.SuccessfulFiles != 2 {
		t.Errorf("Expected 2 successful files, got %d", result.SuccessfulFiles)
	}
	if result.Counts[models.LabelPositive] != 2 || result.Counts[models.LabelNegative] != 1 || result.Counts[models.LabelNeutral] != 1 {
		t.Errorf("Expected unit counts summed across files, got %v", result.Counts)
	}
	if result.Percentages[models.LabelPositive] != 50.0 {
		t.Errorf("Expected 50%% positive, got %f", result.Percentages[models.LabelPositive])
	}
	if result.Dominant != models.LabelPositive {
		t.Errorf("Expected positive dominant, got %q", result.Dominant)
	}
}

func TestAnalyzeDirectorySumsUnitCounts(t *testing.T) {
	a := newTestAnalyzer()
	dir := t.TempDir()

	positive := ""
	for i := 0; i < 10; i++ {
		positive += "great product\n\n"
	}
	negative := ""
	for i := 0; i < 5; i++ {
		negative += "terrible stuff\n\n"
	}
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte(positive), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte(negative), 0o644); err != nil {
		t.Fatal(err)
	}

	result := a.AnalyzeDirectory(dir, DirectoryOptions{})
	if !result.Success {
		t.Fatalf("Expected success, got error %q", result.Error)
	}
	if result.Counts[models.LabelPositive] != 10 || result.Counts[models.LabelNegative] != 5 {
		t.Errorf("Expected counts 10 positive / 5 negative, got %v", result.Counts)
	}
	if result.Percentages[models.LabelPositive] != 66.7 {
		t.Errorf("Expected 66.7%% positive, got %f", result.Percentages[models.LabelPositive])
	}
	if result.Percentages[models.LabelNegative] != 33.3 {
		t.Errorf("Expected 33.3%% negative, got %f", result.Percentages[models.LabelNegative])
	}
	if result.Dominant != models.LabelPositive {
		t.Errorf("Expected positive dominant, got %q", result.Dominant)
	}
}

func TestAnalyzeDirectoryMaxFiles(t *testing.T) {
	a := newTestAnalyzer()
	dir := t.TempDir()

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, string(rune('a'+i))+".txt")
		if err := os.WriteFile(name, []byte("great"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	result := a.AnalyzeDirectory(dir, DirectoryOptions{MaxFiles: 2})
	if result.TotalFiles != 5 {
		t.Errorf("Expected 5 total files, got %d", result.TotalFiles)
	}
	if result.ProcessedFiles != 2 {
		t.Errorf("Expected 2 processed files, got %d", result.ProcessedFiles)
	}
}

func TestAnalyzeDirectoryEmpty(t *testing.T) {
	a := newTestAnalyzer()

	result := a.AnalyzeDirectory(t.TempDir(), DirectoryOptions{})
	if result.Success {
		t.Error("Expected failure for directory with no supported files")
	}
	if result.Error != "no supported files found" {
		t.Errorf("Unexpected error: %q", result.Error)
	}
}

func TestAnalyzeDirectoryMissing(t *testing.T) {
	a := newTestAnalyzer()

	result := a.AnalyzeDirectory(filepath.Join(t.TempDir(), "absent"), DirectoryOptions{})
	if result.Success {
		t.Error("Expected failure for missing directory")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"multibyte boundary respected", "héllo", 2, "h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
