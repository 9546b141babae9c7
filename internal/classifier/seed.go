package classifier

import (
	"strings"

	"github.com/zombar/sentimentanalyzer/internal/models"
)

// seedClassifier is the last-resort source: a deterministic lexicon centroid
// over small seed word sets. It never fails to load and never fails a call,
// which keeps the pipeline functional when no model and no lexicon engine is
// available.
type seedClassifier struct {
	positive map[string]bool
	negative map[string]bool
	neutral  map[string]bool
}

func newSeedClassifier() *seedClassifier {
	return &seedClassifier{
		positive: wordSet(seedPositiveWords),
		negative: wordSet(seedNegativeWords),
		neutral:  wordSet(seedNeutralWords),
	}
}

func (c *seedClassifier) Labels() []string {
	return []string{models.LabelPositive, models.LabelNegative, models.LabelNeutral}
}

// Classify counts seed-word hits per class and turns the smoothed counts
// into a probability vector. Text with no positive or negative hits is
// labeled neutral regardless of the vector.
func (c *seedClassifier) Classify(text string) (Result, error) {
	var pos, neg, neu float64
	for _, token := range tokenize(text) {
		switch {
		case c.positive[token]:
			pos++
		case c.negative[token]:
			neg++
		case c.neutral[token]:
			neu++
		}
	}

	// Laplace-style smoothing keeps every class above zero.
	const smoothing = 0.1
	total := pos + neg + neu + 3*smoothing
	probs := map[string]float64{
		models.LabelPositive: (pos + smoothing) / total,
		models.LabelNegative: (neg + smoothing) / total,
		models.LabelNeutral:  (neu + smoothing) / total,
	}

	label := models.LabelNeutral
	if pos > 0 || neg > 0 {
		best := -1.0
		for _, l := range c.Labels() {
			if probs[l] > best {
				best = probs[l]
				label = l
			}
		}
	}

	return Result{Label: label, Probabilities: probs}, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '\''
	})
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

var seedPositiveWords = []string{
	"good", "great", "excellent", "amazing", "wonderful", "fantastic", "best", "love", "loved", "loving",
	"beautiful", "perfect", "awesome", "brilliant", "outstanding", "superb", "exceptional", "incredible",
	"pleasant", "delightful", "enjoyable", "happy", "glad", "pleased", "satisfied", "terrific", "fabulous",
	"impressive", "remarkable", "positive", "success", "successful", "win", "winning", "better", "improved",
	"exciting", "excited", "enthusiastic", "optimistic", "hopeful", "promising", "favorable", "recommend",
}

var seedNegativeWords = []string{
	"bad", "terrible", "awful", "horrible", "poor", "worst", "hate", "hated", "hating", "disgusting",
	"disappointing", "disappointed", "disappointment", "fail", "failed", "failure", "wrong", "problem",
	"problems", "broken", "useless", "negative", "unfortunate", "sad", "unhappy", "angry", "frustrated",
	"frustrating", "annoying", "annoyed", "worried", "worry", "afraid", "scary", "dangerous", "harmful",
	"worse", "loss", "lost", "losing", "decline", "declined", "refund", "waste",
}

var seedNeutralWords = []string{
	"okay", "ok", "fine", "average", "normal", "neutral", "standard", "typical", "regular", "ordinary",
	"acceptable", "moderate", "usual", "expected", "adequate",
}
