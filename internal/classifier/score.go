package classifier

import (
	"math"

	"github.com/zombar/sentimentanalyzer/internal/models"
)

// Score collapses a probability vector into a signed sentiment score:
// P(positive) - P(negative), clamped to [-1, 1] and rounded to three
// decimal places. Missing entries count as zero, so an empty map (error
// results included) scores 0.
func Score(probabilities map[string]float64) float64 {
	score := probabilities[models.LabelPositive] - probabilities[models.LabelNegative]
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return math.Round(score*1000) / 1000
}
