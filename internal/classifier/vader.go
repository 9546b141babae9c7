package classifier

import (
	"github.com/jonreiter/govader"

	"github.com/zombar/sentimentanalyzer/internal/models"
)

// compoundThreshold is the VADER compound cutoff separating polar text from
// neutral text.
const compoundThreshold = 0.20

// vaderClassifier adapts the VADER lexicon engine. PolarityScores already
// returns the positive/negative/neutral intensity split, which doubles as
// the probability vector.
type vaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func newVaderClassifier() (*vaderClassifier, error) {
	return &vaderClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}, nil
}

func (c *vaderClassifier) Labels() []string {
	return []string{models.LabelPositive, models.LabelNegative, models.LabelNeutral}
}

func (c *vaderClassifier) Classify(text string) (Result, error) {
	sentiment := c.analyzer.PolarityScores(text)

	label := models.LabelNeutral
	if sentiment.Compound >= compoundThreshold {
		label = models.LabelPositive
	} else if sentiment.Compound <= -compoundThreshold {
		label = models.LabelNegative
	}

	return Result{
		Label: label,
		Probabilities: map[string]float64{
			models.LabelPositive: sentiment.Positive,
			models.LabelNegative: sentiment.Negative,
			models.LabelNeutral:  sentiment.Neutral,
		},
	}, nil
}
