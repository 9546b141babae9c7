// Package classifier wraps sentiment classification behind a single
// capability: text in, label plus class-probability vector out. Concrete
// sources are tried in priority order at load time; the seed fallback
// always succeeds, so a loaded Adapter is never non-functional.
package classifier

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/zombar/sentimentanalyzer/internal/models"
)

// Source identifies which classifier implementation is serving requests.
type Source string

const (
	SourceONNX  Source = "onnx"
	SourceVader Source = "vader"
	SourceSeed  Source = "seed"
)

// Result is one classification outcome. Probabilities maps each known label
// to its probability; Err carries a per-call failure description while Label
// is set to "error".
type Result struct {
	Label         string
	Confidence    float64
	Probabilities map[string]float64
	Err           string
}

// Classifier is the opaque classification capability.
type Classifier interface {
	Classify(text string) (Result, error)
	Labels() []string
}

// Config controls which sources the loader attempts.
type Config struct {
	// ModelPath points at a local ONNX text-classification model. Empty
	// disables the onnx source.
	ModelPath string
	// DisableVader skips the lexicon source, leaving only seed after onnx.
	DisableVader bool
	Logger       *slog.Logger
}

// Adapter is the process-wide classification handle: load once, share by
// reference. It is read-only after Load and safe for concurrent use.
type Adapter struct {
	impl   Classifier
	source Source
}

// Load walks the source priority list (onnx, vader, seed) and keeps the
// first classifier that initializes. The seed fallback cannot fail, so Load
// always returns a working Adapter.
func Load(cfg Config) *Adapter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.ModelPath != "" {
		impl, err := newONNXClassifier(cfg.ModelPath)
		if err == nil {
			logger.Info("sentiment classifier loaded", "source", SourceONNX, "model_path", cfg.ModelPath)
			return &Adapter{impl: impl, source: SourceONNX}
		}
		logger.Warn("onnx classifier unavailable, trying next source", "error", err)
	}

	if !cfg.DisableVader {
		impl, err := newVaderClassifier()
		if err == nil {
			logger.Info("sentiment classifier loaded", "source", SourceVader)
			return &Adapter{impl: impl, source: SourceVader}
		}
		logger.Warn("vader classifier unavailable, trying next source", "error", err)
	}

	logger.Info("sentiment classifier loaded", "source", SourceSeed)
	return &Adapter{impl: newSeedClassifier(), source: SourceSeed}
}

// Source reports which implementation was kept at load time.
func (a *Adapter) Source() Source {
	return a.source
}

// Labels returns the label set of the active classifier.
func (a *Adapter) Labels() []string {
	return a.impl.Labels()
}

// Classify runs the active classifier over one text. Failures never
// propagate: a blank input or source error yields an error-labeled result
// with zero confidence and an empty probability map.
func (a *Adapter) Classify(text string) Result {
	if strings.TrimSpace(text) == "" {
		return errorResult("empty text")
	}

	res, err := a.impl.Classify(text)
	if err != nil {
		return errorResult(err.Error())
	}
	if res.Probabilities == nil {
		res.Probabilities = map[string]float64{}
	}

	// Confidence is uniformly the strongest probability entry.
	res.Confidence = 0
	for _, p := range res.Probabilities {
		if p > res.Confidence {
			res.Confidence = p
		}
	}
	return res
}

func errorResult(desc string) Result {
	return Result{
		Label:         models.LabelError,
		Confidence:    0,
		Probabilities: map[string]float64{},
		Err:           desc,
	}
}

// defaultLabelName maps numeric class identifiers to sentiment labels when a
// model exposes no label metadata: 0 negative, 1 positive, 2 neutral.
func defaultLabelName(class int) string {
	switch class {
	case 0:
		return "negative"
	case 1:
		return "positive"
	case 2:
		return "neutral"
	default:
		return fmt.Sprintf("class_%d", class)
	}
}
