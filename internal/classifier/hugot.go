package classifier

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// onnxClassifier runs a local ONNX text-classification model through a hugot
// ORT session. Loading is attempted only when a model path is configured.
type onnxClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	labels   []string
}

func newONNXClassifier(modelPath string) (*onnxClassifier, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model path %s: %w", modelPath, err)
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("initialize ort session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "sentimentClassificationPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("initialize classification pipeline: %w", err)
	}

	c := &onnxClassifier{session: session, pipeline: pipeline}

	// Probe run discovers the model's label set and proves the pipeline
	// actually works before it is kept.
	probe, err := c.Classify("ok")
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("probe classification: %w", err)
	}
	for label := range probe.Probabilities {
		c.labels = append(c.labels, label)
	}
	sort.Strings(c.labels)

	return c, nil
}

func (c *onnxClassifier) Labels() []string {
	return c.labels
}

func (c *onnxClassifier) Classify(text string) (Result, error) {
	output, err := c.pipeline.RunPipeline([]string{text})
	if err != nil {
		return Result{}, fmt.Errorf("run classification pipeline: %w", err)
	}
	if len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return Result{}, fmt.Errorf("classification pipeline returned no output")
	}

	probs := make(map[string]float64, len(output.ClassificationOutputs[0]))
	bestLabel := ""
	bestScore := -1.0
	for _, out := range output.ClassificationOutputs[0] {
		label := normalizeModelLabel(out.Label)
		score := float64(out.Score)
		probs[label] = score
		if score > bestScore {
			bestScore = score
			bestLabel = label
		}
	}

	return Result{Label: bestLabel, Probabilities: probs}, nil
}

func (c *onnxClassifier) Close() {
	c.session.Destroy()
}

// normalizeModelLabel maps hub label conventions onto the sentiment label
// set: "POSITIVE" style names are lowercased, "LABEL_n" style names fall
// back to the positional mapping.
func normalizeModelLabel(label string) string {
	lowered := strings.ToLower(strings.TrimSpace(label))
	if rest, ok := strings.CutPrefix(lowered, "label_"); ok {
		if class, err := strconv.Atoi(rest); err == nil {
			return defaultLabelName(class)
		}
	}
	return lowered
}
