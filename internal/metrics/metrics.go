// Package metrics exposes the Prometheus collectors shared by the HTTP
// handlers and the queue worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	FilesProcessed  *prometheus.CounterVec
	UnitsClassified *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry and returns both. A
// dedicated registry keeps tests from tripping duplicate registration.
func New() (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	m := &Metrics{
		FilesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentiment_files_processed_total",
			Help: "Number of analyzed files by outcome.",
		}, []string{"status"}),
		UnitsClassified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentiment_units_classified_total",
			Help: "Number of classified text units by sentiment label.",
		}, []string{"sentiment"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentiment_analysis_duration_seconds",
			Help:    "Duration of analysis operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	return m, registry
}

// RecordFile counts one file analysis outcome.
func (m *Metrics) RecordFile(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.FilesProcessed.WithLabelValues(status).Inc()
}

// RecordUnits counts classified units per label from a sentiment count map.
func (m *Metrics) RecordUnits(counts map[string]int) {
	for label, count := range counts {
		if count > 0 {
			m.UnitsClassified.WithLabelValues(label).Add(float64(count))
		}
	}
}

// ObserveDuration records one operation duration in seconds.
func (m *Metrics) ObserveDuration(operation string, seconds float64) {
	m.Duration.WithLabelValues(operation).Observe(seconds)
}
