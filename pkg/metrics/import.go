package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics records the outcome and latency of inventory imports.
type ImportMetrics struct {
	duration   *prometheus.HistogramVec
	outcomes   *prometheus.CounterVec
	failures   *prometheus.CounterVec
	enrichment *prometheus.CounterVec
}

// NewImportMetrics registers the import metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_import_duration_seconds",
		Help:    "Duration of inventory import operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_import_outcomes_total",
		Help: "Completed imports by merge outcome.",
	}, []string{"outcome"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_import_failures_total",
		Help: "Failed imports by error code.",
	}, []string{"code"})
	enrichment := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_enrichment_failures_total",
		Help: "Vendor lookups that failed during best-effort enrichment.",
	}, []string{"code"})
	reg.MustRegister(duration, outcomes, failures, enrichment)
	return &ImportMetrics{
		duration:   duration,
		outcomes:   outcomes,
		failures:   failures,
		enrichment: enrichment,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *ImportMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncOutcome counts a completed import.
func (m *ImportMetrics) IncOutcome(outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncFailure counts an import that returned an error.
func (m *ImportMetrics) IncFailure(code string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(code)).Inc()
}

// IncEnrichmentFailure counts a swallowed vendor error.
func (m *ImportMetrics) IncEnrichmentFailure(code string) {
	if m == nil || m.enrichment == nil {
		return
	}
	m.enrichment.WithLabelValues(normalizeLabel(code)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
