package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestImportMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewImportMetrics(reg)
	metrics.ObserveDuration("barcode", 250*time.Millisecond)
	metrics.IncOutcome("duplicate_order")
	metrics.IncOutcome("duplicate_order")
	metrics.IncFailure("STATE_CONFLICT")
	metrics.IncEnrichmentFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "inventory_import_outcomes_total", "outcome", "duplicate_order"); err != nil {
		t.Fatalf("fetch outcomes: %v", err)
	} else if got != 2 {
		t.Fatalf("expected outcomes=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "inventory_import_failures_total", "code", "STATE_CONFLICT"); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failures=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "inventory_enrichment_failures_total", "code", "unknown"); err != nil {
		t.Fatalf("fetch enrichment: %v", err)
	} else if got != 1 {
		t.Fatalf("expected enrichment failures=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "inventory_import_duration_seconds", "operation", "barcode"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilImportMetricsIsNoop(t *testing.T) {
	var metrics *ImportMetrics
	metrics.IncOutcome("x")
	metrics.ObserveDuration("x", time.Second)
	NewImportMetrics(nil).IncFailure("x")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
