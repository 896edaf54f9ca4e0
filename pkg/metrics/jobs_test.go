package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestJobMetricsCountsByJob(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewJobMetrics(reg)
	metrics.ObserveDuration("refresh-details", 2*time.Second)
	metrics.IncSuccess("refresh-details")
	metrics.IncFailure("refresh-details")
	metrics.IncFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "partsbin_job_success_total", "job", "refresh-details"); err != nil || got != 1 {
		t.Fatalf("expected success=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "partsbin_job_failure_total", "job", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unlabelled failure=1, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "partsbin_job_duration_seconds", "job", "refresh-details"); err != nil || got < 2 {
		t.Fatalf("expected duration sum >= 2, got %f (%v)", got, err)
	}
}
