package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCacheMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCacheMetrics(reg)
	metrics.IncHit("products")
	metrics.IncHit("products")
	metrics.IncMiss("products")
	metrics.ObserveFetch("products", 120*time.Millisecond)
	metrics.IncFailure("cards", "load_all")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "repository_cache_hits_total", "entity", "products"); err != nil {
		t.Fatalf("fetch hits: %v", err)
	} else if got != 2 {
		t.Fatalf("expected hits=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "repository_cache_misses_total", "entity", "products"); err != nil || got != 1 {
		t.Fatalf("expected misses=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "repository_remote_failures_total", "op", "load_all"); err != nil || got != 1 {
		t.Fatalf("expected failures=1, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "repository_fetch_duration_seconds", "entity", "products"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNotifyMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewNotifyMetrics(reg)
	metrics.IncSent("emailjs")
	metrics.IncFailed("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "notification_sent_total", "channel", "emailjs"); err != nil || got != 1 {
		t.Fatalf("expected sent=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "notification_failed_total", "channel", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected failed=1 for unknown channel, got %f (%v)", got, err)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var cache *CacheMetrics
	cache.IncHit("x")
	cache.ObserveFetch("x", time.Second)
	NewCacheMetrics(nil).IncFailure("x", "y")

	var notify *NotifyMetrics
	notify.IncSent("x")
	NewNotifyMetrics(nil).IncFailed("x")
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
