package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics records how entity repositories use their read caches.
type CacheMetrics struct {
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	fetches  *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewCacheMetrics registers the repository cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "repository_cache_hits_total",
		Help: "Reads served from a fresh repository cache.",
	}, []string{"entity"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "repository_cache_misses_total",
		Help: "Reads that found the repository cache missing or stale.",
	}, []string{"entity"})
	fetches := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "repository_fetch_duration_seconds",
		Help:    "Duration of remote store fetches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "repository_remote_failures_total",
		Help: "Remote store calls that failed and were converted to safe defaults.",
	}, []string{"entity", "op"})
	reg.MustRegister(hits, misses, fetches, failures)
	return &CacheMetrics{
		hits:     hits,
		misses:   misses,
		fetches:  fetches,
		failures: failures,
	}
}

// IncHit counts a fresh cache read.
func (c *CacheMetrics) IncHit(entity string) {
	if c == nil || c.hits == nil {
		return
	}
	c.hits.WithLabelValues(normalizeLabel(entity)).Inc()
}

// IncMiss counts a stale or missing cache read.
func (c *CacheMetrics) IncMiss(entity string) {
	if c == nil || c.misses == nil {
		return
	}
	c.misses.WithLabelValues(normalizeLabel(entity)).Inc()
}

// ObserveFetch records the duration of one remote fetch.
func (c *CacheMetrics) ObserveFetch(entity string, duration time.Duration) {
	if c == nil || c.fetches == nil {
		return
	}
	c.fetches.WithLabelValues(normalizeLabel(entity)).Observe(duration.Seconds())
}

// IncFailure counts a swallowed remote error.
func (c *CacheMetrics) IncFailure(entity, op string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(entity), normalizeLabel(op)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
