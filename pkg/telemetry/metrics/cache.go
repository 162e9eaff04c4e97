package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics tracks the engine's caches, labelled by cache name
// ("enfold", "guard", "pattern").
//
// Metrics:
//   - <ns>_cache_hits_total: cache hits by cache name
//   - <ns>_cache_misses_total: cache misses by cache name
//   - <ns>_cache_entries: current number of entries
//   - <ns>_cache_evictions_total: entries dropped under capacity pressure
type CacheMetrics struct {
	hitsTotal      *prometheus.CounterVec
	missesTotal    *prometheus.CounterVec
	entries        *prometheus.GaugeVec
	evictionsTotal *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics with the provided
// registry.
func NewCacheMetrics(namespace string, registry *prometheus.Registry) *CacheMetrics {
	m := &CacheMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),
		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_entries",
				Help:      "Current number of entries in cache",
			},
			[]string{"cache"},
		),
		evictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_evictions_total",
				Help:      "Total number of cache evictions",
			},
			[]string{"cache"},
		),
	}

	registry.MustRegister(m.hitsTotal, m.missesTotal, m.entries, m.evictionsTotal)
	return m
}

// Hit records a cache hit.
func (m *CacheMetrics) Hit(cache string) {
	if m == nil {
		return
	}
	m.hitsTotal.WithLabelValues(cache).Inc()
}

// Miss records a cache miss.
func (m *CacheMetrics) Miss(cache string) {
	if m == nil {
		return
	}
	m.missesTotal.WithLabelValues(cache).Inc()
}

// SetEntries records the current entry count.
func (m *CacheMetrics) SetEntries(cache string, n int) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(cache).Set(float64(n))
}

// Eviction records one capacity eviction.
func (m *CacheMetrics) Eviction(cache string) {
	if m == nil {
		return
	}
	m.evictionsTotal.WithLabelValues(cache).Inc()
}
