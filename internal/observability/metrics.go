// Package observability exposes resolution metrics for Prometheus scraping.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts cache and store activity in the content resolver. A nil
// *Metrics is valid and records nothing, so callers never need to guard.
type Metrics struct {
	registry *prometheus.Registry

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	storeReads  *prometheus.CounterVec
	storeErrors *prometheus.CounterVec
	fallbacks   prometheus.Counter
}

// NewMetrics creates a collector on its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "visionhelp_cache_hits_total",
			Help: "Content cache hits.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "visionhelp_cache_misses_total",
			Help: "Content cache misses.",
		}),
		storeReads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "visionhelp_store_reads_total",
			Help: "Content store reads by store name.",
		}, []string{"store"}),
		storeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "visionhelp_store_errors_total",
			Help: "Failed content store reads by store name.",
		}, []string{"store"}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "visionhelp_fallbacks_total",
			Help: "Synthesized fallback documents served.",
		}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *Metrics) StoreRead(store string) {
	if m != nil {
		m.storeReads.WithLabelValues(store).Inc()
	}
}

func (m *Metrics) StoreError(store string) {
	if m != nil {
		m.storeErrors.WithLabelValues(store).Inc()
	}
}

func (m *Metrics) Fallback() {
	if m != nil {
		m.fallbacks.Inc()
	}
}
