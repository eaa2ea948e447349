package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector exported by yangfinder.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Search
	SearchesTotal    *prometheus.CounterVec
	SearchDuration   prometheus.Histogram
	SearchResults    prometheus.Histogram
	CacheLookups     *prometheus.CounterVec
	SuggestionsTotal prometheus.Counter

	// Catalog
	CatalogModules prometheus.Gauge

	// Recent / favorites
	StoreWritesTotal *prometheus.CounterVec
	StoreReadErrors  *prometheus.CounterVec
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yangfinder_searches_total",
				Help: "Total number of executed searches",
			},
			[]string{"outcome"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "yangfinder_search_duration_seconds",
				Help:    "Search pipeline duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		SearchResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "yangfinder_search_results",
				Help:    "Number of filtered matches per search",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
			},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yangfinder_search_cache_lookups_total",
				Help: "Search result cache lookups",
			},
			[]string{"result"},
		),
		SuggestionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "yangfinder_suggest_requests_total",
				Help: "Total number of autocomplete lookups",
			},
		),
		CatalogModules: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "yangfinder_catalog_modules",
				Help: "Number of modules in the catalog",
			},
		),
		StoreWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yangfinder_list_writes_total",
				Help: "Recent/favorite list writes by outcome",
			},
			[]string{"list", "result"},
		),
		StoreReadErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yangfinder_list_read_errors_total",
				Help: "Recent/favorite list reads that degraded to an empty list",
			},
			[]string{"list"},
		),
	}

	reg.MustRegister(
		m.SearchesTotal,
		m.SearchDuration,
		m.SearchResults,
		m.CacheLookups,
		m.SuggestionsTotal,
		m.CatalogModules,
		m.StoreWritesTotal,
		m.StoreReadErrors,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveSearch(outcome string, took time.Duration, results int) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(outcome).Inc()
	m.SearchDuration.Observe(took.Seconds())
	m.SearchResults.Observe(float64(results))
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) Suggest() {
	if m == nil {
		return
	}
	m.SuggestionsTotal.Inc()
}

func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.CatalogModules.Set(float64(n))
}

// ListWrite records a list write. result is "ok" or a write failure kind.
func (m *Metrics) ListWrite(list, result string) {
	if m == nil {
		return
	}
	m.StoreWritesTotal.WithLabelValues(list, result).Inc()
}

func (m *Metrics) ListReadError(list string) {
	if m == nil {
		return
	}
	m.StoreReadErrors.WithLabelValues(list).Inc()
}
