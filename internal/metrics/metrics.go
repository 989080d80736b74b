// Package metrics counts catalog fetches, searches and store calls in a
// private Prometheus registry.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"vidlists/storage"
)

const namespace = "vidlists"

// Result label values.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultNotFound = "not_found"
	ResultHit      = "hit"
	ResultMiss     = "miss"
)

// Metrics holds the instruments for one App.
type Metrics struct {
	registry *prometheus.Registry

	catalogFetches *prometheus.CounterVec
	catalogVideos  prometheus.Gauge
	searches       *prometheus.CounterVec
	storeOps       *prometheus.CounterVec
}

// New registers every instrument in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		catalogFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "fetches_total",
			Help:      "Catalog fetches by kind (all, page) and result.",
		}, []string{"kind", "result"}),
		catalogVideos: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "videos",
			Help:      "Videos currently held by the catalog cache.",
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Search queries by result (hit, miss).",
		}, []string{"result"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store calls by operation and result.",
		}, []string{"op", "result"}),
	}
	m.registry.MustRegister(m.catalogFetches, m.catalogVideos, m.searches, m.storeOps)
	return m
}

// Registry exposes the registry for scraping or dumping.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveFetch records one catalog fetch of the given kind.
func (m *Metrics) ObserveFetch(kind string, err error) {
	m.catalogFetches.WithLabelValues(kind, result(err)).Inc()
}

// SetCatalogSize records the number of cached videos.
func (m *Metrics) SetCatalogSize(n int) {
	m.catalogVideos.Set(float64(n))
}

// ObserveSearch records one query and whether it matched anything.
func (m *Metrics) ObserveSearch(matches int) {
	if matches > 0 {
		m.searches.WithLabelValues(ResultHit).Inc()
		return
	}
	m.searches.WithLabelValues(ResultMiss).Inc()
}

// WriteTextfile dumps every metric to path in the text exposition format.
// The write is atomic.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, storage.ErrNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}
