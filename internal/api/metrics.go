package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/depsight/depsight/pkg/registry"
)

// Metrics holds the Prometheus instruments for serve mode.
type Metrics struct {
	RefreshesTotal  *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	RegistryLookups *prometheus.CounterVec
}

// NewMetrics registers the depsight instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RefreshesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "depsight",
			Name:      "refreshes_total",
			Help:      "Inventory refreshes by trigger and status.",
		}, []string{"trigger", "status"}),

		RefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "depsight",
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of one inventory refresh.",
			Buckets:   prometheus.DefBuckets,
		}),

		RegistryLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "depsight",
			Name:      "registry_lookups_total",
			Help:      "Registry lookups by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveLookup adapts RegistryLookups to the registry observer callback.
func (m *Metrics) ObserveLookup(outcome registry.Outcome) {
	m.RegistryLookups.WithLabelValues(string(outcome)).Inc()
}
