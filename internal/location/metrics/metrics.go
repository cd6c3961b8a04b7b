package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the location module.
type Metrics struct {
	// Enrichment latency by shape: "single" or "bulk"
	EnrichLatency *prometheus.HistogramVec

	// Enriched locations with at least one unresolved code
	PartialEnrichments prometheus.Counter

	// Hierarchy validation outcomes by result
	HierarchyChecks *prometheus.CounterVec
}

// New creates a new Metrics instance with all location module metrics registered.
func New() *Metrics {
	return &Metrics{
		EnrichLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vecinal_location_enrich_duration_seconds",
			Help:    "Duration of location name enrichment by shape",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"shape"}), // shape: "single", "bulk"

		PartialEnrichments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vecinal_location_partial_enrichments_total",
			Help: "Total enriched locations where at least one code did not resolve",
		}),

		HierarchyChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vecinal_location_hierarchy_checks_total",
			Help: "Total hierarchy validations by result",
		}, []string{"result"}), // result: "ok", "invalid"
	}
}

// ObserveEnrichLatency records the duration of an enrichment call.
func (m *Metrics) ObserveEnrichLatency(shape string, d time.Duration) {
	if m != nil {
		m.EnrichLatency.WithLabelValues(shape).Observe(d.Seconds())
	}
}

// IncrementPartialEnrichment records an enrichment that left a name null.
func (m *Metrics) IncrementPartialEnrichment() {
	if m != nil {
		m.PartialEnrichments.Inc()
	}
}

// IncrementHierarchyCheck records a hierarchy validation outcome.
func (m *Metrics) IncrementHierarchyCheck(result string) {
	if m != nil {
		m.HierarchyChecks.WithLabelValues(result).Inc()
	}
}
