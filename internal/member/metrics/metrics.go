package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the member module.
type Metrics struct {
	// New registrations by outcome
	Registrations *prometheus.CounterVec

	// Status transitions by edge
	StatusTransitions *prometheus.CounterVec

	// Link attempts by outcome
	LinkOutcomes *prometheus.CounterVec
}

// New creates a new Metrics instance with all member module metrics registered.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vecinal_member_registrations_total",
			Help: "Total member registration attempts by outcome",
		}, []string{"outcome"}), // outcome: "created", "duplicate", "invalid"

		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vecinal_member_status_transitions_total",
			Help: "Total member status transitions by edge",
		}, []string{"from", "to"}),

		LinkOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vecinal_member_link_outcomes_total",
			Help: "Total member link attempts by outcome",
		}, []string{"outcome"}), // outcome: "linked", "idempotent", "conflict", "invalid_state"
	}
}

// IncrementRegistration records a registration attempt.
func (m *Metrics) IncrementRegistration(outcome string) {
	if m != nil {
		m.Registrations.WithLabelValues(outcome).Inc()
	}
}

// IncrementTransition records one status machine edge.
func (m *Metrics) IncrementTransition(from, to string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(from, to).Inc()
	}
}

// IncrementLink records a link attempt outcome.
func (m *Metrics) IncrementLink(outcome string) {
	if m != nil {
		m.LinkOutcomes.WithLabelValues(outcome).Inc()
	}
}
