package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the user module.
type Metrics struct {
	// Account signups by outcome
	Signups *prometheus.CounterVec

	// Login attempts by outcome
	Logins *prometheus.CounterVec

	// Role changes by target role
	RoleChanges *prometheus.CounterVec
}

// New creates a new Metrics instance with all user module metrics registered.
func New() *Metrics {
	return &Metrics{
		Signups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vecinal_user_signups_total",
			Help: "Total account signup attempts by outcome",
		}, []string{"outcome"}), // outcome: "created", "duplicate", "invalid"

		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vecinal_user_logins_total",
			Help: "Total login attempts by outcome",
		}, []string{"outcome"}), // outcome: "ok", "bad_credentials", "inactive"

		RoleChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vecinal_user_role_changes_total",
			Help: "Total role changes by target role",
		}, []string{"role"}),
	}
}

// IncrementSignup records a signup attempt.
func (m *Metrics) IncrementSignup(outcome string) {
	if m != nil {
		m.Signups.WithLabelValues(outcome).Inc()
	}
}

// IncrementLogin records a login attempt outcome.
func (m *Metrics) IncrementLogin(outcome string) {
	if m != nil {
		m.Logins.WithLabelValues(outcome).Inc()
	}
}

// IncrementRoleChange records a role change.
func (m *Metrics) IncrementRoleChange(role string) {
	if m != nil {
		m.RoleChanges.WithLabelValues(role).Inc()
	}
}
