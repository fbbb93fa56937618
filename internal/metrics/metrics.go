// Package metrics provides Prometheus collectors for Abernathy Accounts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for login attempt results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	// Registrations counts successful account registrations.
	Registrations prometheus.Counter

	// LoginAttempts counts login attempts by result.
	LoginAttempts *prometheus.CounterVec

	// APIKeyRejections counts requests rejected by the access gate.
	APIKeyRejections prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "abernathy",
			Name:      "registrations_total",
			Help:      "Total number of successful account registrations.",
		}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "abernathy",
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts by result.",
		}, []string{"result"}),
		APIKeyRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "abernathy",
			Name:      "api_key_rejections_total",
			Help:      "Total number of requests rejected by the API key gate.",
		}),
	}
}
