// Package metrics exposes Prometheus counters for the authentication flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login and refresh outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeReplay  = "replay"
)

// Metrics holds the counters incremented by the authentication use cases.
// Each instance carries its own registry, so tests never collide on the
// default global one.
type Metrics struct {
	registry *prometheus.Registry

	LoginsTotal          *prometheus.CounterVec
	RefreshesTotal       *prometheus.CounterVec
	LogoutsTotal         prometheus.Counter
	SessionsRevokedTotal prometheus.Counter
}

// New creates and registers the authentication metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_logins_total",
				Help: "Total number of login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		RefreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_refreshes_total",
				Help: "Total number of token refresh attempts by outcome.",
			},
			[]string{"outcome"},
		),
		LogoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_logouts_total",
			Help: "Total number of logouts.",
		}),
		SessionsRevokedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_sessions_revoked_total",
			Help: "Total number of sessions revoked outside of logout.",
		}),
	}

	m.registry.MustRegister(
		m.LoginsTotal,
		m.RefreshesTotal,
		m.LogoutsTotal,
		m.SessionsRevokedTotal,
	)

	return m
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
