// Package metrics holds the Prometheus collectors for auth flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Flow names used as the "flow" label.
const (
	FlowRegister = "register"
	FlowLogin    = "login"
	FlowLogout   = "logout"
)

// Outcome names used as the "outcome" label.
const (
	OutcomeSuccess       = "success"
	OutcomeDuplicate     = "duplicate"
	OutcomeInvalid       = "invalid"
	OutcomeUnknownEmail  = "unknown_email"
	OutcomeWrongPassword = "wrong_password"
	OutcomeError         = "error"
)

type Metrics struct {
	registry       *prometheus.Registry
	AuthEvents     *prometheus.CounterVec
	SessionsPurged prometheus.Counter
}

// New registers collectors on a private registry so tests can create as
// many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		AuthEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hirehub",
			Name:      "auth_events_total",
			Help:      "Register, login and logout attempts by outcome.",
		}, []string{"flow", "outcome"}),
		SessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hirehub",
			Name:      "sessions_purged_total",
			Help:      "Expired sessions removed by the janitor.",
		}),
	}

	reg.MustRegister(
		m.AuthEvents,
		m.SessionsPurged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Record(flow, outcome string) {
	m.AuthEvents.WithLabelValues(flow, outcome).Inc()
}

func (m *Metrics) Purged(n int64) {
	m.SessionsPurged.Add(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
