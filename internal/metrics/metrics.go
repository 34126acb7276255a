// Package metrics provides Prometheus metrics for the site agent.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the agent.
type Metrics struct {
	ActionsTotal          *prometheus.CounterVec
	RoundTripsTotal       *prometheus.CounterVec
	RoundTripDuration     prometheus.Histogram
	OnboardingTransitions *prometheus.CounterVec
	ErrorsTotal           *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siteagent_actions_total",
				Help: "Applied site actions by action name and result.",
			},
			[]string{"action", "success"},
		),
		RoundTripsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siteagent_roundtrips_total",
				Help: "AI round trips by status.",
			},
			[]string{"status"},
		),
		RoundTripDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "siteagent_roundtrip_duration_seconds",
				Help:    "Duration of AI round trips, including retries.",
				Buckets: prometheus.DefBuckets,
			},
		),
		OnboardingTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siteagent_onboarding_transitions_total",
				Help: "Onboarding step transitions by step and result.",
			},
			[]string{"step", "result"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "siteagent_errors_total",
				Help: "Total errors by module and type.",
			},
			[]string{"module", "type"},
		),
		registry: reg,
	}

	reg.MustRegister(m.ActionsTotal)
	reg.MustRegister(m.RoundTripsTotal)
	reg.MustRegister(m.RoundTripDuration)
	reg.MustRegister(m.OnboardingTransitions)
	reg.MustRegister(m.ErrorsTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (for tests and gatherers).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAction increments the action counter.
func (m *Metrics) RecordAction(action string, success bool) {
	m.ActionsTotal.WithLabelValues(action, strconv.FormatBool(success)).Inc()
}

// RecordRoundTrip counts a round trip and observes its duration.
func (m *Metrics) RecordRoundTrip(status string, seconds float64) {
	m.RoundTripsTotal.WithLabelValues(status).Inc()
	m.RoundTripDuration.Observe(seconds)
}

// RecordTransition increments the onboarding transition counter.
func (m *Metrics) RecordTransition(step, result string) {
	m.OnboardingTransitions.WithLabelValues(step, result).Inc()
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(module, errType string) {
	m.ErrorsTotal.WithLabelValues(module, errType).Inc()
}
