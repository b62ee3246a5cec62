// Package metrics exposes Prometheus instrumentation for assistant exchanges.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wonderfulgo"

// Outcome labels used alongside the error kinds.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "busy"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	exchanges *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	inFlight  *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_exchanges_total",
			Help:      "Assistant exchanges by mode and outcome.",
		}, []string{"mode", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assistant_exchange_duration_seconds",
			Help:      "Time from request start to settle.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"mode"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "assistant_in_flight",
			Help:      "Exchanges currently waiting on the service.",
		}, []string{"mode"}),
	}
	if reg != nil {
		reg.MustRegister(m.exchanges, m.duration, m.inFlight)
	}
	return m
}

// Started marks an exchange for mode as in flight.
func (m *Metrics) Started(mode string) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(mode).Inc()
}

// Finished records the outcome of an exchange that was Started.
func (m *Metrics) Finished(mode, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(mode).Dec()
	m.exchanges.WithLabelValues(mode, outcome).Inc()
	m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// Rejected records a call refused by the single-flight guard.
func (m *Metrics) Rejected(mode string) {
	if m == nil {
		return
	}
	m.exchanges.WithLabelValues(mode, OutcomeRejected).Inc()
}

// Exchanges exposes the counter for tests and reporting.
func (m *Metrics) Exchanges() *prometheus.CounterVec {
	return m.exchanges
}
