// Package metric provides Prometheus instrumentation for the transport
// layer: per-request counters and latency, plus the number of live
// Redfish sessions.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SessionsActive  prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rackfish",
				Subsystem: "transport",
				Name:      "requests_total",
				Help:      "Total HTTP requests issued to the managed endpoint",
			},
			[]string{"method", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rackfish",
				Subsystem: "transport",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency against the managed endpoint",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "rackfish",
				Subsystem: "transport",
				Name:      "sessions_active",
				Help:      "Redfish sessions currently held by this client",
			},
		),
	}
}

func (m *Metrics) Register(registry prometheus.Registerer) error {
	if m == nil || registry == nil {
		return nil
	}
	for _, collector := range []prometheus.Collector{
		m.RequestsTotal,
		m.RequestDuration,
		m.SessionsActive,
	} {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRequest is nil-safe so the transport can run without a metrics
// sink configured.
func (m *Metrics) ObserveRequest(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, outcome).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}
