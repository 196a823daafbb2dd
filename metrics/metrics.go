// Package metrics owns the Prometheus registry exposed on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge

	aiCalls    *prometheus.CounterVec
	aiDuration *prometheus.HistogramVec

	imports *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Requests currently being served.",
		}),
		aiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_gateway_calls_total",
			Help: "Calls to the chat-completion gateway by feature and outcome.",
		}, []string{"feature", "outcome"}),
		aiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ai_gateway_call_duration_seconds",
			Help:    "Chat-completion gateway latency.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"feature"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staged_imports_total",
			Help: "Staged imports by kind and terminal state.",
		}, []string{"kind", "state"}),
	}
	reg.MustRegister(
		m.httpRequests, m.httpDuration, m.inFlight,
		m.aiCalls, m.aiDuration, m.imports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) RecordHTTPRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) IncInFlight() {
	if m != nil {
		m.inFlight.Inc()
	}
}

func (m *Metrics) DecInFlight() {
	if m != nil {
		m.inFlight.Dec()
	}
}

func (m *Metrics) RecordAICall(feature, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.aiCalls.WithLabelValues(feature, outcome).Inc()
	m.aiDuration.WithLabelValues(feature).Observe(d.Seconds())
}

// RecordImport counts staged, committed, failed and discarded imports.
func (m *Metrics) RecordImport(kind, state string) {
	if m != nil {
		m.imports.WithLabelValues(kind, state).Inc()
	}
}
