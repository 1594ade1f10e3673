// Package observability exposes Prometheus metrics for the API.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the server.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Analysis metrics
	AnalysesTotal      *prometheus.CounterVec
	AnalysesInFlight   prometheus.Gauge
	ExtractedChars     prometheus.Histogram
	TruncatedReports   prometheus.Counter
	CompletionDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics on a private registry, so
// several instances (one per test) never collide.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_analyzer_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "report_analyzer_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_analyzer_analyses_total",
				Help: "Analyses by outcome (success or error kind)",
			},
			[]string{"outcome"},
		),
		AnalysesInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "report_analyzer_analyses_in_flight",
				Help: "Analyses currently being processed",
			},
		),
		ExtractedChars: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "report_analyzer_extracted_chars",
				Help:    "Characters of text extracted per report",
				Buckets: []float64{100, 500, 1000, 2000, 4000, 8000, 16000, 32000},
			},
		),
		TruncatedReports: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "report_analyzer_truncated_reports_total",
				Help: "Reports cut down to the prompt character budget",
			},
		),
		CompletionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "report_analyzer_completion_duration_seconds",
				Help:    "Latency of the LLM completion call",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
		),
	}
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (used by tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
