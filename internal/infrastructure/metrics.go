package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service's prometheus instruments. A single instance is
// created at startup and shared by the middleware and the pipeline.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AnalysesTotal     *prometheus.CounterVec
	AnalysisDuration  prometheus.Histogram
	StageDuration     *prometheus.HistogramVec
	ProcedureFailures *prometheus.CounterVec
	PlotsRendered     *prometheus.CounterVec
}

// NewMetrics creates and registers the service instruments on a private
// registry so tests can construct as many instances as they want.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bioreport_http_requests_total",
			Help: "HTTP requests by route and status class.",
		}, []string{"route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bioreport_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bioreport_analyses_total",
			Help: "Research analyses by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bioreport_analysis_duration_seconds",
			Help:    "End-to-end research analysis latency.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bioreport_pipeline_stage_duration_seconds",
			Help:    "Latency per analysis pipeline stage.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		ProcedureFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bioreport_model_procedure_failures_total",
			Help: "Model procedures that failed and were omitted.",
		}, []string{"procedure"}),
		PlotsRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bioreport_plots_rendered_total",
			Help: "Rendered plot artifacts by type.",
		}, []string{"type"}),
	}
}

// Handler exposes the registry in prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
