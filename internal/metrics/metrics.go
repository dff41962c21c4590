package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesConsumed    *prometheus.CounterVec
	QuotaExceeded       prometheus.Counter
	StoreErrors         *prometheus.CounterVec
	AnalysisResults     *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AnalysesConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vision_analyses_consumed_total",
				Help: "Analysis slots consumed, by tier",
			},
			[]string{"tier"},
		),
		QuotaExceeded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vision_quota_exceeded_total",
				Help: "Analysis requests rejected because the free quota was used up",
			},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vision_entitlement_store_errors_total",
				Help: "Entitlement store failures, by operation",
			},
			[]string{"operation"},
		),
		AnalysisResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vision_analysis_results_total",
				Help: "Completed analyze requests, by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vision_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vision_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	m.registry.MustRegister(
		m.AnalysesConsumed,
		m.QuotaExceeded,
		m.StoreErrors,
		m.AnalysisResults,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordConsumed(tier string) {
	if m == nil {
		return
	}
	m.AnalysesConsumed.WithLabelValues(tier).Inc()
}

func (m *Metrics) RecordQuotaExceeded() {
	if m == nil {
		return
	}
	m.QuotaExceeded.Inc()
}

func (m *Metrics) RecordStoreError(operation string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordAnalysis(outcome string) {
	if m == nil {
		return
	}
	m.AnalysisResults.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
