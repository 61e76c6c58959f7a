// Package metrics defines the Prometheus metric collectors used across the
// platform and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInFlight   prometheus.Gauge
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec
	PhrasesAddedTotal      prometheus.Counter
	PhrasesCleanedTotal    prometheus.Counter
	DocumentsParsedTotal   *prometheus.CounterVec
	DictionarySize         prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them with reg. Passing nil
// registers with the global default registry. When reg is also a Gatherer
// (a *prometheus.Registry), Handler serves exactly what was registered.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	m := &Metrics{
		gatherer: gatherer,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		StoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_operations_total",
				Help: "Frequency store operations by backend, operation, and status (ok, error).",
			},
			[]string{"backend", "op", "status"},
		),
		StoreOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_operation_duration_seconds",
				Help:    "Frequency store operation latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
			},
			[]string{"backend", "op"},
		),
		PhrasesAddedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "phrases_added_total",
				Help: "Total phrase occurrences added to the store.",
			},
		),
		PhrasesCleanedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "phrases_cleaned_total",
				Help: "Total phrases pruned for appearing at most once.",
			},
		),
		DocumentsParsedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_parsed_total",
				Help: "Text documents consumed by status (parsed, duplicate, invalid, error).",
			},
			[]string{"status"},
		),
		DictionarySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dictionary_size",
				Help: "Distinct phrases held by the store at the last report.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.StoreOperationsTotal,
		m.StoreOperationDuration,
		m.PhrasesAddedTotal,
		m.PhrasesCleanedTotal,
		m.DocumentsParsedTotal,
		m.DictionarySize,
	)

	return m
}

// Handler serves the collectors' registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
