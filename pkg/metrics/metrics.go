// Package metrics defines the Prometheus collectors for the term search
// service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/resilience"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	InvocationsTotal     *prometheus.CounterVec
	InvocationDuration   *prometheus.HistogramVec
	LinesScanned         prometheus.Histogram
	TermHitsTotal        *prometheus.CounterVec
	ArtifactsWritten     prometheus.Counter
	StorageOpsTotal      *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec
	CatalogTerms         *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
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
		InvocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "term_search_invocations_total",
				Help: "Term search invocations by event shape and outcome (hit, miss, or error kind).",
			},
			[]string{"shape", "outcome"},
		),
		InvocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "term_search_invocation_duration_seconds",
				Help:    "End-to-end invocation latency in seconds.",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"shape"},
		),
		LinesScanned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "term_search_lines_scanned",
				Help:    "Number of LINE blocks scanned per document.",
				Buckets: []float64{0, 10, 25, 50, 100, 200, 400, 800},
			},
		),
		TermHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "term_search_term_hits_total",
				Help: "Documents in which a term was found, by term and category.",
			},
			[]string{"term", "category"},
		),
		ArtifactsWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "term_search_artifacts_written_total",
				Help: "Match artifacts written to object storage.",
			},
		),
		StorageOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "term_search_storage_operations_total",
				Help: "Object store operations by operation and status.",
			},
			[]string{"op", "status"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
		CatalogTerms: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "term_search_catalog_terms",
				Help: "Number of terms in the catalog last used, by version.",
			},
			[]string{"version"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.InvocationsTotal,
		m.InvocationDuration,
		m.LinesScanned,
		m.TermHitsTotal,
		m.ArtifactsWritten,
		m.StorageOpsTotal,
		m.CircuitBreakerState,
		m.CatalogTerms,
	)

	return m
}

// ObserveStorage implements storage.Observer.
func (m *Metrics) ObserveStorage(op, status string, breaker resilience.State) {
	m.StorageOpsTotal.WithLabelValues(op, status).Inc()
	m.CircuitBreakerState.WithLabelValues("object-store").Set(float64(breaker))
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
