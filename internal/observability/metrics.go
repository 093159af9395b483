// Package observability provides Prometheus metrics for the lawglot application.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry

	// lawapi client
	APICalls   *prometheus.CounterVec
	APIErrors  *prometheus.CounterVec
	APIRetries prometheus.Counter

	// crawl pipeline
	BatchesCommitted *prometheus.CounterVec
	RowsUpserted     *prometheus.CounterVec
	CrawlAborts      *prometheus.CounterVec

	// resolution service
	ResolveRequests prometheus.Counter
	ResolveWarnings prometheus.Counter
	ResolveDuration prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with its own registry.
// It returns an error if any metric registration fails.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,

		APICalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lawapi_calls_total",
			Help: "Total number of upstream API calls by endpoint target",
		}, []string{"target"}),
		APIErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lawapi_errors_total",
			Help: "Total number of upstream API errors by endpoint target and class",
		}, []string{"target", "class"}),
		APIRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lawapi_retries_total",
			Help: "Total number of retried upstream API calls",
		}),

		BatchesCommitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawl_batches_committed_total",
			Help: "Total number of committed crawl batches by strategy",
		}, []string{"strategy"}),
		RowsUpserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawl_rows_upserted_total",
			Help: "Total number of upserted rows by strategy",
		}, []string{"strategy"}),
		CrawlAborts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawl_aborts_total",
			Help: "Total number of aborted crawl runs by strategy",
		}, []string{"strategy"}),

		ResolveRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resolve_requests_total",
			Help: "Total number of resolution requests",
		}),
		ResolveWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resolve_warnings_total",
			Help: "Total number of warnings emitted in resolution responses",
		}),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resolve_duration_seconds",
			Help:    "Resolution request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	collectors := []prometheus.Collector{
		m.APICalls, m.APIErrors, m.APIRetries,
		m.BatchesCommitted, m.RowsUpserted, m.CrawlAborts,
		m.ResolveRequests, m.ResolveWarnings, m.ResolveDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics collector: %w", err)
		}
	}

	return m, nil
}

// Handler returns an HTTP handler exposing the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
