// Package metric defines the Prometheus metrics recorded by the SPARQL
// endpoint client.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "belhisfirm"

// Query outcome label values.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusRetry    = "retry"
	StatusNotFound = "not_found"
)

// Metrics groups the endpoint client metrics.
type Metrics struct {
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	CacheResults  *prometheus.CounterVec
	RetriesTotal  *prometheus.CounterVec
	ResultRows    *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg. A nil reg
// leaves them unregistered, which tests use to avoid global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "sparql",
				Name:      "queries_total",
				Help:      "Total number of SPARQL queries sent, by template and outcome",
			},
			[]string{"template", "status"},
		),

		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "sparql",
				Name:      "query_duration_seconds",
				Help:      "SPARQL query round-trip time in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"template"},
		),

		CacheResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "cache",
				Name:      "results_total",
				Help:      "Cache status reported by the proxy in front of the endpoint (HIT, MISS, none)",
			},
			[]string{"status"},
		),

		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "sparql",
				Name:      "retries_total",
				Help:      "Total number of retried SPARQL requests",
			},
			[]string{"template"},
		),

		ResultRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "sparql",
				Name:      "result_rows",
				Help:      "Number of solution rows per SPARQL query",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"template"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.QueriesTotal, m.QueryDuration, m.CacheResults, m.RetriesTotal, m.ResultRows)
	}
	return m
}

// RecordQuery records the outcome and duration of one query.
func (m *Metrics) RecordQuery(template, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(template, status).Inc()
	m.QueryDuration.WithLabelValues(template).Observe(duration.Seconds())
}

// RecordRows records the number of rows a query returned.
func (m *Metrics) RecordRows(template string, rows int) {
	if m == nil {
		return
	}
	m.ResultRows.WithLabelValues(template).Observe(float64(rows))
}

// RecordCache counts one cache status as reported by X-Cache. Empty means the
// response came without a caching proxy.
func (m *Metrics) RecordCache(status string) {
	if m == nil {
		return
	}
	if status == "" {
		status = "none"
	}
	m.CacheResults.WithLabelValues(status).Inc()
}

// RecordRetry increments the retry counter.
func (m *Metrics) RecordRetry(template string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(template).Inc()
}
