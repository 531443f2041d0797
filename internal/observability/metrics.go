// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Batch metrics
	BatchRunsTotal        *prometheus.CounterVec
	BatchDuration         prometheus.Histogram
	TransactionsScanned   prometheus.Counter
	ElasticityRowsWritten *prometheus.CounterVec
	NullEstimates         prometheus.Counter

	// Query metrics
	QueryRequestsTotal *prometheus.CounterVec
	QueryDuration      *prometheus.HistogramVec

	// Database metrics
	StoreErrors *prometheus.CounterVec

	// Health metrics
	LastSuccessfulBatch prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "elasticity_lab"
	}

	return &Metrics{
		BatchRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Total number of batch runs by status",
		}, []string{"status"}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Batch run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		TransactionsScanned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "transactions_scanned_total",
			Help:      "Total number of transactions loaded for estimation",
		}),
		ElasticityRowsWritten: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "elasticity_rows_written_total",
			Help:      "Total number of elasticity rows persisted by level",
		}, []string{"level"}),
		NullEstimates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "null_estimates_total",
			Help:      "Total number of entities persisted without a usable estimate",
		}),

		QueryRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "requests_total",
			Help:      "Total number of elasticity queries by level and outcome",
		}, []string{"level", "outcome"}),
		QueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Elasticity query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"level"}),

		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "store_errors_total",
			Help:      "Total number of storage errors by backend and operation",
		}, []string{"backend", "operation"}),

		LastSuccessfulBatch: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_batch_timestamp",
			Help:      "Unix timestamp of last successful batch run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordBatchRun records a batch run outcome and its duration.
func RecordBatchRun(status string, durationSeconds float64) {
	DefaultMetrics.BatchRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.BatchDuration.Observe(durationSeconds)
}

// RecordRowsWritten adds persisted row counts for a level.
func RecordRowsWritten(level string, rows int) {
	DefaultMetrics.ElasticityRowsWritten.WithLabelValues(level).Add(float64(rows))
}

// RecordNullEstimates adds entities persisted without a usable estimate.
func RecordNullEstimates(n int) {
	DefaultMetrics.NullEstimates.Add(float64(n))
}

// RecordQuery records a single elasticity query.
func RecordQuery(level, outcome string, seconds float64) {
	DefaultMetrics.QueryRequestsTotal.WithLabelValues(level, outcome).Inc()
	DefaultMetrics.QueryDuration.WithLabelValues(level).Observe(seconds)
}

// RecordStoreError records a storage error.
func RecordStoreError(backend, operation string) {
	DefaultMetrics.StoreErrors.WithLabelValues(backend, operation).Inc()
}
