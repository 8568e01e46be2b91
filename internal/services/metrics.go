package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Transaction outcomes by operation: committed, rejected (typed
	// validation/guard failure), aborted (could not commit)
	Transactions *prometheus.CounterVec

	// Task generation metrics
	GenerationRequests *prometheus.CounterVec
	GenerationLatency  prometheus.Histogram
}

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	return &Metrics{
		Transactions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "goaltask_transactions_total",
			Help: "Total number of aggregate transactions by operation and outcome",
		}, []string{"operation", "outcome"}),

		GenerationRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "goaltask_generation_requests_total",
			Help: "Total number of task generation requests by result",
		}, []string{"result"}), // result: "ok", "cached", "error"

		GenerationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "goaltask_generation_duration_seconds",
			Help:    "Task generation latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120}, // up to 2 minutes for LLM responses
		}),
	}
}

// TransactionOutcome records one transaction result. Safe on a nil receiver
// so services constructed without metrics (tests) don't panic.
func (m *Metrics) TransactionOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(operation, outcome).Inc()
}

// GenerationResult records one generation call and its duration.
func (m *Metrics) GenerationResult(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.GenerationRequests.WithLabelValues(result).Inc()
	if result != "cached" {
		m.GenerationLatency.Observe(elapsed.Seconds())
	}
}
