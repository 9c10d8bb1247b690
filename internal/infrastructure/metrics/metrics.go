package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Mutation metrics
	AppliesTotal  *prometheus.CounterVec
	ApplyDuration *prometheus.HistogramVec
	RetriesTotal  *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		AppliesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobalance_applies_total",
				Help: "Total balance mutations by strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		ApplyDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobalance_apply_duration_seconds",
				Help:    "Duration of balance mutations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"strategy"},
		),
		RetriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobalance_apply_retries_total",
				Help: "Total transient failures that triggered a retry",
			},
			[]string{"strategy"},
		),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobalance_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobalance_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// ObserveApply records one finished mutation attempt chain.
func (m *Metrics) ObserveApply(strategy, outcome string, duration time.Duration) {
	m.AppliesTotal.WithLabelValues(strategy, outcome).Inc()
	m.ApplyDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// IncRetry counts a transient failure that will be retried.
func (m *Metrics) IncRetry(strategy string) {
	m.RetriesTotal.WithLabelValues(strategy).Inc()
}
