// Package monitoring registers and records the service's Prometheus metrics.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	LoginAttempts      *prometheus.CounterVec
	LoginLatency       prometheus.Histogram
	StoreOperations    *prometheus.CounterVec
	StoreOpLatency     *prometheus.HistogramVec
	RateLimitRejected  prometheus.Counter
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_login_attempts_total",
				Help: "Total number of cluster login attempts.",
			},
			[]string{"result"},
		),
		LoginLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "console_login_latency_seconds",
				Help:    "Latency of cluster login attempts.",
				Buckets: prometheus.DefBuckets,
			},
		),
		StoreOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_store_operations_total",
				Help: "Total number of VAST Database operations.",
			},
			[]string{"operation", "result"},
		),
		StoreOpLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_store_operation_latency_seconds",
				Help:    "Latency of VAST Database operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RateLimitRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "console_rate_limit_rejections_total",
				Help: "Total number of requests rejected by the rate limiter.",
			},
		),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_http_requests_total",
				Help: "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_http_request_latency_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// RecordLogin records the outcome and duration of a cluster login attempt.
func (m *Metrics) RecordLogin(result string, duration time.Duration) {
	m.LoginAttempts.WithLabelValues(result).Inc()
	m.LoginLatency.Observe(duration.Seconds())
}

// RecordStoreOperation records the outcome and duration of a store operation.
func (m *Metrics) RecordStoreOperation(operation, result string, duration time.Duration) {
	m.StoreOperations.WithLabelValues(operation, result).Inc()
	m.StoreOpLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRateLimitRejection records a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimitRejection() {
	m.RateLimitRejected.Inc()
}

// RecordHTTPRequest records a handled HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}
