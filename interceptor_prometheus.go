package fins

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics exposes operation counts and latencies as Prometheus
// collectors. One instance registers three collectors; use a dedicated
// registerer per client if several clients must be told apart.
type PrometheusMetrics struct {
	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the collectors with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fins",
			Name:      "operations_total",
			Help:      "Completed FINS operations by type.",
		}, []string{"operation"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fins",
			Name:      "operation_errors_total",
			Help:      "Failed FINS operations by type.",
		}, []string{"operation"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fins",
			Name:      "operation_duration_seconds",
			Help:      "FINS operation latency by type.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"operation"}),
	}
}

// Interceptor returns an interceptor that records every operation.
//
// Example:
//
//	metrics := fins.NewPrometheusMetrics(nil)
//	client.SetInterceptor(metrics.Interceptor())
//	http.Handle("/metrics", promhttp.Handler())
func (m *PrometheusMetrics) Interceptor() Interceptor {
	return func(c *InterceptorCtx) (interface{}, error) {
		op := string(c.Info().Operation)
		start := time.Now()

		result, err := c.Invoke(nil)

		m.operations.WithLabelValues(op).Inc()
		m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if err != nil {
			m.errors.WithLabelValues(op).Inc()
		}

		return result, err
	}
}
