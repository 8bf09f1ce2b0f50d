package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks transport requests.
//
// Metrics:
//   - <ns>_requests_total: request count by transport, route and code
//   - <ns>_request_duration_seconds: request duration histogram
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with registry.
func NewRequestMetrics(namespace string, registry prometheus.Registerer) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of transport requests handled",
			},
			[]string{"transport", "route", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of transport requests in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14), // 50µs to 400ms
			},
			[]string{"transport", "route"},
		),
	}

	registry.MustRegister(rm.requestsTotal, rm.requestDuration)

	return rm
}

// Record records one request.
func (rm *RequestMetrics) Record(transport, route, code string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(transport, route, code).Inc()
	rm.requestDuration.WithLabelValues(transport, route).Observe(duration.Seconds())
}
