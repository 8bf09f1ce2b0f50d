package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mercator-hq/budgetd/pkg/config"
	"mercator-hq/budgetd/pkg/limits"
)

// Collector is the process-wide metrics registry.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requests *RequestMetrics
	budget   *limits.Metrics
}

// NewCollector creates a collector. If registry is nil a fresh one is
// created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}
	if !cfg.Enabled {
		return c
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: cfg.Namespace}),
	)
	c.requests = NewRequestMetrics(cfg.Namespace, registry)
	c.budget = limits.NewMetrics(registry, cfg.Namespace)

	return c
}

// Enabled reports whether metrics are collected.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Budget returns the observer to pass to the budget registry.
func (c *Collector) Budget() limits.Observer {
	if c.budget == nil {
		return limits.NoopObserver{}
	}
	return c.budget
}

// RecordRequest records a completed transport request.
//
// Parameters:
//   - transport: "http" or "grpc"
//   - route: route pattern or full gRPC method name
//   - code: HTTP status code or gRPC status code name
//   - duration: time spent handling the request
func (c *Collector) RecordRequest(transport, route, code string, duration time.Duration) {
	if c.requests == nil {
		return
	}
	c.requests.Record(transport, route, code, duration)
}
