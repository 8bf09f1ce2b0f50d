// Package metrics owns the Prometheus registry of the process.
//
// A Collector registers the Go runtime and process collectors, transport
// request metrics and the budget registry's observer on a private registry,
// and serves them in the Prometheus exposition format:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	reg := limits.NewRegistry(limits.WithObserver(collector.Budget()))
//	r.Handle("/metrics", collector.Handler())
//
// When metrics are disabled, recording calls are no-ops and Budget returns
// an observer that discards everything.
package metrics
