package limits

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observer receives registry events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	// Decision is called for every answered spend or query.
	Decision(policy string, op Operation, exceeds, changed bool)

	// UnknownPolicy is called when an operation names an unregistered policy.
	UnknownPolicy(op Operation)

	// Swept is called after every maintenance pass.
	Swept(res SweepResult)

	// Reported is called with periodic per-policy summaries.
	Reported(stats []PolicyStats)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) Decision(string, Operation, bool, bool) {}
func (NoopObserver) UnknownPolicy(Operation)                {}
func (NoopObserver) Swept(SweepResult)                      {}
func (NoopObserver) Reported([]PolicyStats)                 {}

// Metrics is an Observer backed by Prometheus collectors.
type Metrics struct {
	// Decisions
	decisions     *prometheus.CounterVec
	changes       *prometheus.CounterVec
	unknownPolicy *prometheus.CounterVec

	// Maintenance
	evictions     prometheus.Counter
	records       prometheus.Gauge
	sweepDuration prometheus.Histogram

	// Periodic summaries
	tracked   *prometheus.GaugeVec
	exceeding *prometheus.GaugeVec
}

// NewMetrics creates the collectors under namespace and registers them with
// reg. A nil reg registers with the default registry.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "budget",
				Name:      "decisions_total",
				Help:      "Total number of budget decisions answered",
			},
			[]string{"policy", "operation", "result"},
		),

		changes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "budget",
				Name:      "decision_changes_total",
				Help:      "Total number of decisions that flipped and armed a debounce",
			},
			[]string{"policy", "result"},
		),

		unknownPolicy: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "budget",
				Name:      "unknown_policy_total",
				Help:      "Total number of operations naming an unregistered policy",
			},
			[]string{"operation"},
		),

		evictions: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "budget",
				Name:      "evictions_total",
				Help:      "Total number of stale records evicted",
			},
		),

		records: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "budget",
				Name:      "records",
				Help:      "Number of live accounting records after the last sweep",
			},
		),

		sweepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "budget",
				Name:      "sweep_duration_seconds",
				Help:      "Duration of maintenance sweeps in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to 2.6s
			},
		),

		tracked: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "budget",
				Name:      "tracked_tenants",
				Help:      "Number of tenants with a live record, per policy",
			},
			[]string{"policy"},
		),

		exceeding: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "budget",
				Name:      "exceeding_tenants",
				Help:      "Number of tracked tenants over budget at the last report, per policy",
			},
			[]string{"policy"},
		),
	}
}

func resultLabel(exceeds bool) string {
	if exceeds {
		return "exceeds"
	}
	return "within"
}

// Decision records an answered spend or query.
func (m *Metrics) Decision(policy string, op Operation, exceeds, changed bool) {
	result := resultLabel(exceeds)
	m.decisions.WithLabelValues(policy, string(op), result).Inc()
	if changed {
		m.changes.WithLabelValues(policy, result).Inc()
	}
}

// UnknownPolicy records a lookup of an unregistered policy.
func (m *Metrics) UnknownPolicy(op Operation) {
	m.unknownPolicy.WithLabelValues(string(op)).Inc()
}

// Swept records the outcome of a maintenance pass.
func (m *Metrics) Swept(res SweepResult) {
	m.evictions.Add(float64(res.Evicted))
	m.records.Set(float64(res.Remaining))
	m.sweepDuration.Observe(res.Duration.Seconds())
}

// Reported updates the per-policy gauges.
func (m *Metrics) Reported(stats []PolicyStats) {
	for _, s := range stats {
		m.tracked.WithLabelValues(s.Name).Set(float64(s.Tracked))
		m.exceeding.WithLabelValues(s.Name).Set(float64(s.Exceeding))
	}
}
