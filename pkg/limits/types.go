package limits

import (
	"log/slog"
	"time"

	"mercator-hq/budgetd/pkg/limits/budget"
)

// Operation identifies a registry entry point in metrics and logs.
type Operation string

const (
	// OpRecordSpending is the spend recording path.
	OpRecordSpending Operation = "record_spending"

	// OpExceedsBudget is the budget query path.
	OpExceedsBudget Operation = "exceeds_budget"
)

// DefaultMaintenanceInterval is how often Run refreshes the clock and sweeps
// stale records when no interval is configured.
const DefaultMaintenanceInterval = 500 * time.Millisecond

// PolicyStats is a point-in-time summary of the records held for a policy.
type PolicyStats struct {
	// Name is the policy name.
	Name string

	// Tracked is the number of tenants with a live record.
	Tracked int

	// Exceeding is the number of tracked tenants whose last decision was
	// over budget.
	Exceeding int
}

// SweepResult describes one maintenance pass.
type SweepResult struct {
	// Candidates is the number of records found stale during the scan.
	Candidates int

	// Evicted is the number of records actually removed.
	Evicted int

	// Remaining is the number of records left after the sweep.
	Remaining int

	// Duration is how long the sweep took.
	Duration time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces the coarse clock. Tests pass a *budget.ManualClock.
func WithClock(clock budget.Clock) Option {
	return func(r *Registry) {
		r.clock = clock
	}
}

// WithObserver sets the observer notified of decisions and sweeps.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithLogger sets the logger used by the maintenance loop.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaintenanceInterval sets the maintenance tick. Non-positive values
// keep the default.
func WithMaintenanceInterval(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.interval = d
		}
	}
}
