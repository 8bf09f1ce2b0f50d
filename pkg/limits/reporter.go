package limits

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Reporter periodically logs per-policy record counts and publishes them to
// the registry's observer.
type Reporter struct {
	registry *Registry
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewReporter creates a reporter for reg. The schedule uses standard cron
// syntax or descriptors such as "@every 1m".
func NewReporter(reg *Registry, schedule string) *Reporter {
	return &Reporter{
		registry: reg,
		schedule: schedule,
		cron:     cron.New(),
		logger:   reg.logger.With("component", "budget.reporter"),
	}
}

// Start schedules reporting until ctx is cancelled. An empty schedule
// disables the reporter.
//
// Common schedules:
//   - "@every 1m"    - Every minute
//   - "*/5 * * * *"  - Every five minutes
//   - "0 * * * *"    - Hourly
func (r *Reporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schedule == "" {
		r.logger.Info("report schedule not configured, skipping reporter")
		return nil
	}

	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("invalid report schedule %q: %w", r.schedule, err)
	}

	if _, err := r.cron.AddFunc(r.schedule, func() { r.Report() }); err != nil {
		return fmt.Errorf("failed to schedule budget report: %w", err)
	}

	r.cron.Start()
	r.running = true

	r.logger.Info("budget reporter started", "schedule", r.schedule)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// Report collects and publishes one summary.
func (r *Reporter) Report() []PolicyStats {
	stats := r.registry.Stats()
	r.registry.observer.Reported(stats)

	for _, s := range stats {
		r.logger.Info("budget policy summary",
			"policy", s.Name,
			"tracked", s.Tracked,
			"exceeding", s.Exceeding,
		)
	}
	return stats
}

// Stop stops the reporter and waits for a running report to finish.
func (r *Reporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		ctx := r.cron.Stop()
		<-ctx.Done()
		r.running = false
		r.logger.Info("budget reporter stopped")
	}
}

// IsRunning returns true if the reporter is scheduled.
func (r *Reporter) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.running
}

// NextRun returns the next scheduled report time, or nil if none is
// scheduled.
func (r *Reporter) NextRun() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
