package limits

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Run drives maintenance until ctx is cancelled: on every tick it refreshes
// the clock and evicts stale records. It always returns nil.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("budget maintenance started",
		slog.Duration("interval", r.interval),
		slog.Int("policies", len(r.policies)),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("budget maintenance stopped", slog.Int("records", r.Len()))
			return nil
		case <-ticker.C:
			r.Maintain()
		}
	}
}

// Maintain performs a single maintenance pass.
func (r *Registry) Maintain() SweepResult {
	r.clock.Refresh()
	res := r.Sweep()
	r.lastMaintenance.Store(time.Now().UnixNano())

	r.observer.Swept(res)
	if res.Evicted > 0 {
		r.logger.Debug("evicted stale budget records",
			slog.Int("evicted", res.Evicted),
			slog.Int("remaining", res.Remaining),
			slog.Duration("duration", res.Duration),
		)
	}
	return res
}

// Sweep evicts records that are stale at the current clock time.
//
// Candidates are collected in a read-only scan. Each one is then removed
// only if it is still stale under the map's per-key lock, so records that
// received spend since the scan survive.
func (r *Registry) Sweep() SweepResult {
	r.sweepMu.Lock()
	defer r.sweepMu.Unlock()

	start := time.Now()
	now := r.clock.Now()

	r.candidates = r.candidates[:0]
	r.records.Range(func(key recordKey, e *entry) bool {
		e.mu.Lock()
		stale := !e.evicted && e.record.IsStale(now)
		e.mu.Unlock()
		if stale {
			r.candidates = append(r.candidates, key)
		}
		return true
	})

	evicted := 0
	for _, key := range r.candidates {
		r.records.Compute(key, func(e *entry, loaded bool) (*entry, bool) {
			if !loaded {
				return e, true
			}
			e.mu.Lock()
			defer e.mu.Unlock()
			if !e.record.IsStale(now) {
				return e, false
			}
			e.evicted = true
			evicted++
			return e, true
		})
	}

	return SweepResult{
		Candidates: len(r.candidates),
		Evicted:    evicted,
		Remaining:  r.records.Size(),
		Duration:   time.Since(start),
	}
}

// LastMaintenance returns when the last maintenance pass completed. Before
// the first pass it returns the registry's creation time.
func (r *Registry) LastMaintenance() time.Time {
	return time.Unix(0, r.lastMaintenance.Load())
}

// CheckMaintenance returns an error if no maintenance pass completed within
// staleAfter. It backs the readiness probe.
func (r *Registry) CheckMaintenance(ctx context.Context, staleAfter time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	since := time.Since(r.LastMaintenance())
	if since > staleAfter {
		return fmt.Errorf("budget maintenance last ran %s ago (limit %s)", since.Round(time.Millisecond), staleAfter)
	}
	return nil
}
