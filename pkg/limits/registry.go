package limits

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"mercator-hq/budgetd/pkg/limits/budget"
)

// Registry maps (policy, tenant) pairs to accounting records.
//
// Policies are registered with AddPolicy before the registry is shared.
// After that, RecordSpending, ExceedsBudget and the maintenance loop may run
// concurrently from any number of goroutines.
type Registry struct {
	clock    budget.Clock
	observer Observer
	logger   *slog.Logger
	interval time.Duration

	// Policy table, in registration order.
	policies []registeredPolicy
	index    map[string]int

	records *xsync.MapOf[recordKey, *entry]

	// sweepMu serializes sweeps and guards the candidate buffer.
	sweepMu    sync.Mutex
	candidates []recordKey

	lastMaintenance atomic.Int64
}

type registeredPolicy struct {
	name   string
	policy *budget.Policy
	create func() *entry
}

type recordKey struct {
	policy int
	tenant uint64
}

// entry guards one record. An evicted entry has been removed from the map;
// writers that still hold it must look the key up again.
type entry struct {
	mu      sync.Mutex
	record  *budget.Record
	evicted bool
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		observer: NoopObserver{},
		logger:   slog.Default(),
		interval: DefaultMaintenanceInterval,
		index:    make(map[string]int),
		records:  xsync.NewMapOf[recordKey, *entry](),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		clock := budget.NewCoarseClock()
		clock.Refresh()
		r.clock = clock
	}
	r.lastMaintenance.Store(time.Now().UnixNano())
	return r
}

// AddPolicy registers policy under name. Registering the same name twice is
// a programming error and panics.
func (r *Registry) AddPolicy(name string, policy *budget.Policy) {
	if _, exists := r.index[name]; exists {
		panic(fmt.Sprintf("limits: budget policy %q registered twice", name))
	}
	if policy == nil {
		panic(fmt.Sprintf("limits: budget policy %q is nil", name))
	}
	r.index[name] = len(r.policies)
	r.policies = append(r.policies, registeredPolicy{
		name:   name,
		policy: policy,
		create: func() *entry {
			return &entry{record: budget.NewRecord(policy)}
		},
	})
}

// Policy returns the policy registered under name.
func (r *Registry) Policy(name string) (*budget.Policy, bool) {
	idx, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.policies[idx].policy, true
}

// Policies returns the registered policy names in registration order.
func (r *Registry) Policies() []string {
	names := make([]string, len(r.policies))
	for i, p := range r.policies {
		names[i] = p.name
	}
	return names
}

// Clock returns the clock the registry reads.
func (r *Registry) Clock() budget.Clock {
	return r.clock
}

// RecordSpending adds amount to the tenant's record under the named policy,
// creating the record if needed, and reports whether the tenant exceeds its
// budget. Unknown policies are ignored and report false.
func (r *Registry) RecordSpending(policyName string, tenant uint64, amount float64) bool {
	idx, ok := r.index[policyName]
	if !ok {
		r.observer.UnknownPolicy(OpRecordSpending)
		return false
	}

	p := &r.policies[idx]
	key := recordKey{policy: idx, tenant: tenant}
	for {
		e, _ := r.records.LoadOrCompute(key, p.create)

		e.mu.Lock()
		if e.evicted {
			// Lost a race with the sweeper. The key may not have been
			// unlinked yet, so drop it here before looking it up again.
			e.mu.Unlock()
			r.unlink(key, e)
			continue
		}
		d := e.record.RecordSpend(amount, r.clock.Now())
		e.mu.Unlock()

		r.decided(p.name, OpRecordSpending, tenant, d)
		return d.Exceeds
	}
}

// unlink removes key from the map if it still maps to e.
func (r *Registry) unlink(key recordKey, e *entry) {
	r.records.Compute(key, func(cur *entry, loaded bool) (*entry, bool) {
		return cur, loaded && cur == e
	})
}

// ExceedsBudget reports whether the tenant exceeds its budget under the
// named policy. It never creates a record: tenants without one report false,
// as do unknown policies.
func (r *Registry) ExceedsBudget(policyName string, tenant uint64) bool {
	idx, ok := r.index[policyName]
	if !ok {
		r.observer.UnknownPolicy(OpExceedsBudget)
		return false
	}

	name := r.policies[idx].name
	e, ok := r.records.Load(recordKey{policy: idx, tenant: tenant})
	if !ok {
		r.observer.Decision(name, OpExceedsBudget, false, false)
		return false
	}

	e.mu.Lock()
	if e.evicted {
		e.mu.Unlock()
		r.observer.Decision(name, OpExceedsBudget, false, false)
		return false
	}
	d := e.record.CheckBudget(r.clock.Now())
	e.mu.Unlock()

	r.decided(name, OpExceedsBudget, tenant, d)
	return d.Exceeds
}

func (r *Registry) decided(policy string, op Operation, tenant uint64, d budget.Decision) {
	r.observer.Decision(policy, op, d.Exceeds, d.Changed)
	if d.Changed {
		r.logger.Debug("budget decision changed",
			slog.String("policy", policy),
			slog.Uint64("tenant", tenant),
			slog.Bool("exceeds", d.Exceeds),
			slog.String("operation", string(op)),
		)
	}
}

// Len returns the number of live records across all policies.
func (r *Registry) Len() int {
	return r.records.Size()
}

// Stats summarizes the live records of every policy, in registration order.
// Decisions are read as last computed and are not re-evaluated.
func (r *Registry) Stats() []PolicyStats {
	stats := make([]PolicyStats, len(r.policies))
	for i, p := range r.policies {
		stats[i].Name = p.name
	}

	r.records.Range(func(key recordKey, e *entry) bool {
		e.mu.Lock()
		live, exceeds := !e.evicted, e.record.Exceeds()
		e.mu.Unlock()

		if live {
			stats[key.policy].Tracked++
			if exceeds {
				stats[key.policy].Exceeding++
			}
		}
		return true
	})
	return stats
}
