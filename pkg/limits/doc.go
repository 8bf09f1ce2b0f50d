// Package limits tracks spending budgets for many tenants under a set of
// named policies.
//
// # Overview
//
// A Registry owns the configured policies, a shared coarse clock and one
// accounting record per (policy, tenant) pair. Two entry points are exposed:
//
//   - RecordSpending adds spend for a tenant and creates its record on demand
//   - ExceedsBudget answers whether a tenant is over budget and never creates
//     a record
//
// Both return false for policy names that are not registered.
//
// # Usage
//
//	reg := limits.NewRegistry(limits.WithLogger(logger))
//	reg.AddPolicy("symbolication-native", budget.MustPolicy(budget.Config{
//	    Debounce:      5 * time.Minute,
//	    Window:        2 * time.Minute,
//	    Bucket:        10 * time.Second,
//	    AllowedBudget: 5.0,
//	}))
//
//	go reg.Run(ctx)
//
//	if reg.RecordSpending("symbolication-native", projectID, elapsed.Seconds()) {
//	    // throttle the project
//	}
//
// # Maintenance
//
// Run refreshes the coarse clock and evicts stale records on every tick of
// the maintenance interval. Eviction scans for candidates first and then
// removes each one only if it is still stale, so a tenant that spends
// between the two phases keeps its record.
//
// # Observability
//
// Decisions, decision changes, unknown policy lookups and sweeps are
// reported to an Observer. Metrics implements Observer on top of Prometheus;
// the default observer discards everything.
//
// # Performance
//
// Records live in a sharded concurrent map. Each record has its own mutex,
// so contention is limited to callers touching the same tenant. Reading the
// clock is a single atomic load.
package limits
