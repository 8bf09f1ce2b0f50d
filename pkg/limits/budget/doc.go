// Package budget implements per-tenant spend accounting over a bucketed
// sliding window.
//
// # Overview
//
// A Policy describes how spending is judged: the sliding window length, the
// bucket width the window is divided into, the allowed budget, and the
// debounce period that freezes a decision after it changes. A Record holds
// the spending history of a single tenant under a single policy and answers
// whether that tenant currently exceeds the budget.
//
// # Buckets
//
// Spending is aggregated into buckets aligned to multiples of the bucket
// width since the clock epoch. A Record keeps at most BucketCount buckets,
// newest first, so memory per tenant is bounded no matter how often the
// tenant spends:
//
//	policy, err := budget.NewPolicy(budget.Config{
//	    Debounce:      5 * time.Minute,
//	    Window:        2 * time.Minute,
//	    Bucket:        10 * time.Second,
//	    AllowedBudget: 5.0,
//	})
//
//	rec := budget.NewRecord(policy)
//	decision := rec.RecordSpend(1.5, clock.Now())
//	if decision.Exceeds {
//	    // throttle the tenant
//	}
//
// # Normalization
//
// With the default NormalizeRate, the in-window sum is divided by the
// effective window in seconds before it is compared with the allowed budget,
// so the budget is a spend rate per second. NormalizeTotal compares the raw
// in-window sum instead.
//
// # Debounce
//
// Whenever the decision flips, it is frozen until the debounce period has
// elapsed. Spending is still recorded while frozen; the accumulated history
// is evaluated once the freeze expires.
//
// # Clocks
//
// All times are Instants read from a Clock. CoarseClock publishes a refreshed
// time that many goroutines read with a single atomic load. ManualClock is
// driven by tests.
//
// # Thread Safety
//
// Policy and the clocks are safe for concurrent use. Record is not; callers
// serialize access to each Record.
package budget
