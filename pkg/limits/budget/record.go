package budget

import "math"

// bucket is the aggregated spend of one bucket-width interval.
type bucket struct {
	start Instant
	spent float64
}

// Decision is the outcome of evaluating a Record.
type Decision struct {
	// Exceeds is the current, possibly frozen, decision.
	Exceeds bool

	// Changed is set when this evaluation flipped the decision and armed
	// a new debounce period.
	Changed bool
}

// Record accumulates the spending of one tenant under one Policy.
//
// Buckets are stored newest first in a ring sized for BucketCount entries,
// so recording never allocates. Record is not safe for concurrent use.
type Record struct {
	policy *Policy
	latch  latch

	ring []bucket
	head int // index of the newest bucket
	size int
}

// NewRecord creates an empty Record governed by policy.
func NewRecord(policy *Policy) *Record {
	return &Record{
		policy: policy,
		ring:   make([]bucket, policy.BucketCount()),
	}
}

// RecordSpend adds amount to the bucket containing now and returns the
// resulting decision. Non-finite amounts are ignored but the budget is still
// evaluated.
func (r *Record) RecordSpend(amount float64, now Instant) Decision {
	if !math.IsNaN(amount) && !math.IsInf(amount, 0) {
		r.add(amount, r.policy.Truncate(now))
	}
	return r.CheckBudget(now)
}

func (r *Record) add(amount float64, start Instant) {
	if r.size > 0 {
		newest := &r.ring[r.head]
		if newest.start >= start {
			newest.spent += amount
			return
		}
	}

	// Push a new newest bucket. When the ring is full the slot taken is
	// the oldest bucket, which evicts it.
	r.head--
	if r.head < 0 {
		r.head = len(r.ring) - 1
	}
	r.ring[r.head] = bucket{start: start, spent: amount}
	if r.size < len(r.ring) {
		r.size++
	}
}

// CheckBudget evaluates the record at now. While the debounce period armed
// by the last change is running, the frozen decision is returned.
func (r *Record) CheckBudget(now Instant) Decision {
	if r.latch.held(now) {
		return Decision{Exceeds: r.latch.exceeds}
	}
	exceeds := r.policy.Exceeded(r.Sum(now), now)
	changed := r.latch.set(exceeds, now, r.policy.Debounce())
	return Decision{Exceeds: exceeds, Changed: changed}
}

// Sum returns the total spend of buckets that start within the window
// ending at now.
func (r *Record) Sum(now Instant) float64 {
	cutoff := r.policy.windowStart(now)
	var sum float64
	for i := 0; i < r.size; i++ {
		b := r.ring[(r.head+i)%len(r.ring)]
		if b.start < cutoff {
			// Older buckets follow.
			break
		}
		sum += b.spent
	}
	return sum
}

// Rate returns the in-window sum normalized by the policy at now.
func (r *Record) Rate(now Instant) float64 {
	return r.policy.Normalize(r.Sum(now), now)
}

// Exceeds returns the last computed decision without re-evaluating it.
func (r *Record) Exceeds() bool {
	return r.latch.exceeds
}

// IsStale reports whether the record can be discarded without changing any
// future answer: no debounce is pending and every bucket is older than the
// window.
func (r *Record) IsStale(now Instant) bool {
	if r.latch.pending(now) {
		return false
	}
	if r.size == 0 {
		return true
	}
	return r.ring[r.head].start < r.policy.windowStart(now)
}

// Len returns the number of buckets currently retained.
func (r *Record) Len() int {
	return r.size
}
