package budget

import (
	"sync/atomic"
	"time"
)

// Instant is a point in time expressed as the duration elapsed since the
// epoch of the Clock that produced it. Instants from different clocks must
// not be compared.
type Instant int64

// Add returns the instant d after i.
func (i Instant) Add(d time.Duration) Instant {
	return i + Instant(d)
}

// Sub returns the duration i-j.
func (i Instant) Sub(j Instant) time.Duration {
	return time.Duration(i - j)
}

// Truncate rounds i down to a multiple of d since the clock epoch.
// If d <= 0, i is returned unchanged.
func (i Instant) Truncate(d time.Duration) Instant {
	if d <= 0 {
		return i
	}
	rem := i % Instant(d)
	if rem < 0 {
		rem += Instant(d)
	}
	return i - rem
}

// Duration returns the elapsed time between the clock epoch and i.
func (i Instant) Duration() time.Duration {
	return time.Duration(i)
}

func (i Instant) String() string {
	return time.Duration(i).String()
}

// Clock supplies the current Instant.
//
// Now must be cheap since it is read on every spend and query. Refresh
// advances the published time and is called periodically by a single
// maintenance goroutine.
type Clock interface {
	Now() Instant
	Refresh() Instant
}

// CoarseClock is a Clock whose published time only advances when Refresh is
// called. Reads never touch the system clock.
type CoarseClock struct {
	epoch  time.Time
	recent atomic.Int64
}

// NewCoarseClock creates a CoarseClock whose epoch is the current time.
func NewCoarseClock() *CoarseClock {
	return &CoarseClock{epoch: time.Now()}
}

// Now returns the most recently published time.
func (c *CoarseClock) Now() Instant {
	return Instant(c.recent.Load())
}

// Refresh reads the system monotonic clock and publishes it. The published
// time never moves backwards.
func (c *CoarseClock) Refresh() Instant {
	now := int64(time.Since(c.epoch))
	for {
		old := c.recent.Load()
		if now <= old {
			return Instant(old)
		}
		if c.recent.CompareAndSwap(old, now) {
			return Instant(now)
		}
	}
}

// ManualClock is a Clock that only moves when told to. It is intended for
// tests and simulations.
type ManualClock struct {
	now atomic.Int64
}

// NewManualClock creates a ManualClock positioned at start.
func NewManualClock(start time.Duration) *ManualClock {
	c := &ManualClock{}
	c.now.Store(int64(start))
	return c
}

func (c *ManualClock) Now() Instant {
	return Instant(c.now.Load())
}

// Refresh is a no-op for ManualClock and returns the current time.
func (c *ManualClock) Refresh() Instant {
	return c.Now()
}

// Advance moves the clock forward by d and returns the new time.
func (c *ManualClock) Advance(d time.Duration) Instant {
	return Instant(c.now.Add(int64(d)))
}

// Set positions the clock at i.
func (c *ManualClock) Set(i Instant) {
	c.now.Store(int64(i))
}
