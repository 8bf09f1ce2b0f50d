package budget

import "time"

type latchState uint8

const (
	latchStable latchState = iota
	latchFrozen
)

// latch holds the last budget decision and freezes it for the debounce
// period after every change.
type latch struct {
	state    latchState
	exceeds  bool
	deadline Instant
}

// held reports whether the decision is frozen at now. An expired freeze is
// released as a side effect.
func (l *latch) held(now Instant) bool {
	if l.state != latchFrozen {
		return false
	}
	if l.deadline > now {
		return true
	}
	l.state = latchStable
	return false
}

// set stores a freshly computed decision. A change arms the debounce and is
// reported to the caller.
func (l *latch) set(exceeds bool, now Instant, debounce time.Duration) bool {
	if exceeds == l.exceeds {
		return false
	}
	l.exceeds = exceeds
	l.state = latchFrozen
	l.deadline = now.Add(debounce)
	return true
}

// pending reports whether a debounce deadline is still outstanding at now
// without releasing it.
func (l *latch) pending(now Instant) bool {
	return l.state == latchFrozen && l.deadline > now
}
