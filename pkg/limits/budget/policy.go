package budget

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Normalization selects how the in-window sum is compared with the allowed
// budget.
type Normalization int

const (
	// NormalizeRate divides the in-window sum by the effective window in
	// seconds. The allowed budget is a spend rate per second.
	NormalizeRate Normalization = iota

	// NormalizeTotal compares the raw in-window sum with the allowed budget.
	NormalizeTotal
)

func (n Normalization) String() string {
	switch n {
	case NormalizeRate:
		return "rate"
	case NormalizeTotal:
		return "total"
	default:
		return fmt.Sprintf("normalization(%d)", int(n))
	}
}

// ParseNormalization parses "rate" or "total". The empty string selects
// NormalizeRate.
func ParseNormalization(s string) (Normalization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rate":
		return NormalizeRate, nil
	case "total":
		return NormalizeTotal, nil
	default:
		return NormalizeRate, &PolicyError{
			Field:   "normalization",
			Message: fmt.Sprintf("unknown mode %q (expected rate or total)", s),
		}
	}
}

// Config holds the parameters of a budgeting policy.
type Config struct {
	// Debounce is how long a decision stays frozen after it flips.
	Debounce time.Duration

	// Window is the length of the sliding window.
	Window time.Duration

	// Bucket is the width of a single bucket. Window must be a positive
	// multiple of Bucket.
	Bucket time.Duration

	// AllowedBudget is the threshold the normalized sum must exceed for a
	// tenant to be over budget.
	AllowedBudget float64

	// Normalization selects rate or total comparison.
	Normalization Normalization
}

// Policy is an immutable, validated budgeting policy.
type Policy struct {
	debounce      time.Duration
	window        time.Duration
	bucket        time.Duration
	buckets       int
	allowed       float64
	normalization Normalization
}

// NewPolicy validates cfg and returns the resulting Policy.
func NewPolicy(cfg Config) (*Policy, error) {
	if cfg.Bucket <= 0 {
		return nil, &PolicyError{Field: "bucket", Message: "must be positive"}
	}
	if cfg.Window <= 0 {
		return nil, &PolicyError{Field: "window", Message: "must be positive"}
	}
	if cfg.Window < cfg.Bucket {
		return nil, &PolicyError{
			Field:   "window",
			Message: fmt.Sprintf("%s is shorter than bucket %s", cfg.Window, cfg.Bucket),
		}
	}
	if cfg.Window%cfg.Bucket != 0 {
		return nil, &PolicyError{
			Field:   "window",
			Message: fmt.Sprintf("%s is not a multiple of bucket %s", cfg.Window, cfg.Bucket),
		}
	}
	if cfg.Debounce < 0 {
		return nil, &PolicyError{Field: "debounce", Message: "must not be negative"}
	}
	if math.IsNaN(cfg.AllowedBudget) || math.IsInf(cfg.AllowedBudget, 0) || cfg.AllowedBudget < 0 {
		return nil, &PolicyError{Field: "allowed_budget", Message: "must be a finite, non-negative number"}
	}
	if cfg.Normalization != NormalizeRate && cfg.Normalization != NormalizeTotal {
		return nil, &PolicyError{Field: "normalization", Message: cfg.Normalization.String()}
	}

	return &Policy{
		debounce:      cfg.Debounce,
		window:        cfg.Window,
		bucket:        cfg.Bucket,
		buckets:       int(cfg.Window / cfg.Bucket),
		allowed:       cfg.AllowedBudget,
		normalization: cfg.Normalization,
	}, nil
}

// MustPolicy is like NewPolicy but panics on an invalid configuration.
// It is meant for static defaults and tests.
func MustPolicy(cfg Config) *Policy {
	p, err := NewPolicy(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

// Debounce returns how long a decision stays frozen after it flips.
func (p *Policy) Debounce() time.Duration { return p.debounce }

// Window returns the sliding window length.
func (p *Policy) Window() time.Duration { return p.window }

// BucketWidth returns the width of a single bucket.
func (p *Policy) BucketWidth() time.Duration { return p.bucket }

// BucketCount returns the number of buckets a Record retains.
func (p *Policy) BucketCount() int { return p.buckets }

// AllowedBudget returns the budget threshold.
func (p *Policy) AllowedBudget() float64 { return p.allowed }

// Normalization returns the comparison mode.
func (p *Policy) Normalization() Normalization { return p.normalization }

// Truncate aligns now to the start of its bucket.
func (p *Policy) Truncate(now Instant) Instant { return now.Truncate(p.bucket) }

// windowStart is the oldest bucket start still inside the window at now.
func (p *Policy) windowStart(now Instant) Instant {
	return p.Truncate(now).Add(-p.window)
}

// EffectiveWindow returns the span the in-window sum covers at now: the full
// buckets behind the current one plus the elapsed part of the current bucket.
// Exactly on a bucket boundary the current bucket contributes nothing, so
// the result is window minus one bucket rather than the full window; this
// keeps the rate continuous across the boundary. It never returns less than
// one bucket width.
func (p *Policy) EffectiveWindow(now Instant) time.Duration {
	w := p.window - p.bucket + now.Sub(p.Truncate(now))
	if w <= 0 {
		return p.bucket
	}
	return w
}

// Normalize converts an in-window sum into the value compared with the
// allowed budget.
func (p *Policy) Normalize(sum float64, now Instant) float64 {
	if p.normalization == NormalizeTotal {
		return sum
	}
	return sum / p.EffectiveWindow(now).Seconds()
}

// Exceeded reports whether sum, observed at now, is strictly above the
// allowed budget.
func (p *Policy) Exceeded(sum float64, now Instant) bool {
	return p.Normalize(sum, now) > p.allowed
}

func (p *Policy) String() string {
	return fmt.Sprintf("window=%s bucket=%s budget=%g debounce=%s normalization=%s",
		p.window, p.bucket, p.allowed, p.debounce, p.normalization)
}
