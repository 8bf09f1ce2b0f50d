package limits

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObservesRegistry(t *testing.T) {
	promReg := prometheus.NewRegistry()
	m := NewMetrics(promReg, "budgetd")
	reg, clock := newTestRegistry(t, WithObserver(m))

	reg.RecordSpending("test", 1, 50)
	reg.RecordSpending("test", 1, 60)
	reg.ExceedsBudget("test", 1)
	reg.ExceedsBudget("test", 2)
	reg.ExceedsBudget("unknown", 1)

	if got := testutil.ToFloat64(m.decisions.WithLabelValues("test", "record_spending", "within")); got != 1 {
		t.Errorf("Expected 1 within spend decision, got %v", got)
	}
	if got := testutil.ToFloat64(m.decisions.WithLabelValues("test", "record_spending", "exceeds")); got != 1 {
		t.Errorf("Expected 1 exceeding spend decision, got %v", got)
	}
	if got := testutil.ToFloat64(m.decisions.WithLabelValues("test", "exceeds_budget", "exceeds")); got != 1 {
		t.Errorf("Expected 1 exceeding query decision, got %v", got)
	}
	if got := testutil.ToFloat64(m.decisions.WithLabelValues("test", "exceeds_budget", "within")); got != 1 {
		t.Errorf("Expected 1 within query decision, got %v", got)
	}
	if got := testutil.ToFloat64(m.changes.WithLabelValues("test", "exceeds")); got != 1 {
		t.Errorf("Expected 1 decision change, got %v", got)
	}
	if got := testutil.ToFloat64(m.unknownPolicy.WithLabelValues("exceeds_budget")); got != 1 {
		t.Errorf("Expected 1 unknown policy lookup, got %v", got)
	}

	clock.Advance(time.Minute)
	reg.Maintain()

	if got := testutil.ToFloat64(m.evictions); got != 1 {
		t.Errorf("Expected 1 eviction, got %v", got)
	}
	if got := testutil.ToFloat64(m.records); got != 0 {
		t.Errorf("Expected 0 records, got %v", got)
	}
	if got := testutil.CollectAndCount(m.sweepDuration); got != 1 {
		t.Errorf("Expected sweep histogram to be collected, got %d", got)
	}
}

func TestMetrics_Reported(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "budgetd")

	m.Reported([]PolicyStats{
		{Name: "a", Tracked: 10, Exceeding: 2},
		{Name: "b", Tracked: 3},
	})

	if got := testutil.ToFloat64(m.tracked.WithLabelValues("a")); got != 10 {
		t.Errorf("Expected 10 tracked for a, got %v", got)
	}
	if got := testutil.ToFloat64(m.exceeding.WithLabelValues("a")); got != 2 {
		t.Errorf("Expected 2 exceeding for a, got %v", got)
	}
	if got := testutil.ToFloat64(m.exceeding.WithLabelValues("b")); got != 0 {
		t.Errorf("Expected 0 exceeding for b, got %v", got)
	}
}

func TestNoopObserver(t *testing.T) {
	var o Observer = NoopObserver{}
	o.Decision("p", OpRecordSpending, true, true)
	o.UnknownPolicy(OpExceedsBudget)
	o.Swept(SweepResult{})
	o.Reported(nil)
}
