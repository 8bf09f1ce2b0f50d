package limits

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"mercator-hq/budgetd/pkg/limits/budget"
)

// ============================================================================
// Sweep Tests
// ============================================================================

func TestRegistry_SweepEvictsStaleRecords(t *testing.T) {
	obs := newRecordingObserver()
	reg, clock := newTestRegistry(t, WithObserver(obs))

	reg.RecordSpending("test", 1, 1)
	reg.RecordSpending("test", 2, 1)

	clock.Advance(5 * time.Second)
	if res := reg.Maintain(); res.Evicted != 0 {
		t.Errorf("Expected no evictions while in window, got %d", res.Evicted)
	}

	// Tenant 2 keeps spending.
	reg.RecordSpending("test", 2, 1)

	clock.Advance(time.Second)
	res := reg.Maintain()
	if res.Evicted != 1 || res.Remaining != 1 {
		t.Errorf("Expected 1 evicted and 1 remaining, got %+v", res)
	}
	if reg.Len() != 1 {
		t.Errorf("Expected 1 record, got %d", reg.Len())
	}
	if len(obs.sweeps) != 2 {
		t.Errorf("Expected 2 observed sweeps, got %d", len(obs.sweeps))
	}
}

func TestRegistry_SweepKeepsPendingDebounce(t *testing.T) {
	reg, clock := newTestRegistry(t)

	if !reg.RecordSpending("test", 1, 500) {
		t.Fatal("Expected 500 to exceed budget")
	}

	// Window is empty but the debounce holds until 10s.
	clock.Advance(8 * time.Second)
	if res := reg.Sweep(); res.Evicted != 0 {
		t.Error("Expected record with pending debounce to survive")
	}
	if !reg.ExceedsBudget("test", 1) {
		t.Error("Expected frozen decision to still report exceeding")
	}

	// Release at 10s arms a new debounce until 20s.
	clock.Advance(2 * time.Second)
	if reg.ExceedsBudget("test", 1) {
		t.Error("Expected decision to be released at 10s")
	}
	if res := reg.Sweep(); res.Evicted != 0 {
		t.Error("Expected record to survive the new debounce")
	}

	clock.Advance(10 * time.Second)
	if res := reg.Sweep(); res.Evicted != 1 {
		t.Errorf("Expected record to be evicted, got %+v", res)
	}
	if reg.ExceedsBudget("test", 1) {
		t.Error("Expected evicted tenant not to exceed")
	}
}

func TestRegistry_SpendAfterEvictionCreatesFreshRecord(t *testing.T) {
	reg, clock := newTestRegistry(t)

	reg.RecordSpending("test", 1, 1)
	old, _ := reg.records.Load(recordKey{policy: 0, tenant: 1})

	clock.Advance(time.Minute)
	reg.Sweep()

	old.mu.Lock()
	evicted := old.evicted
	old.mu.Unlock()
	if !evicted {
		t.Fatal("Expected swept entry to be marked evicted")
	}

	reg.RecordSpending("test", 1, 1)
	fresh, ok := reg.records.Load(recordKey{policy: 0, tenant: 1})
	if !ok {
		t.Fatal("Expected spend to recreate the record")
	}
	if fresh == old {
		t.Error("Expected a new entry after eviction")
	}
}

func TestRegistry_EvictedEntryStillMapped(t *testing.T) {
	reg, clock := newTestRegistry(t)
	key := recordKey{policy: 0, tenant: 1}

	if !reg.RecordSpending("test", 1, 500) {
		t.Fatal("Expected 500 to exceed budget")
	}

	// The sweeper has claimed the entry but not unlinked it yet.
	old, _ := reg.records.Load(key)
	old.mu.Lock()
	old.evicted = true
	old.mu.Unlock()

	if reg.ExceedsBudget("test", 1) {
		t.Error("Expected evicted entry to report not exceeding")
	}

	if reg.RecordSpending("test", 1, 50) {
		t.Error("Expected spend on a fresh record not to exceed")
	}

	fresh, ok := reg.records.Load(key)
	if !ok {
		t.Fatal("Expected spend to recreate the record")
	}
	if fresh == old {
		t.Fatal("Expected evicted entry to be replaced")
	}
	if got := fresh.record.Sum(clock.Now()); got != 50 {
		t.Errorf("Expected fresh record to hold 50, got %v", got)
	}
	if got := old.record.Sum(clock.Now()); got != 500 {
		t.Errorf("Expected evicted record to be left untouched, got %v", got)
	}
	if reg.Len() != 1 {
		t.Errorf("Expected 1 record, got %d", reg.Len())
	}
}

func TestRegistry_ConcurrentSpendAndSweep(t *testing.T) {
	clock := budget.NewManualClock(0)
	reg := NewRegistry(WithClock(clock))
	reg.AddPolicy("test", totalPolicy(1e9, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for ctx.Err() == nil {
				tenant := uint64(rng.Intn(64))
				if rng.Intn(2) == 0 {
					reg.RecordSpending("test", tenant, 1)
				} else {
					reg.ExceedsBudget("test", tenant)
				}
			}
		}(int64(i))
	}

	for i := 0; i < 200; i++ {
		clock.Advance(500 * time.Millisecond)
		reg.Sweep()
	}
	cancel()
	wg.Wait()

	// Nothing spends any more; everything becomes stale.
	clock.Advance(time.Minute)
	reg.Sweep()
	if reg.Len() != 0 {
		t.Errorf("Expected all records evicted, got %d", reg.Len())
	}
}

// ============================================================================
// Loop Tests
// ============================================================================

func TestRegistry_RunSweepsUntilCancelled(t *testing.T) {
	obs := newRecordingObserver()
	reg, clock := newTestRegistry(t, WithObserver(obs), WithMaintenanceInterval(5*time.Millisecond))

	reg.RecordSpending("test", 1, 1)
	clock.Advance(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for reg.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if reg.Len() != 0 {
		t.Error("Expected maintenance loop to evict the stale record")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected Run to return nil, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestRegistry_CheckMaintenance(t *testing.T) {
	reg, _ := newTestRegistry(t)

	if err := reg.CheckMaintenance(context.Background(), time.Minute); err != nil {
		t.Errorf("Expected fresh registry to be healthy, got %v", err)
	}

	reg.lastMaintenance.Store(time.Now().Add(-time.Hour).UnixNano())
	if err := reg.CheckMaintenance(context.Background(), time.Minute); err == nil {
		t.Error("Expected stale maintenance to be reported")
	}

	before := time.Now()
	reg.Maintain()
	if reg.LastMaintenance().Before(before) {
		t.Error("Expected Maintain to update the heartbeat")
	}
	if err := reg.CheckMaintenance(context.Background(), time.Minute); err != nil {
		t.Errorf("Expected healthy after maintenance, got %v", err)
	}
}

func TestRegistry_DefaultClockAdvancesOnMaintain(t *testing.T) {
	reg := NewRegistry()
	before := reg.Clock().Now()

	time.Sleep(2 * time.Millisecond)
	reg.Maintain()

	if reg.Clock().Now() <= before {
		t.Error("Expected maintenance to refresh the coarse clock")
	}
}
