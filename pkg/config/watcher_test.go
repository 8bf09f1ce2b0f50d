package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func waitForStatus(t *testing.T, w *Watcher, cond func(WatchStatus) bool) WatchStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s := w.Status(); cond(s) {
			return s
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("watcher did not reach expected state, last status %+v", w.Status())
	return WatchStatus{}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	path := writeConfig(t, "")
	current, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	w := NewWatcher(path, current, 10*time.Millisecond, nil)
	w.load = LoadConfig

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	select {
	case <-w.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not become ready")
	}

	changed := `
budget:
  policies:
    - name: "uploads"
      window: "30s"
      bucket: "5s"
      allowed_budget: 3
`
	if err := os.WriteFile(path, []byte(changed), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	status := waitForStatus(t, w, func(s WatchStatus) bool { return len(s.PendingSections) > 0 })
	if status.PendingSections[0] != "budget" {
		t.Errorf("expected budget section to be pending, got %v", status.PendingSections)
	}
	if err := w.Check(context.Background()); err != nil {
		t.Errorf("expected valid change to keep the check healthy, got %v", err)
	}

	if err := os.WriteFile(path, []byte("budget: {maintenance_interval: -1s}"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	waitForStatus(t, w, func(s WatchStatus) bool { return s.LastError != nil })
	if err := w.Check(context.Background()); err == nil {
		t.Error("expected invalid configuration to fail the check")
	}
}

func TestChangedSections(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()

	if got := ChangedSections(a, b); len(got) != 0 {
		t.Errorf("expected no changes, got %v", got)
	}

	b.Server.HTTP.ListenAddress = "127.0.0.1:1"
	b.Telemetry.Logging.Level = "debug"

	got := ChangedSections(a, b)
	if len(got) != 2 || got[0] != "server" || got[1] != "telemetry" {
		t.Errorf("expected [server telemetry], got %v", got)
	}
}
