package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the configuration file and reports changes. Budget
// policies are registered once at startup, so a change is validated and
// logged but only takes effect after a restart.
type Watcher struct {
	path     string
	current  *Config
	debounce time.Duration
	logger   *slog.Logger
	load     func(string) (*Config, error)

	ready chan struct{}

	mu      sync.Mutex
	reloads int
	pending []string
	lastErr error
}

// WatchStatus is a snapshot of what the watcher has observed.
type WatchStatus struct {
	// Reloads counts how many times the file was re-read.
	Reloads int

	// PendingSections lists the top-level sections that differ from the
	// running configuration.
	PendingSections []string

	// LastError is the error from the most recent reload, if any.
	LastError error
}

// NewWatcher creates a watcher for the configuration at path. current is the
// configuration the process is running with.
func NewWatcher(path string, current *Config, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		current:  current,
		debounce: debounce,
		logger:   logger.With("component", "config.watcher"),
		load:     LoadConfigWithEnvOverrides,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the watcher is receiving file events.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches the file until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}
	close(w.ready)

	w.logger.Info("configuration watcher started",
		"path", w.path,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	target := filepath.Clean(w.path)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("configuration watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target || event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			w.logger.Debug("configuration file event", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("configuration watcher error", "error", err)
		}
	}
}

// reload re-reads the file and records the outcome.
func (w *Watcher) reload() {
	cfg, err := w.load(w.path)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.reloads++
	w.lastErr = err
	if err != nil {
		w.logger.Error("configuration file is invalid", "path", w.path, "error", err)
		return
	}

	w.pending = ChangedSections(w.current, cfg)
	if len(w.pending) == 0 {
		w.logger.Info("configuration file unchanged", "path", w.path)
		return
	}
	w.logger.Warn("configuration changed on disk, restart required to apply",
		"path", w.path,
		"sections", w.pending,
	)
}

// Status returns what the watcher has observed so far.
func (w *Watcher) Status() WatchStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	return WatchStatus{
		Reloads:         w.reloads,
		PendingSections: append([]string(nil), w.pending...),
		LastError:       w.lastErr,
	}
}

// Check reports an error when the configuration on disk no longer loads.
func (w *Watcher) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.Status().LastError; err != nil {
		return fmt.Errorf("configuration on disk is invalid: %w", err)
	}
	return nil
}

// ChangedSections returns the top-level sections that differ between a and b.
func ChangedSections(a, b *Config) []string {
	var changed []string
	if !reflect.DeepEqual(a.Server, b.Server) {
		changed = append(changed, "server")
	}
	if !reflect.DeepEqual(a.Budget, b.Budget) {
		changed = append(changed, "budget")
	}
	if !reflect.DeepEqual(a.Telemetry, b.Telemetry) {
		changed = append(changed, "telemetry")
	}
	if !reflect.DeepEqual(a.Watch, b.Watch) {
		changed = append(changed, "watch")
	}
	return changed
}
