package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Progress counts completed operations from many goroutines and renders a
// throughput line.
type Progress struct {
	writer  io.Writer
	total   int64
	done    atomic.Int64
	started time.Time

	mu       sync.Mutex
	finished bool
}

// NewProgress creates a progress reporter for total operations that writes
// to w. If w is nil, it defaults to os.Stderr.
func NewProgress(w io.Writer, total int64) *Progress {
	if w == nil {
		w = os.Stderr
	}
	return &Progress{
		writer:  w,
		total:   total,
		started: time.Now(),
	}
}

// Add records n completed operations.
func (p *Progress) Add(n int64) {
	p.done.Add(n)
}

// Done returns the number of completed operations.
func (p *Progress) Done() int64 {
	return p.done.Load()
}

// Rate returns completed operations per second since creation.
func (p *Progress) Rate() float64 {
	elapsed := time.Since(p.started).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(p.done.Load()) / elapsed
}

// Run renders every interval until ctx is cancelled or Finish is called.
func (p *Progress) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.finished {
				p.mu.Unlock()
				return
			}
			p.render()
			p.mu.Unlock()
		}
	}
}

// Finish renders the final line. Further calls are no-ops.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished {
		return
	}
	p.finished = true
	p.render()
	fmt.Fprintln(p.writer)
}

func (p *Progress) render() {
	if p.total <= 0 {
		return
	}

	done := p.done.Load()
	if done > p.total {
		done = p.total
	}
	percent := float64(done) / float64(p.total) * 100
	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(p.writer, "\rProgress: [%s] %.1f%% (%d/%d) %.0f ops/s",
		bar, percent, done, p.total, p.Rate())
}
