package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer written by Run and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgress_ConcurrentAdd(t *testing.T) {
	buf := &syncBuffer{}
	p := NewProgress(buf, 8000)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				p.Add(1)
			}
		}()
	}
	wg.Wait()
	p.Finish()

	if p.Done() != 8000 {
		t.Errorf("Done() = %d, want 8000", p.Done())
	}
	if !strings.Contains(buf.String(), "(8000/8000)") {
		t.Errorf("expected final count in output, got %q", buf.String())
	}
}

func TestProgress_RunRendersUntilFinish(t *testing.T) {
	buf := &syncBuffer{}
	p := NewProgress(buf, 10)

	done := make(chan struct{})
	go func() {
		p.Run(context.Background(), time.Millisecond)
		close(done)
	}()

	p.Add(5)
	time.Sleep(20 * time.Millisecond)
	p.Finish()
	p.Finish()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Finish")
	}

	out := buf.String()
	if !strings.Contains(out, "Progress:") {
		t.Errorf("expected progress output, got %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected a single trailing newline, got %q", out)
	}
}

func TestProgress_ZeroTotal(t *testing.T) {
	buf := &syncBuffer{}
	p := NewProgress(buf, 0)
	p.Add(3)
	p.Finish()

	if strings.Contains(buf.String(), "Progress:") {
		t.Errorf("expected no bar for zero total, got %q", buf.String())
	}
}
