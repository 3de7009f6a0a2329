package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer shared with the progress goroutine.
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

func TestProgressLine(t *testing.T) {
	var out syncBuffer
	n := 0
	var mu sync.Mutex
	stop := progressLine(context.Background(), &out, func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "Scanning /repo"
	})
	time.Sleep(5 * spinnerInterval)
	stop()
	stop()

	got := out.String()
	if !strings.Contains(got, "Scanning /repo") {
		t.Errorf("output = %q, want status", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("line not erased on stop: %q", got)
	}

	mu.Lock()
	calls := n
	mu.Unlock()
	time.Sleep(3 * spinnerInterval)
	mu.Lock()
	defer mu.Unlock()
	if n != calls {
		t.Errorf("status polled after stop: %d -> %d", calls, n)
	}
}

func TestProgressLineContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	stop := progressLine(ctx, &out, func() string { return "x" })
	cancel()

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop blocked after context cancellation")
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
