package cache

import (
	"context"
	"time"
)

// Backoff describes how a transient backend failure is retried.
type Backoff struct {
	Attempts int           // total tries, including the first
	Initial  time.Duration // wait before the second try
	Max      time.Duration // cap on any single wait; zero means uncapped
}

// DefaultBackoff is used when connecting to remote cache backends.
var DefaultBackoff = Backoff{Attempts: 3, Initial: time.Second, Max: 5 * time.Second}

// delay returns the wait after the n-th failed try (n starts at 1).
func (b Backoff) delay(n int) time.Duration {
	d := b.Initial << (n - 1)
	if b.Max > 0 && (d > b.Max || d <= 0) {
		d = b.Max
	}
	return d
}

// Retry calls op until it succeeds, returns an error transient rejects, or
// b.Attempts tries are used up. The last error is returned. Waiting honours
// ctx and returns ctx.Err() when it ends first.
func (b Backoff) Retry(ctx context.Context, transient func(error) bool, op func() error) error {
	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for n := 1; ; n++ {
		if err = op(); err == nil || !transient(err) || n == attempts {
			return err
		}
		t := time.NewTimer(b.delay(n))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
