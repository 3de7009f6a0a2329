package cli

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/observability"
)

// strategyTally is a pipeline hook that counts strategy attempts that
// failed and let the chain fall through, and tracks finished projects for
// the spinner.
type strategyTally struct {
	observability.NoopPipelineHooks

	done atomic.Int64

	mu     sync.Mutex
	failed map[string]int // "ecosystem/strategy" -> failed attempts
}

func newStrategyTally() *strategyTally {
	return &strategyTally{failed: make(map[string]int)}
}

func (t *strategyTally) OnStrategy(_ context.Context, ecosystem, _ string, strategy, outcome string, _ time.Duration) {
	if outcome != deps.KindFailure.String() {
		return
	}
	t.mu.Lock()
	t.failed[ecosystem+"/"+strategy]++
	t.mu.Unlock()
}

func (t *strategyTally) OnProjectComplete(context.Context, string, string, string, int, time.Duration, error) {
	t.done.Add(1)
}

// completed returns how many projects have finished.
func (t *strategyTally) completed() int {
	return int(t.done.Load())
}

// fallbacks renders the failed-attempt counts, most frequent first.
func (t *strategyTally) fallbacks() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return formatCounts(t.failed)
}
