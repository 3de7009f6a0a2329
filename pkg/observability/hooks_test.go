package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	NoopPipelineHooks
	NoopCacheHooks
	NoopCommandHooks

	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) OnStrategy(_ context.Context, eco, _, strategy, outcome string, _ time.Duration) {
	r.add(eco + "/" + strategy + "=" + outcome)
}

func (r *recorder) OnCacheMiss(_ context.Context, keyType string) { r.add("miss:" + keyType) }

func (r *recorder) OnCommandComplete(_ context.Context, name string, code int, _ time.Duration, err error) {
	if err != nil {
		r.add(name + ":error")
		return
	}
	r.add(name + ":ok")
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// Must be callable before anything is registered.
	Pipeline().OnScanStart(ctx, "/repo")
	Pipeline().OnProjectComplete(ctx, "maven", "api/pom.xml", "", 0, time.Second, errors.New("boom"))
	Cache().OnCacheSet(ctx, "result", 512)
	Command().OnCommandStart(ctx, "mvn", "/repo/api")

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T", Cache())
	}
	if _, ok := Command().(NoopCommandHooks); !ok {
		t.Errorf("Command() = %T", Command())
	}
}

func TestRegisteredHooksReceiveEvents(t *testing.T) {
	t.Cleanup(Reset)
	r := &recorder{}
	SetPipelineHooks(r)
	SetCacheHooks(r)
	SetCommandHooks(r)

	ctx := context.Background()
	Pipeline().OnStrategy(ctx, "npm", "web/package.json", "lockfile", "success", time.Millisecond)
	Cache().OnCacheMiss(ctx, "result")
	Cache().OnCacheHit(ctx, "result") // not overridden
	Command().OnCommandComplete(ctx, "npm", 0, time.Second, nil)
	Command().OnCommandComplete(ctx, "mvn", -1, time.Second, errors.New("timeout"))

	want := []string{"npm/lockfile=success", "miss:result", "npm:ok", "mvn:error"}
	if len(r.events) != len(want) {
		t.Fatalf("events = %v, want %v", r.events, want)
	}
	for i := range want {
		if r.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, r.events[i], want[i])
		}
	}
}

func TestNilRegistrationKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)
	r := &recorder{}
	SetPipelineHooks(r)
	SetPipelineHooks(nil)
	SetCacheHooks(nil)

	if Pipeline() != r {
		t.Errorf("Pipeline() = %T, want recorder", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want default", Cache())
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("after Reset Pipeline() = %T", Pipeline())
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Cleanup(Reset)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				SetCommandHooks(&recorder{})
				return
			}
			Command().OnCommandStart(context.Background(), "go", "/repo")
		}(i)
	}
	wg.Wait()
}
