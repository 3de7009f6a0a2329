package deps

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/depscan/pkg/errors"
)

type fakeExtractor struct {
	delay time.Duration
	deps  []Dependency
}

func (f fakeExtractor) Ecosystem() Ecosystem      { return NPM }
func (f fakeExtractor) Inputs(p Project) []string { return []string{p.ManifestPath()} }
func (f fakeExtractor) Extract(ctx context.Context, p Project) Result {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return Result{Project: p, Dependencies: []Dependency{}, Outcome: KindFailure}
	}
	return Result{Project: p, Dependencies: f.deps, Strategy: "fake"}
}

type panicExtractor struct{ fakeExtractor }

func (panicExtractor) Extract(context.Context, Project) Result { panic("boom") }

func TestExtractWithTimeout(t *testing.T) {
	p := NewProject(NPM, "/r", "package.json")

	t.Run("completes", func(t *testing.T) {
		ex := fakeExtractor{deps: []Dependency{dep("a", "1")}}
		res, err := ExtractWithTimeout(context.Background(), ex, p, time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Dependencies) != 1 {
			t.Errorf("Dependencies = %+v", res.Dependencies)
		}
	})

	t.Run("times out", func(t *testing.T) {
		ex := fakeExtractor{delay: 10 * time.Second}
		start := time.Now()
		res, err := ExtractWithTimeout(context.Background(), ex, p, 50*time.Millisecond)
		if !errors.Is(err, errors.ErrCodeTimeout) {
			t.Fatalf("err = %v, want TIMEOUT", err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("returned after %s", elapsed)
		}
		if res.Dependencies == nil || !res.Empty() {
			t.Errorf("Dependencies = %#v, want empty", res.Dependencies)
		}
	})

	t.Run("panic", func(t *testing.T) {
		for _, d := range []time.Duration{0, time.Second} {
			res, err := ExtractWithTimeout(context.Background(), panicExtractor{}, p, d)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.Failed() || !errors.Is(res.LastErr(), errors.ErrCodeInternal) {
				t.Errorf("bound %s: result = %+v, want INTERNAL_ERROR failure", d, res)
			}
		}
	})

	t.Run("no bound", func(t *testing.T) {
		ex := fakeExtractor{delay: 10 * time.Millisecond, deps: []Dependency{dep("a", "1")}}
		if _, err := ExtractWithTimeout(context.Background(), ex, p, 0); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("parent canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ExtractWithTimeout(ctx, fakeExtractor{delay: time.Second}, p, time.Minute)
		if !errors.Is(err, errors.ErrCodeCanceled) {
			t.Errorf("err = %v, want CANCELED", err)
		}
	})
}

// A result that is already waiting when the deadline fires must win, whichever
// select branch the runtime picks.
func TestAwaitResultPrefersFinishedResult(t *testing.T) {
	p := NewProject(NPM, "/r", "package.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 50; i++ {
		done := make(chan Result, 1)
		done <- Result{Project: p, Dependencies: []Dependency{dep("a", "1")}, Strategy: "fake"}
		res, err := awaitResult(ctx, done, p, time.Second)
		if err != nil || len(res.Dependencies) != 1 {
			t.Fatalf("iteration %d: res = %+v, err = %v; want the finished result", i, res, err)
		}
	}

	empty := make(chan Result, 1)
	empty <- Result{Project: p, Dependencies: []Dependency{}}
	if _, err := awaitResult(ctx, empty, p, time.Second); !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("empty result: err = %v, want CANCELED", err)
	}
	if _, err := awaitResult(ctx, make(chan Result), p, time.Second); !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("no result: err = %v, want CANCELED", err)
	}
}

func TestOptions(t *testing.T) {
	o := Options{}.WithDefaults()
	if o.Runner == nil {
		t.Error("WithDefaults left Runner nil")
	}
	if o.InstallTimeout != DefaultInstallTimeout || o.ResolveTimeout != DefaultResolveTimeout {
		t.Errorf("timeouts = %s/%s", o.InstallTimeout, o.ResolveTimeout)
	}

	o.Commands = map[string][]string{CmdNPMInstall: {"pnpm", "install"}}
	if got := o.Command(CmdNPMInstall, "npm", "install"); len(got) != 2 || got[0] != "pnpm" {
		t.Errorf("override = %v", got)
	}
	if got := o.Command(CmdComposerShow, "composer", "show"); got[0] != "composer" {
		t.Errorf("default = %v", got)
	}

	got := o.Command(CmdNPMInstall)
	got[0] = "yarn"
	if o.Commands[CmdNPMInstall][0] != "pnpm" {
		t.Error("Command returned a slice aliasing the override")
	}
}
