package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLevelFiltering(t *testing.T) {
	var info, debug bytes.Buffer
	New(&info, log.InfoLevel).Debug("strategy failed", "strategy", "lockfile")
	New(&debug, log.DebugLevel).Debug("strategy failed", "strategy", "lockfile")

	if info.Len() != 0 {
		t.Errorf("info logger wrote debug line: %q", info.String())
	}
	if !strings.Contains(debug.String(), "strategy=lockfile") {
		t.Errorf("debug logger output = %q", debug.String())
	}
}

// Fields accumulate the way the orchestrator layers them: the run ID on the
// scan context, then the project on each worker's context.
func TestNestedFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, log.InfoLevel))
	ctx = With(ctx, "run", "3f2a9c1b")
	projectCtx := With(ctx, "project", "web/package.json")

	FromContext(projectCtx).Warn("append failed")
	FromContext(ctx).Info("scan complete")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "run=3f2a9c1b") || !strings.Contains(lines[0], "project=web/package.json") {
		t.Errorf("project line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "run=3f2a9c1b") || strings.Contains(lines[1], "project=") {
		t.Errorf("scan line = %q", lines[1])
	}
}

func TestFromContextFallbacks(t *testing.T) {
	if FromContext(context.Background()) != log.Default() {
		t.Error("bare context should yield log.Default()")
	}
	ctx := context.WithValue(context.Background(), loggerKey, (*log.Logger)(nil))
	if FromContext(ctx) != log.Default() {
		t.Error("nil logger in context should yield log.Default()")
	}
	// Must not panic or write anywhere visible.
	Discard().Error("dropped", "err", "boom")
}
