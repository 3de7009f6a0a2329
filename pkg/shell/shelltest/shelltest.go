// Package shelltest provides a scripted shell.Runner for tests that must not
// depend on npm, mvn, gradle or composer being installed.
package shelltest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/shell"
)

// Response scripts the outcome of a matched command.
type Response struct {
	Stdout string                    // Captured stdout
	Err    error                     // Returned error (nil for success)
	Delay  time.Duration             // Simulated run time; honours ctx and Command.Timeout
	Effect func(shell.Command) error // Side effect, e.g. writing an output file
}

// Runner matches each command line against registered prefixes (longest wins).
// Unmatched commands fail with TOOL_NOT_FOUND, as if the tool were absent.
type Runner struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []shell.Command
}

// New returns an empty Runner: every command behaves as missing.
func New() *Runner {
	return &Runner{responses: make(map[string]Response)}
}

// On registers a response for command lines starting with prefix
// (e.g., "npm install" or "mvn help:effective-pom").
func (r *Runner) On(prefix string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[prefix] = resp
	return r
}

// Calls returns the commands run so far, in order.
func (r *Runner) Calls() []shell.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shell.Command(nil), r.calls...)
}

// Called reports whether any command line started with prefix.
func (r *Runner) Called(prefix string) bool {
	for _, c := range r.Calls() {
		if strings.HasPrefix(c.String(), prefix) {
			return true
		}
	}
	return false
}

// Run implements shell.Runner.
func (r *Runner) Run(ctx context.Context, c shell.Command) (*shell.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	resp, ok := r.match(c.String())
	r.mu.Unlock()

	if !ok {
		return nil, errors.New(errors.ErrCodeToolNotFound, "%s not available", c.Name)
	}

	if resp.Delay > 0 {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = shell.DefaultTimeout
		}
		timer := time.NewTimer(resp.Delay)
		defer timer.Stop()
		deadline := time.NewTimer(timeout)
		defer deadline.Stop()
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeCanceled, ctx.Err(), "%s canceled", c.Name)
		case <-deadline.C:
			return nil, errors.New(errors.ErrCodeTimeout, "%s exceeded %s", c.String(), timeout)
		case <-timer.C:
		}
	}

	if resp.Effect != nil {
		if err := resp.Effect(c); err != nil {
			return nil, err
		}
	}
	return &shell.Result{Stdout: []byte(resp.Stdout)}, resp.Err
}

func (r *Runner) match(line string) (Response, bool) {
	prefixes := make([]string, 0, len(r.responses))
	for p := range r.responses {
		if strings.HasPrefix(line, p) {
			prefixes = append(prefixes, p)
		}
	}
	if len(prefixes) == 0 {
		return Response{}, false
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	return r.responses[prefixes[0]], true
}

var _ shell.Runner = (*Runner)(nil)
