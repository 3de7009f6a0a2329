// Package shell runs external package-manager commands under a wall-clock
// budget.
//
// Every invocation gets its own deadline. When the deadline passes the whole
// process group is killed, so build tools that fork daemons or child JVMs
// cannot keep the caller waiting. Non-zero exits, spawn failures and timeouts
// are returned as coded errors; callers treat all of them as "this strategy
// failed, try the next one".
package shell

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"time"

	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/observability"
)

const (
	// DefaultTimeout applies when a Command has no Timeout.
	DefaultTimeout = 2 * time.Minute

	// WaitDelay bounds how long Run waits for output pipes to drain after the
	// process has been killed.
	WaitDelay = 5 * time.Second

	// stderrTail is how much of stderr is kept for error messages.
	stderrTail = 2048
)

// Command describes one external invocation.
type Command struct {
	Name    string        // Executable (looked up in PATH unless it contains a separator)
	Args    []string      // Arguments
	Dir     string        // Working directory
	Timeout time.Duration // Wall-clock budget (DefaultTimeout when zero)
	Env     []string      // Extra environment entries appended to os.Environ()
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Runner executes commands. Implementations must be safe for concurrent use.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner is the Runner backed by os/exec.
type ExecRunner struct{}

// NewRunner returns the default os/exec backed Runner.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts cmd and waits for it to finish or for its budget to expire.
//
// The returned error is coded:
//   - TOOL_NOT_FOUND when the executable cannot be resolved or started
//   - TIMEOUT when cmd.Timeout elapsed (the process group has been killed)
//   - CANCELED when the parent context was canceled
//   - TOOL_FAILED (wrapping *errors.ToolError) on a non-zero exit
//
// A Result is returned alongside TOOL_FAILED and TIMEOUT so callers can still
// inspect partial output.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	hooks := observability.Command()
	hooks.OnCommandStart(ctx, c.Name, c.Dir)
	res, err := r.run(ctx, c)
	exitCode, elapsed := -1, time.Duration(0)
	if res != nil {
		exitCode, elapsed = res.ExitCode, res.Duration
	}
	hooks.OnCommandComplete(ctx, c.Name, exitCode, elapsed, err)
	return res, err
}

func (r *ExecRunner) run(ctx context.Context, c Command) (*Result, error) {
	if _, err := exec.LookPath(c.Name); err != nil {
		return nil, errors.Wrap(errors.ErrCodeToolNotFound, err, "%s not available", c.Name)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	cmd.WaitDelay = WaitDelay
	killProcessGroup(cmd)

	var stdout bytes.Buffer
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, errors.Wrap(errors.ErrCodeCanceled, ctx.Err(), "%s canceled", c.Name)
	case stderrors.Is(runCtx.Err(), context.DeadlineExceeded):
		return res, errors.Wrap(errors.ErrCodeTimeout, runCtx.Err(), "%s exceeded %s", c.String(), timeout)
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return res, errors.Wrap(errors.ErrCodeToolFailed, &errors.ToolError{
			Tool:     c.Name,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(string(res.Stderr)),
		}, "%s failed", c.String())
	}
	return res, errors.Wrap(errors.ErrCodeToolNotFound, err, "start %s", c.Name)
}

// tailBuffer keeps only the last max bytes written to it.
type tailBuffer struct {
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) Bytes() []byte { return t.buf }
