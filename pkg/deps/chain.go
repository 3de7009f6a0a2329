package deps

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/logging"
	"github.com/matzehuels/depscan/pkg/observability"
)

// Strategy is one named extraction method.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, p Project) Outcome
}

// Attempt records one strategy invocation made by a Chain.
type Attempt struct {
	Strategy string
	Kind     OutcomeKind
	Count    int
	Reason   string
	Err      error
	Duration time.Duration
}

// Result is what a chain produced for one project.
type Result struct {
	Project      Project
	Dependencies []Dependency // Never nil for callers that range over it; may be empty
	Strategy     string       // Strategy that produced Dependencies ("" if none did)
	Outcome      OutcomeKind  // Kind of the last attempt
	Reason       string       // Reason of a terminal NoManifest/Skipped outcome
	Attempts     []Attempt
}

// Empty reports whether no dependencies were extracted.
func (r Result) Empty() bool {
	return len(r.Dependencies) == 0
}

// LastErr returns the error of the most recent failed attempt, if any.
func (r Result) LastErr() error {
	for i := len(r.Attempts) - 1; i >= 0; i-- {
		if r.Attempts[i].Err != nil {
			return r.Attempts[i].Err
		}
	}
	return nil
}

// Failed reports whether the chain ended on a failed attempt without
// producing dependencies.
func (r Result) Failed() bool {
	return r.Empty() && r.Outcome == KindFailure
}

// Chain runs strategies in a fixed priority order.
type Chain struct {
	ecosystem  Ecosystem
	strategies []Strategy
}

// NewChain creates a chain for eco trying strategies in the given order.
func NewChain(eco Ecosystem, strategies ...Strategy) *Chain {
	return &Chain{ecosystem: eco, strategies: strategies}
}

// Ecosystem returns the ecosystem the chain extracts.
func (c *Chain) Ecosystem() Ecosystem { return c.ecosystem }

// Strategies returns the strategy names in priority order.
func (c *Chain) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name
	}
	return names
}

// Extract runs the chain for p. It never returns an error and never panics:
// strategy failures are recorded in Result.Attempts and logged at debug level.
// Dependencies come back tagged with p's ecosystem and relative path.
func (c *Chain) Extract(ctx context.Context, p Project) Result {
	logger := logging.FromContext(ctx).With("ecosystem", c.ecosystem, "project", p.RelativePath)
	hooks := observability.Pipeline()
	res := Result{Project: p, Dependencies: []Dependency{}}

	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			res.Attempts = append(res.Attempts, Attempt{Strategy: s.Name, Kind: KindFailure, Err: errors.Wrap(errors.ErrCodeCanceled, err, "extraction interrupted")})
			res.Outcome = KindFailure
			return res
		}

		start := time.Now()
		out := runStrategy(ctx, s, p)
		out.Dependencies = normalize(out.Dependencies, p)
		elapsed := time.Since(start)

		a := Attempt{
			Strategy: s.Name,
			Kind:     out.Kind,
			Count:    len(out.Dependencies),
			Reason:   out.Reason,
			Err:      out.Err,
			Duration: elapsed,
		}
		res.Attempts = append(res.Attempts, a)
		res.Outcome = out.Kind
		hooks.OnStrategy(ctx, c.ecosystem.String(), p.RelativePath, s.Name, out.Kind.String(), elapsed)

		switch out.Kind {
		case KindFailure:
			logger.Debug("strategy failed", "strategy", s.Name, "err", out.Err)
		case KindSuccess:
			logger.Debug("strategy succeeded", "strategy", s.Name, "count", a.Count, "elapsed", elapsed)
		default:
			logger.Debug("strategy ended chain", "strategy", s.Name, "outcome", out.Kind, "reason", out.Reason)
		}

		if out.Terminal() {
			if out.Kind == KindSuccess {
				res.Dependencies = out.Dependencies
				res.Strategy = s.Name
			} else {
				res.Reason = out.Reason
			}
			return res
		}
	}
	return res
}

// runStrategy converts a panic inside a strategy into a Failure outcome.
func runStrategy(ctx context.Context, s Strategy, p Project) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Failure(errors.New(errors.ErrCodeInternal, "strategy %s panicked: %v", s.Name, r))
		}
	}()
	return s.Run(ctx, p)
}

// normalize tags dependencies with the project and drops unusable names.
func normalize(in []Dependency, p Project) []Dependency {
	out := in[:0]
	for _, d := range in {
		d.Name = strings.TrimSpace(d.Name)
		if errors.ValidateDependencyName(d.Name) != nil {
			continue
		}
		d.Version = strings.TrimSpace(d.Version)
		d.Ecosystem = p.Ecosystem
		d.ProjectPath = p.RelativePath
		out = append(out, d)
	}
	return out
}

// =============================================================================
// Strategy helpers
// =============================================================================

// Require returns a strategy that ends the chain with NoManifest unless at
// least one of files exists in the project directory.
func Require(files ...string) Strategy {
	return Strategy{
		Name: "require",
		Run: func(_ context.Context, p Project) Outcome {
			for _, f := range files {
				if FileExists(p.Path(f)) {
					return Success(nil)
				}
			}
			return NoManifest(fmt.Sprintf("none of %s found", strings.Join(files, ", ")))
		},
	}
}

// SkipUnder returns a strategy that ends the chain with Skipped when the
// project lives below a directory named segment.
func SkipUnder(segment string) Strategy {
	return Strategy{
		Name: "vendored",
		Run: func(_ context.Context, p Project) Outcome {
			if p.Under(segment) {
				return Skipped("inside " + segment)
			}
			return Success(nil)
		},
	}
}

// BestEffort returns a strategy that runs fn and always falls through.
// Failures are logged at debug level; they never stop the chain.
func BestEffort(name string, fn func(ctx context.Context, p Project) error) Strategy {
	return Strategy{
		Name: name,
		Run: func(ctx context.Context, p Project) Outcome {
			if err := fn(ctx, p); err != nil {
				logging.FromContext(ctx).Debug("best-effort step failed", "step", name, "project", p.RelativePath, "err", err)
			}
			return Success(nil)
		},
	}
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
