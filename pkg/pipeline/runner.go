package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/depscan/pkg/cache"
	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/detect"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/logging"
	"github.com/matzehuels/depscan/pkg/observability"
	"github.com/matzehuels/depscan/pkg/sink"
	"github.com/matzehuels/depscan/pkg/walk"
)

// DefaultWorkers is the number of projects extracted concurrently.
const DefaultWorkers = 4

// StrategyCache names results served from the result cache.
const StrategyCache = "cache"

// Dispatcher resolves the extractor of an ecosystem.
// *ecosystems.Table is the production implementation.
type Dispatcher interface {
	Extractor(eco deps.Ecosystem) (deps.Extractor, bool)
}

// Options controls a scan.
type Options struct {
	Workers        int           // Concurrent project extractions (default DefaultWorkers)
	ProjectTimeout time.Duration // Wall-clock bound per project; zero disables
	Walker         *walk.Walker  // Tree walker (default walks everything)
	RunID          string        // Identifier for logs and sinks (default: random UUID)
}

// ValidateAndSetDefaults fills zero values and rejects invalid settings.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must not be negative")
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.ProjectTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "project timeout must not be negative")
	}
	if o.Walker == nil {
		o.Walker = &walk.Walker{}
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	return nil
}

// Runner executes scans. It holds no per-scan state and can run several
// scans concurrently.
type Runner struct {
	Dispatcher Dispatcher
	Results    *cache.Results // nil disables the result cache
	Options    Options
}

// NewRunner creates a runner. results may be nil.
func NewRunner(d Dispatcher, results *cache.Results, opts Options) *Runner {
	return &Runner{Dispatcher: d, Results: results, Options: opts}
}

// Execute scans root and streams every project's dependencies into s.
//
// The returned Summary is non-nil whenever the scan got past validation,
// even if an error is also returned.
func (r *Runner) Execute(ctx context.Context, root string, s sink.Sink) (*Summary, error) {
	opts := r.Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := errors.ValidateRoot(root); err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	ctx = logging.With(ctx, "run", shortID(opts.RunID))
	logger := logging.FromContext(ctx)
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnScanStart(ctx, root)

	summary := newSummary(opts.RunID, root)
	if err := s.Initialize(ctx); err != nil {
		err = errors.Wrap(errors.ErrCodeSink, err, "initialize output")
		hooks.OnScanComplete(ctx, root, 0, 0, time.Since(start), err)
		return summary, err
	}

	var (
		appendMu   sync.Mutex
		appendErrs *multierror.Error
	)
	sc := &scan{
		runner:  r,
		opts:    opts,
		results: r.scopedResults(root),
		sink:    s,
		summary: summary,
		onAppendError: func(err error) {
			appendMu.Lock()
			appendErrs = multierror.Append(appendErrs, err)
			appendMu.Unlock()
		},
	}

	g := new(errgroup.Group)
	g.SetLimit(opts.Workers)
	stats := detect.New(opts.Walker).DetectStreaming(ctx, root, func(ctx context.Context, p deps.Project) error {
		summary.addProject(p)
		g.Go(func() error {
			sc.process(ctx, p)
			return nil
		})
		return nil
	})
	_ = g.Wait()

	summary.Files = stats.Files
	summary.WalkErrors = stats.Errors

	location, finalizeErr := s.Finalize(context.WithoutCancel(ctx))
	summary.Location = location
	summary.Duration = time.Since(start)

	var err error
	switch {
	case finalizeErr != nil:
		err = errors.Wrap(errors.ErrCodeSink, finalizeErr, "finalize output")
	case appendErrs.ErrorOrNil() != nil:
		err = errors.Wrap(errors.ErrCodeSink, appendErrs, "%d project(s) could not be written", appendErrs.Len())
	case ctx.Err() != nil:
		err = errors.Wrap(errors.ErrCodeCanceled, ctx.Err(), "scan interrupted")
	}

	logger.Debug("scan complete",
		"projects", summary.Projects,
		"dependencies", summary.Dependencies,
		"duration", summary.Duration)
	hooks.OnScanComplete(ctx, root, summary.Projects, summary.Dependencies, summary.Duration, err)
	return summary, err
}

// scopedResults returns a copy of the runner's result cache whose keys are
// namespaced by the scan root.
func (r *Runner) scopedResults(root string) *cache.Results {
	if r.Results == nil || r.Results.Cache == nil {
		return nil
	}
	scoped := *r.Results
	scoped.Keyer = cache.NewScopedKeyer(r.Results.Keyer, cache.Hash([]byte(root))[:16]+":")
	return &scoped
}

// scan is the state shared by the workers of one Execute call.
type scan struct {
	runner        *Runner
	opts          Options
	results       *cache.Results
	sink          sink.Sink
	summary       *Summary
	onAppendError func(error)
}

// process extracts one project and appends its dependencies. It never
// panics and never returns an error: every failure is logged and counted.
func (s *scan) process(ctx context.Context, p deps.Project) {
	ctx = logging.With(ctx, "project", p.RelativePath)
	logger := logging.FromContext(ctx)
	hooks := observability.Pipeline()
	eco := p.Ecosystem.String()
	start := time.Now()
	hooks.OnProjectStart(ctx, eco, p.RelativePath)

	o := s.extract(ctx, p)

	if len(o.deps) > 0 {
		if err := s.sink.Append(ctx, o.deps); err != nil {
			logger.Warn("write failed", "err", err)
			s.onAppendError(errors.Wrap(errors.ErrCodeSink, err, "append %s", p.RelativePath))
			o.status = StatusWriteFailed
		}
	}
	s.summary.record(p, o)

	logger.Debug("project done",
		"status", o.status,
		"strategy", o.strategy,
		"dependencies", len(o.deps),
		"elapsed", time.Since(start))
	hooks.OnProjectComplete(ctx, eco, p.RelativePath, o.strategy, len(o.deps), time.Since(start), o.err)
}

// projectOutcome is what process learned about one project.
type projectOutcome struct {
	deps     []deps.Dependency
	strategy string
	status   Status
	err      error
}

func (s *scan) extract(ctx context.Context, p deps.Project) (o projectOutcome) {
	logger := logging.FromContext(ctx)
	defer func() {
		if rec := recover(); rec != nil {
			o = projectOutcome{status: StatusFailed, err: errors.New(errors.ErrCodeInternal, "extractor panicked: %v", rec)}
			logger.Debug("extractor panicked", "err", o.err)
		}
	}()

	ex, ok := s.runner.Dispatcher.Extractor(p.Ecosystem)
	if !ok {
		return projectOutcome{status: StatusFailed, err: errors.New(errors.ErrCodeUnsupported, "no extractor for %s", p.Ecosystem)}
	}

	results := s.results
	var key string
	if results != nil {
		k, err := results.Key(p, ex.Inputs(p))
		if err != nil {
			logger.Debug("cache key unavailable", "err", err)
		} else {
			key = k
			ds, strategy, hit, err := results.Get(ctx, key, p)
			if err != nil {
				logger.Debug("cache read failed", "err", err)
			}
			if hit {
				logger.Debug("cache hit", "strategy", strategy, "dependencies", len(ds))
				return projectOutcome{deps: ds, strategy: StrategyCache, status: StatusCached}
			}
		}
	}

	res, err := deps.ExtractWithTimeout(ctx, ex, p, s.opts.ProjectTimeout)
	o = projectOutcome{deps: res.Dependencies, strategy: res.Strategy, err: err}
	switch {
	case errors.Is(err, errors.ErrCodeTimeout):
		o.status = StatusTimedOut
	case err != nil, res.Failed():
		o.status = StatusFailed
		if o.err == nil {
			o.err = res.LastErr()
		}
	case res.Outcome == deps.KindSkipped:
		o.status = StatusSkipped
	case res.Outcome == deps.KindNoManifest:
		o.status = StatusNoManifest
	case res.Empty():
		o.status = StatusEmpty
	default:
		o.status = StatusExtracted
	}
	if o.err != nil {
		logger.Debug("extraction degraded", "status", o.status, "err", o.err)
	}

	if key != "" && o.status == StatusExtracted {
		if err := results.Set(ctx, key, o.strategy, o.deps); err != nil {
			logger.Debug("cache write failed", "err", err)
		}
	}
	return o
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
