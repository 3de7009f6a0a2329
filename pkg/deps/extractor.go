package deps

import (
	"context"
	"time"

	"github.com/matzehuels/depscan/pkg/errors"
)

// Extractor produces the dependencies of one project.
//
// Implementations must be safe for concurrent use: the orchestrator runs
// several projects at once against the same Extractor.
type Extractor interface {
	// Ecosystem returns the ecosystem this extractor handles.
	Ecosystem() Ecosystem

	// Extract runs the strategy chain. It never fails; errors are recorded in
	// the Result's attempts and degrade to an empty dependency list.
	Extract(ctx context.Context, p Project) Result

	// Inputs lists the files whose content determines the result (manifest
	// and lockfiles). They are fingerprinted for the result cache.
	Inputs(p Project) []string
}

// ExtractWithTimeout runs ex.Extract bounded by d. When d elapses first it
// returns a TIMEOUT error; the abandoned extraction sees a canceled context,
// so its subprocesses are killed. A non-positive d disables the bound.
func ExtractWithTimeout(ctx context.Context, ex Extractor, p Project, d time.Duration) (Result, error) {
	if d <= 0 {
		return safeExtract(ctx, ex, p), nil
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- safeExtract(ctx, ex, p)
	}()

	return awaitResult(ctx, done, p, d)
}

// awaitResult waits for the extraction result or the end of ctx. A result
// that is already waiting when ctx ends still counts: only an empty one is
// reported as interrupted.
func awaitResult(ctx context.Context, done <-chan Result, p Project, d time.Duration) (Result, error) {
	settle := func(res Result) (Result, error) {
		if res.Empty() && ctx.Err() != nil {
			return res, interrupted(ctx, p, d)
		}
		return res, nil
	}

	select {
	case res := <-done:
		return settle(res)
	case <-ctx.Done():
		select {
		case res := <-done:
			return settle(res)
		default:
			return Result{Project: p, Dependencies: []Dependency{}, Outcome: KindFailure}, interrupted(ctx, p, d)
		}
	}
}

// safeExtract converts an extractor panic into a failed result.
func safeExtract(ctx context.Context, ex Extractor, p Project) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.New(errors.ErrCodeInternal, "extractor panicked: %v", r)
			res = Result{
				Project:      p,
				Dependencies: []Dependency{},
				Outcome:      KindFailure,
				Attempts:     []Attempt{{Strategy: "extract", Kind: KindFailure, Err: err}},
			}
		}
	}()
	return ex.Extract(ctx, p)
}

func interrupted(ctx context.Context, p Project, d time.Duration) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.New(errors.ErrCodeTimeout, "extraction of %s exceeded %s", p.RelativePath, d)
	}
	return errors.Wrap(errors.ErrCodeCanceled, ctx.Err(), "extraction of %s canceled", p.RelativePath)
}
