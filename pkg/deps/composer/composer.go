// Package composer extracts dependencies of PHP Composer projects.
//
// The chain for a composer.json project is:
//
//  1. vendored: projects below vendor/ are skipped
//  2. require: composer.json must exist
//  3. install: "composer install" (best-effort)
//  4. show: "composer show --format=json", the installed transitive set
//  5. lockfile: composer.lock packages and packages-dev
//  6. manifest: declared require and require-dev ranges, minus the php
//     platform requirement
package composer

import (
	"context"

	"github.com/matzehuels/depscan/pkg/deps"
)

// Manifest is the file that identifies a Composer project.
const Manifest = "composer.json"

// Lockfile is Composer's lockfile name.
const Lockfile = "composer.lock"

// Extractor runs the Composer strategy chain.
type Extractor struct {
	opts  deps.Options
	chain *deps.Chain
}

// New creates a Composer extractor.
func New(opts deps.Options) *Extractor {
	e := &Extractor{opts: opts.WithDefaults()}
	e.chain = deps.NewChain(deps.Composer,
		deps.SkipUnder("vendor"),
		deps.Require(Manifest),
		deps.BestEffort("install", e.install),
		deps.Strategy{Name: "show", Run: e.fromShow},
		deps.Strategy{Name: "lockfile", Run: e.fromLockfile},
		deps.Strategy{Name: "manifest", Run: e.fromManifest},
	)
	return e
}

// Ecosystem implements deps.Extractor.
func (e *Extractor) Ecosystem() deps.Ecosystem { return deps.Composer }

// Extract implements deps.Extractor.
func (e *Extractor) Extract(ctx context.Context, p deps.Project) deps.Result {
	return e.chain.Extract(ctx, p)
}

// Inputs implements deps.Extractor.
func (e *Extractor) Inputs(p deps.Project) []string {
	return []string{p.ManifestPath(), p.Path(Lockfile)}
}

// Strategies returns the chain's strategy names in order.
func (e *Extractor) Strategies() []string { return e.chain.Strategies() }

func (e *Extractor) install(ctx context.Context, p deps.Project) error {
	if e.opts.SkipInstall {
		return nil
	}
	argv := e.opts.Command(deps.CmdComposerInstall, "composer", "install", "--no-interaction", "--no-scripts", "--no-progress")
	_, err := e.opts.Run(ctx, p, e.opts.InstallTimeout, argv)
	return err
}

func (e *Extractor) fromShow(ctx context.Context, p deps.Project) deps.Outcome {
	argv := e.opts.Command(deps.CmdComposerShow, "composer", "show", "--format=json", "--no-interaction")
	res, err := e.opts.Run(ctx, p, e.opts.ResolveTimeout, argv)
	if err != nil {
		return deps.Failure(err)
	}
	ds, err := ParseShow(res.Stdout)
	if err != nil {
		return deps.Failure(err)
	}
	return deps.Success(ds)
}

func (e *Extractor) fromLockfile(_ context.Context, p deps.Project) deps.Outcome {
	path := p.Path(Lockfile)
	if !deps.FileExists(path) {
		return deps.Success(nil)
	}
	ds, err := ParseLockfile(path)
	if err != nil {
		return deps.Failure(err)
	}
	return deps.Success(ds)
}

func (e *Extractor) fromManifest(_ context.Context, p deps.Project) deps.Outcome {
	ds, err := ParseManifest(p.ManifestPath())
	if err != nil {
		return deps.Failure(err)
	}
	return deps.Success(ds)
}
