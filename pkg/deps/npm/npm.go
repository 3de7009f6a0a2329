// Package npm extracts dependencies of Node.js projects.
//
// The chain for a package.json project is:
//
//  1. vendored: projects below node_modules are skipped
//  2. install: when no lockfile exists, "npm install --package-lock-only"
//     materializes one (best-effort)
//  3. lockfile: package-lock.json or npm-shrinkwrap.json, either the nested
//     v1 "dependencies" tree or the flat v2/v3 "packages" map
//  4. manifest: declared ranges from package.json dependencies and
//     devDependencies, recorded verbatim
package npm

import (
	"context"

	"github.com/matzehuels/depscan/pkg/deps"
)

// Manifest is the file that identifies an npm project.
const Manifest = "package.json"

// Lockfiles lists accepted lockfile names in preference order.
var Lockfiles = []string{"npm-shrinkwrap.json", "package-lock.json"}

// Extractor runs the npm strategy chain.
type Extractor struct {
	opts  deps.Options
	chain *deps.Chain
}

// New creates an npm extractor.
func New(opts deps.Options) *Extractor {
	e := &Extractor{opts: opts.WithDefaults()}
	e.chain = deps.NewChain(deps.NPM,
		deps.SkipUnder("node_modules"),
		deps.Require(Manifest),
		deps.BestEffort("install", e.install),
		deps.Strategy{Name: "lockfile", Run: e.fromLockfile},
		deps.Strategy{Name: "manifest", Run: e.fromManifest},
	)
	return e
}

// Ecosystem implements deps.Extractor.
func (e *Extractor) Ecosystem() deps.Ecosystem { return deps.NPM }

// Extract implements deps.Extractor.
func (e *Extractor) Extract(ctx context.Context, p deps.Project) deps.Result {
	return e.chain.Extract(ctx, p)
}

// Inputs implements deps.Extractor.
func (e *Extractor) Inputs(p deps.Project) []string {
	files := []string{p.ManifestPath()}
	for _, name := range Lockfiles {
		files = append(files, p.Path(name))
	}
	return files
}

// Strategies returns the chain's strategy names in order.
func (e *Extractor) Strategies() []string { return e.chain.Strategies() }

func (e *Extractor) install(ctx context.Context, p deps.Project) error {
	if e.opts.SkipInstall || lockfile(p) != "" {
		return nil
	}
	argv := e.opts.Command(deps.CmdNPMInstall, "npm", "install", "--package-lock-only", "--ignore-scripts", "--no-audit", "--no-fund")
	_, err := e.opts.Run(ctx, p, e.opts.InstallTimeout, argv)
	return err
}

func (e *Extractor) fromLockfile(_ context.Context, p deps.Project) deps.Outcome {
	path := lockfile(p)
	if path == "" {
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

// lockfile returns the path of the first existing lockfile, or "".
func lockfile(p deps.Project) string {
	for _, name := range Lockfiles {
		if path := p.Path(name); deps.FileExists(path) {
			return path
		}
	}
	return ""
}
