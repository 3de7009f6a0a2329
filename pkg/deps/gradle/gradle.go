// Package gradle extracts dependencies of Gradle projects.
//
// The chain for a build.gradle or build.gradle.kts project is:
//
//  1. require: a build file must exist
//  2. build: "gradle build -x test" (best-effort)
//  3. dependencies: the "gradle dependencies" report, parsed line by line
//  4. buildfile: a regex scan of the build script's dependency declarations
//
// The Gradle wrapper in the project directory is preferred over a gradle
// binary on PATH.
package gradle

import (
	"context"
	"os"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

// Manifests are the files that identify a Gradle project.
var Manifests = []string{"build.gradle", "build.gradle.kts"}

// Wrapper is the name of the Gradle wrapper script.
const Wrapper = "gradlew"

// Extractor runs the Gradle strategy chain.
type Extractor struct {
	opts  deps.Options
	chain *deps.Chain
}

// New creates a Gradle extractor.
func New(opts deps.Options) *Extractor {
	e := &Extractor{opts: opts.WithDefaults()}
	e.chain = deps.NewChain(deps.Gradle,
		deps.Require(Manifests...),
		deps.BestEffort("build", e.build),
		deps.Strategy{Name: "dependencies", Run: e.fromReport},
		deps.Strategy{Name: "buildfile", Run: e.fromBuildFile},
	)
	return e
}

// Ecosystem implements deps.Extractor.
func (e *Extractor) Ecosystem() deps.Ecosystem { return deps.Gradle }

// Extract implements deps.Extractor.
func (e *Extractor) Extract(ctx context.Context, p deps.Project) deps.Result {
	return e.chain.Extract(ctx, p)
}

// Inputs implements deps.Extractor.
func (e *Extractor) Inputs(p deps.Project) []string {
	files := []string{p.ManifestPath()}
	for _, name := range []string{"gradle.lockfile", "settings.gradle", "settings.gradle.kts"} {
		files = append(files, p.Path(name))
	}
	return files
}

// Strategies returns the chain's strategy names in order.
func (e *Extractor) Strategies() []string { return e.chain.Strategies() }

func (e *Extractor) build(ctx context.Context, p deps.Project) error {
	if e.opts.SkipInstall {
		return nil
	}
	argv := e.command(p, deps.CmdGradleBuild, "build", "-x", "test", "--console=plain")
	_, err := e.opts.Run(ctx, p, e.opts.InstallTimeout, argv)
	return err
}

func (e *Extractor) fromReport(ctx context.Context, p deps.Project) deps.Outcome {
	argv := e.command(p, deps.CmdGradleDeps, "dependencies", "--console=plain")
	res, err := e.opts.Run(ctx, p, e.opts.ResolveTimeout, argv)
	if err != nil {
		return deps.Failure(err)
	}
	return deps.Success(ParseReport(res.Stdout))
}

func (e *Extractor) fromBuildFile(_ context.Context, p deps.Project) deps.Outcome {
	path := buildFile(p)
	if path == "" {
		return deps.Success(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return deps.Failure(errors.Wrap(errors.ErrCodeIO, err, "read %s", path))
	}
	return deps.Success(ParseBuildFile(data))
}

// command returns the argv for key: a configured override verbatim, or the
// project's wrapper (falling back to "gradle") followed by args.
func (e *Extractor) command(p deps.Project, key string, args ...string) []string {
	tool := "gradle"
	if w := p.Path(Wrapper); deps.FileExists(w) {
		tool = w
	}
	return e.opts.Command(key, append([]string{tool}, args...)...)
}

// buildFile prefers the manifest the project was detected by.
func buildFile(p deps.Project) string {
	if deps.FileExists(p.ManifestPath()) {
		return p.ManifestPath()
	}
	for _, name := range Manifests {
		if path := p.Path(name); deps.FileExists(path) {
			return path
		}
	}
	return ""
}
