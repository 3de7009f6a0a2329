// Package maven extracts dependencies of Maven projects.
//
// The chain for a pom.xml project is:
//
//  1. require: pom.xml must exist
//  2. install: "mvn install -DskipTests" (best-effort)
//  3. effective-pom: "mvn help:effective-pom" written to a temporary file
//     in the project directory, which is always removed afterwards
//  4. pom: the raw pom.xml's own dependencies (direct only)
//
// Dependency names are "groupId:artifactId"; scope "test" marks a
// development dependency.
package maven

import (
	"context"
	"os"

	"github.com/google/uuid"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/logging"
)

// Manifest is the file that identifies a Maven project.
const Manifest = "pom.xml"

// Extractor runs the Maven strategy chain.
type Extractor struct {
	opts  deps.Options
	chain *deps.Chain
}

// New creates a Maven extractor.
func New(opts deps.Options) *Extractor {
	e := &Extractor{opts: opts.WithDefaults()}
	e.chain = deps.NewChain(deps.Maven,
		deps.Require(Manifest),
		deps.BestEffort("install", e.install),
		deps.Strategy{Name: "effective-pom", Run: e.fromEffectivePOM},
		deps.Strategy{Name: "pom", Run: e.fromPOM},
	)
	return e
}

// Ecosystem implements deps.Extractor.
func (e *Extractor) Ecosystem() deps.Ecosystem { return deps.Maven }

// Extract implements deps.Extractor.
func (e *Extractor) Extract(ctx context.Context, p deps.Project) deps.Result {
	return e.chain.Extract(ctx, p)
}

// Inputs implements deps.Extractor.
func (e *Extractor) Inputs(p deps.Project) []string {
	return []string{p.ManifestPath()}
}

// Strategies returns the chain's strategy names in order.
func (e *Extractor) Strategies() []string { return e.chain.Strategies() }

func (e *Extractor) install(ctx context.Context, p deps.Project) error {
	if e.opts.SkipInstall {
		return nil
	}
	argv := e.opts.Command(deps.CmdMavenInstall, "mvn", "-B", "-q", "install", "-DskipTests")
	_, err := e.opts.Run(ctx, p, e.opts.InstallTimeout, argv)
	return err
}

func (e *Extractor) fromEffectivePOM(ctx context.Context, p deps.Project) deps.Outcome {
	out := p.Path(".depscan-effective-pom-" + uuid.NewString() + ".xml")
	defer func() {
		if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
			logging.FromContext(ctx).Debug("remove effective pom", "path", out, "err", err)
		}
	}()

	argv := e.opts.Command(deps.CmdMavenEffectivePOM, "mvn", "-B", "-q", "help:effective-pom")
	argv = append(argv, "-Doutput="+out)
	if _, err := e.opts.Run(ctx, p, e.opts.ResolveTimeout, argv); err != nil {
		return deps.Failure(err)
	}
	if !deps.FileExists(out) {
		return deps.Failure(errors.New(errors.ErrCodeFileMissing, "effective pom was not written to %s", out))
	}

	ds, err := ParseFile(out)
	if err != nil {
		return deps.Failure(err)
	}
	return deps.Success(ds)
}

func (e *Extractor) fromPOM(_ context.Context, p deps.Project) deps.Outcome {
	ds, err := ParseFile(p.ManifestPath())
	if err != nil {
		return deps.Failure(err)
	}
	return deps.Success(ds)
}
