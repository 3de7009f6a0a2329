// Package detect finds projects by matching file basenames against a fixed
// manifest table.
//
//	NPM:      package.json
//	Maven:    pom.xml
//	Gradle:   build.gradle, build.gradle.kts
//	Composer: composer.json
//
// Every match is its own project; nested projects are not deduplicated.
package detect

import (
	"context"
	"path"
	"sort"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/logging"
	"github.com/matzehuels/depscan/pkg/walk"
)

var manifests = map[string]deps.Ecosystem{
	"package.json":     deps.NPM,
	"pom.xml":          deps.Maven,
	"build.gradle":     deps.Gradle,
	"build.gradle.kts": deps.Gradle,
	"composer.json":    deps.Composer,
}

// Match returns the ecosystem whose manifest table contains the basename of
// rel.
func Match(rel string) (deps.Ecosystem, bool) {
	eco, ok := manifests[path.Base(rel)]
	return eco, ok
}

// Manifests returns the manifest basenames of eco, sorted.
func Manifests(eco deps.Ecosystem) []string {
	var names []string
	for name, e := range manifests {
		if e == eco {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Stats describes one detection pass.
type Stats struct {
	Files    int // Regular files walked
	Projects int // Manifest matches
	Errors   int // Walker errors (unreadable directories or entries)
}

// Detector pairs a walker with the manifest table.
type Detector struct {
	walker *walk.Walker
}

// New creates a Detector. A nil walker walks everything.
func New(w *walk.Walker) *Detector {
	if w == nil {
		w = &walk.Walker{}
	}
	return &Detector{walker: w}
}

// Detect walks root and returns every project found.
func (d *Detector) Detect(ctx context.Context, root string) ([]deps.Project, Stats) {
	var projects []deps.Project
	stats := d.DetectStreaming(ctx, root, func(_ context.Context, p deps.Project) error {
		projects = append(projects, p)
		return nil
	})
	return projects, stats
}

// DetectStreaming walks root and calls onProject as each manifest is found.
// onProject runs before the walk continues. Its errors are logged and never
// stop detection. Stats.Projects counts manifest matches only.
func (d *Detector) DetectStreaming(ctx context.Context, root string, onProject func(context.Context, deps.Project) error) Stats {
	logger := logging.FromContext(ctx)
	var stats Stats

	stats.Files = d.walker.Walk(ctx, root, func(rel string) {
		eco, ok := Match(rel)
		if !ok {
			return
		}
		stats.Projects++
		p := deps.NewProject(eco, root, rel)
		logger.Debug("project detected", "ecosystem", eco, "project", p.RelativePath)
		if err := onProject(ctx, p); err != nil {
			logger.Debug("project handler failed", "project", p.RelativePath, "err", err)
		}
	}, func(err error) {
		stats.Errors++
		logger.Debug("walk error", "err", err)
	})
	return stats
}
