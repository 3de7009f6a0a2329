package deps

import (
	"cmp"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Project is one manifest file discovered under the scan root.
// Projects are immutable once created by the detector.
type Project struct {
	Ecosystem    Ecosystem
	RootDir      string // Directory containing the manifest
	ManifestFile string // Manifest basename, e.g. "package.json"
	RelativePath string // Manifest path relative to the scan root, slash separated
}

// NewProject builds a Project for the manifest at rel (relative to root).
func NewProject(eco Ecosystem, root, rel string) Project {
	rel = filepath.ToSlash(rel)
	return Project{
		Ecosystem:    eco,
		RootDir:      filepath.Join(root, filepath.FromSlash(path.Dir(rel))),
		ManifestFile: path.Base(rel),
		RelativePath: rel,
	}
}

// ManifestPath returns the path of the project's manifest.
func (p Project) ManifestPath() string {
	return filepath.Join(p.RootDir, p.ManifestFile)
}

// Path returns the path of name inside the project directory.
func (p Project) Path(name string) string {
	return filepath.Join(p.RootDir, name)
}

// Dir returns the slash-separated directory of the manifest relative to the
// scan root ("." for the root itself).
func (p Project) Dir() string {
	return path.Dir(p.RelativePath)
}

// Under reports whether the manifest's directory, relative to the scan root,
// has segment as one of its components (e.g., "node_modules" or "vendor").
func (p Project) Under(segment string) bool {
	for _, part := range strings.Split(p.Dir(), "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// String returns the manifest's relative path.
func (p Project) String() string {
	return p.RelativePath
}

// Dependency is one normalized dependency of a project.
//
// Version is the raw string from whichever source produced it (resolver
// output, lockfile, or declared manifest range). It is never resolved.
type Dependency struct {
	Ecosystem   Ecosystem
	ProjectPath string // Manifest's relative path (Project.RelativePath)
	Name        string
	Version     string
	IsDev       bool
}

// SortDependencies orders ds by name, then version, prod before dev.
func SortDependencies(ds []Dependency) {
	slices.SortFunc(ds, func(a, b Dependency) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Version, b.Version); c != 0 {
			return c
		}
		switch {
		case a.IsDev == b.IsDev:
			return 0
		case !a.IsDev:
			return -1
		}
		return 1
	})
}

// Collector accumulates dependencies, merging duplicate name@version pairs.
// When a pair is seen both as prod and dev, prod wins.
type Collector struct {
	index map[string]int
	deps  []Dependency
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{index: make(map[string]int)}
}

// Add records one occurrence of name@version.
func (c *Collector) Add(name, version string, dev bool) {
	key := name + "@" + version
	if i, ok := c.index[key]; ok {
		c.deps[i].IsDev = c.deps[i].IsDev && dev
		return
	}
	c.index[key] = len(c.deps)
	c.deps = append(c.deps, Dependency{Name: name, Version: version, IsDev: dev})
}

// Len returns the number of distinct dependencies collected.
func (c *Collector) Len() int { return len(c.deps) }

// List returns the collected dependencies sorted with SortDependencies.
func (c *Collector) List() []Dependency {
	SortDependencies(c.deps)
	return c.deps
}
