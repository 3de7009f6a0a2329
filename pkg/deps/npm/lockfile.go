package npm

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

// lockFile covers both lockfile layouts. v1 nests packages under
// "dependencies"; v2 and v3 list every installed package in "packages",
// keyed by its install path ("node_modules/a/node_modules/b").
type lockFile struct {
	LockfileVersion int                    `json:"lockfileVersion"`
	Packages        map[string]lockPackage `json:"packages"`
	Dependencies    map[string]lockEntry   `json:"dependencies"`
}

type lockPackage struct {
	Version     string `json:"version"`
	Dev         bool   `json:"dev"`
	DevOptional bool   `json:"devOptional"`
	Link        bool   `json:"link"`
}

type lockEntry struct {
	Version      string               `json:"version"`
	Dev          bool                 `json:"dev"`
	Dependencies map[string]lockEntry `json:"dependencies"`
}

const nodeModules = "node_modules/"

// ParseLockfile reads a package-lock.json or npm-shrinkwrap.json.
// The root project (the "" key) and workspace entries are not dependencies.
func ParseLockfile(path string) ([]deps.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	var lock lockFile
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode %s", path)
	}

	c := deps.NewCollector()
	if len(lock.Packages) > 0 {
		for key, pkg := range lock.Packages {
			name := packageName(key)
			if name == "" || pkg.Link {
				continue
			}
			c.Add(name, pkg.Version, pkg.Dev || pkg.DevOptional)
		}
	} else {
		walkV1(c, lock.Dependencies)
	}
	return c.List(), nil
}

// packageName extracts the package name from a v2/v3 packages key.
// It returns "" for the root entry and for workspace paths.
func packageName(key string) string {
	i := strings.LastIndex(key, nodeModules)
	if i < 0 {
		return ""
	}
	return key[i+len(nodeModules):]
}

// walkV1 adds every entry of a nested v1 dependency tree.
func walkV1(c *deps.Collector, entries map[string]lockEntry) {
	for name, e := range entries {
		c.Add(name, e.Version, e.Dev)
		walkV1(c, e.Dependencies)
	}
}
