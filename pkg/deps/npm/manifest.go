package npm

import (
	"encoding/json"
	"os"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

type packageJSON struct {
	Dependencies    map[string]any `json:"dependencies"`
	DevDependencies map[string]any `json:"devDependencies"`
}

// ParseManifest reads the declared dependencies of a package.json.
//
// String values are recorded verbatim as the version. Object values are
// what some tools write for unresolved entries: those marked "missing" are
// skipped, others contribute their "version" field if it is a string.
func ParseManifest(path string) ([]deps.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode %s", path)
	}

	var out []deps.Dependency
	add := func(m map[string]any, dev bool) {
		for name, v := range m {
			if version, ok := declaredVersion(v); ok {
				out = append(out, deps.Dependency{Name: name, Version: version, IsDev: dev})
			}
		}
	}
	add(pkg.Dependencies, false)
	add(pkg.DevDependencies, true)
	deps.SortDependencies(out)
	return out, nil
}

func declaredVersion(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case map[string]any:
		if missing, _ := v["missing"].(bool); missing {
			return "", false
		}
		version, ok := v["version"].(string)
		return version, ok
	}
	return "", false
}
