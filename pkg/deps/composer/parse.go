package composer

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

// platformPHP is the PHP runtime requirement, which is not a package.
const platformPHP = "php"

type composerPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type showOutput struct {
	Installed []composerPackage `json:"installed"`
}

type lockFile struct {
	Packages    []composerPackage `json:"packages"`
	PackagesDev []composerPackage `json:"packages-dev"`
}

type composerFile struct {
	Require    map[string]string `json:"require"`
	RequireDev map[string]string `json:"require-dev"`
}

// ParseShow parses "composer show --format=json". The installed set does
// not say which packages are dev-only, so every entry is prod.
func ParseShow(out []byte) ([]deps.Dependency, error) {
	out = bytes.TrimSpace(out)
	// An empty project prints a bare empty array.
	if bytes.Equal(out, []byte("[]")) {
		return nil, nil
	}
	var show showOutput
	if err := json.Unmarshal(out, &show); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode composer show output")
	}
	c := deps.NewCollector()
	for _, pkg := range show.Installed {
		c.Add(pkg.Name, pkg.Version, false)
	}
	return c.List(), nil
}

// ParseLockfile reads composer.lock; packages-dev entries are dev.
func ParseLockfile(path string) ([]deps.Dependency, error) {
	var lock lockFile
	if err := readJSON(path, &lock); err != nil {
		return nil, err
	}
	c := deps.NewCollector()
	for _, pkg := range lock.Packages {
		c.Add(pkg.Name, pkg.Version, false)
	}
	for _, pkg := range lock.PackagesDev {
		c.Add(pkg.Name, pkg.Version, true)
	}
	return c.List(), nil
}

// ParseManifest reads the declared require and require-dev ranges of a
// composer.json, excluding the php platform requirement.
func ParseManifest(path string) ([]deps.Dependency, error) {
	var comp composerFile
	if err := readJSON(path, &comp); err != nil {
		return nil, err
	}
	c := deps.NewCollector()
	for name, version := range comp.Require {
		if name != platformPHP {
			c.Add(name, version, false)
		}
	}
	for name, version := range comp.RequireDev {
		if name != platformPHP {
			c.Add(name, version, true)
		}
	}
	return c.List(), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeParse, err, "decode %s", path)
	}
	return nil
}
