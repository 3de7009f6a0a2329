// Package config loads depscan settings from a TOML file.
//
// The file is optional. It is read from an explicit path (--config) or from
// .depscan.toml in the scan root; command-line flags override its values.
//
//	workers = 8
//	skip_install = false
//	exclude = ["**/testdata/**", "legacy"]
//	output = "inventory.csv"
//
//	[timeouts]
//	install = "5m"
//	resolve = "2m"
//	project = "10m"
//
//	[cache]
//	enabled = true
//	ttl = "24h"
//	redis_url = "redis://cache.internal:6379/0"
//
//	[commands]
//	npm_install = "npm ci --ignore-scripts"
//	gradle_dependencies = "gradle dependencies --configuration runtimeClasspath"
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/shlex"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

// FileName is the configuration file looked up in the scan root.
const FileName = ".depscan.toml"

// Defaults.
const (
	DefaultWorkers        = 4
	DefaultInstallTimeout = deps.DefaultInstallTimeout
	DefaultResolveTimeout = deps.DefaultResolveTimeout
	DefaultCacheTTL       = 24 * time.Hour
)

// Duration is a time.Duration written as a Go duration string ("90s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds every setting the file can carry.
type Config struct {
	Workers     int               `toml:"workers"`
	SkipInstall bool              `toml:"skip_install"`
	Exclude     []string          `toml:"exclude"`
	Output      string            `toml:"output"`
	Timeouts    Timeouts          `toml:"timeouts"`
	Cache       Cache             `toml:"cache"`
	Commands    map[string]string `toml:"commands"`

	// Source is the file the configuration was read from ("" for defaults).
	Source string `toml:"-"`
}

// Timeouts bound external commands and whole projects.
type Timeouts struct {
	Install Duration `toml:"install"`
	Resolve Duration `toml:"resolve"`
	Project Duration `toml:"project"` // zero disables the per-project bound
}

// Cache configures the result cache.
type Cache struct {
	Enabled  bool     `toml:"enabled"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Workers: DefaultWorkers,
		Timeouts: Timeouts{
			Install: Duration{DefaultInstallTimeout},
			Resolve: Duration{DefaultResolveTimeout},
		},
		Cache: Cache{
			Enabled: true,
			TTL:     Duration{DefaultCacheTTL},
		},
	}
}

// Load reads the file at path over the defaults. Unknown keys are an error
// so typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Source = path
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Resolve loads the explicit path if given, else root's .depscan.toml if it
// exists, else the defaults.
func Resolve(explicit, root string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return Default(), nil
}

// Validate checks value ranges, exclude globs and command overrides.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be at least 1, got %d", c.Workers)
	}
	for name, d := range map[string]time.Duration{
		"timeouts.install": c.Timeouts.Install.Duration,
		"timeouts.resolve": c.Timeouts.Resolve.Duration,
		"timeouts.project": c.Timeouts.Project.Duration,
		"cache.ttl":        c.Cache.TTL.Duration,
	} {
		if d < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative", name)
		}
	}
	for _, g := range c.Exclude {
		if !doublestar.ValidatePattern(g) {
			return errors.New(errors.ErrCodeInvalidConfig, "invalid exclude pattern %q", g)
		}
	}
	_, err := c.CommandArgs()
	return err
}

// CommandArgs splits the [commands] overrides into argv slices.
func (c *Config) CommandArgs() (map[string][]string, error) {
	known := make(map[string]bool)
	for _, k := range deps.CommandKeys() {
		known[k] = true
	}

	keys := make([]string, 0, len(c.Commands))
	for k := range c.Commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string][]string, len(keys))
	for _, k := range keys {
		if !known[k] {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown command %q (known: %s)", k, strings.Join(deps.CommandKeys(), ", "))
		}
		argv, err := shlex.Split(c.Commands[k])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "command %s", k)
		}
		if len(argv) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "command %s is empty", k)
		}
		out[k] = argv
	}
	return out, nil
}
