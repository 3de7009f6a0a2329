package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depscan/pkg/cache"
	"github.com/matzehuels/depscan/pkg/config"
	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/deps/ecosystems"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/logging"
	"github.com/matzehuels/depscan/pkg/observability"
	"github.com/matzehuels/depscan/pkg/pipeline"
	"github.com/matzehuels/depscan/pkg/shell"
	"github.com/matzehuels/depscan/pkg/sink"
	"github.com/matzehuels/depscan/pkg/walk"
)

// scanFlags holds the command-line overrides of the scan command.
type scanFlags struct {
	output         string
	configPath     string
	workers        int
	skipInstall    bool
	installTimeout time.Duration
	resolveTimeout time.Duration
	projectTimeout time.Duration
	exclude        []string
	noCache        bool
	refresh        bool
}

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Extract the dependencies of every project under path",
		Long: `Scan walks path, detects npm (package.json), Maven (pom.xml), Gradle
(build.gradle, build.gradle.kts) and Composer (composer.json) projects, and
extracts each one's dependencies with the best source available: resolver
output, then lockfile, then the manifest's declared ranges.

The output location selects the format:
  deps.csv, or "-" for stdout     CSV (default: dependencies.csv)
  deps.jsonl, deps.ndjson          JSON Lines
  deps.db, deps.sqlite             SQLite
  mongodb://host/db?collection=c   MongoDB

Per-project failures never stop a scan; run with --debug to see them.`,
		Example: `  depscan scan .
  depscan scan ~/src/monorepo -o inventory.db --workers 8 --skip-install
  depscan scan . -o - --exclude 'testdata/**' | grep lodash`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScan(cmd, args[0], flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output location (default \"dependencies.csv\")")
	f.StringVar(&flags.configPath, "config", "", "configuration file (default <path>/"+config.FileName+")")
	f.IntVar(&flags.workers, "workers", config.DefaultWorkers, "projects extracted concurrently")
	f.BoolVar(&flags.skipInstall, "skip-install", false, "never run package-manager install steps")
	f.DurationVar(&flags.installTimeout, "install-timeout", config.DefaultInstallTimeout, "timeout for install commands")
	f.DurationVar(&flags.resolveTimeout, "resolve-timeout", config.DefaultResolveTimeout, "timeout for resolver commands")
	f.DurationVar(&flags.projectTimeout, "project-timeout", 0, "wall-clock budget per project (0 disables)")
	f.StringArrayVar(&flags.exclude, "exclude", nil, "glob of paths to skip, relative to path (repeatable)")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")
	f.BoolVar(&flags.refresh, "refresh", false, "ignore cached results but store fresh ones")

	return cmd
}

// runScan executes the scan command.
func (c *CLI) runScan(cmd *cobra.Command, root string, flags scanFlags) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	if err := errors.ValidateRoot(root); err != nil {
		return err
	}
	cfg, err := config.Resolve(flags.configPath, root)
	if err != nil {
		return err
	}
	if err := applyScanFlags(cmd, cfg, flags); err != nil {
		return err
	}
	if cfg.Source != "" {
		logger.Debug("loaded config", "path", cfg.Source)
	}

	commands, err := cfg.CommandArgs()
	if err != nil {
		return err
	}
	walker, err := walk.New(cfg.Exclude...)
	if err != nil {
		return err
	}

	results, closeCache := c.openResults(ctx, cfg, flags.refresh)
	defer closeCache()

	runID := uuid.NewString()
	out, err := sink.Open(cfg.Output, sink.Options{RunID: runID, Stdout: c.Stdout})
	if err != nil {
		return err
	}

	table := ecosystems.New(deps.Options{
		Runner:         shell.NewRunner(),
		InstallTimeout: cfg.Timeouts.Install.Duration,
		ResolveTimeout: cfg.Timeouts.Resolve.Duration,
		SkipInstall:    cfg.SkipInstall,
		Commands:       commands,
	})
	runner := pipeline.NewRunner(table, results, pipeline.Options{
		Workers:        cfg.Workers,
		ProjectTimeout: cfg.Timeouts.Project.Duration,
		Walker:         walker,
		RunID:          runID,
	})

	tally := newStrategyTally()
	observability.SetPipelineHooks(tally)
	defer observability.SetPipelineHooks(observability.NoopPipelineHooks{})

	stop := func() {}
	if !c.debug && isTerminal(c.Stderr) {
		stop = progressLine(ctx, c.Stderr, func() string {
			return fmt.Sprintf("Scanning %s (%d projects done)", root, tally.completed())
		})
	}

	summary, err := runner.Execute(ctx, root, out)
	stop()

	p := printer{w: c.Stderr}
	if summary != nil {
		p.summary(summary, tally)
	}
	return err
}

// applyScanFlags layers explicitly set flags over the loaded configuration.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config, flags scanFlags) error {
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.Output = flags.output
	}
	if f.Changed("workers") {
		cfg.Workers = flags.workers
	}
	if f.Changed("skip-install") {
		cfg.SkipInstall = flags.skipInstall
	}
	if f.Changed("install-timeout") {
		cfg.Timeouts.Install.Duration = flags.installTimeout
	}
	if f.Changed("resolve-timeout") {
		cfg.Timeouts.Resolve.Duration = flags.resolveTimeout
	}
	if f.Changed("project-timeout") {
		cfg.Timeouts.Project.Duration = flags.projectTimeout
	}
	if f.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, flags.exclude...)
	}
	if flags.noCache {
		cfg.Cache.Enabled = false
	}
	return cfg.Validate()
}

// openResults builds the result cache the configuration asks for. Cache
// problems never fail a scan: they are logged and the scan runs uncached.
func (c *CLI) openResults(ctx context.Context, cfg *config.Config, refresh bool) (*cache.Results, func()) {
	logger := logging.FromContext(ctx)
	noop := func() {}
	if !cfg.Cache.Enabled {
		return nil, noop
	}

	backend, err := openCache(ctx, cfg.Cache.RedisURL)
	if err != nil {
		logger.Warn("result cache unavailable, scanning without it", "err", err)
		return nil, noop
	}
	results := &cache.Results{
		Cache:   backend,
		Keyer:   cache.NewDefaultKeyer(),
		TTL:     cfg.Cache.TTL.Duration,
		Refresh: refresh,
	}
	return results, func() { _ = backend.Close() }
}

// openCache returns the Redis cache when url is set, else the file cache in
// the XDG cache directory.
func openCache(ctx context.Context, redisURL string) (cache.Cache, error) {
	if redisURL != "" {
		return cache.NewRedisCache(ctx, redisURL)
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCache, err, "locate cache directory")
	}
	return cache.NewFileCache(dir)
}
