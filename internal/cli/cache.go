package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscan/pkg/cache"
	"github.com/matzehuels/depscan/pkg/config"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the extraction result cache",
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cachePathCommand())
	return cmd
}

// clearTarget is one cache backend "cache clear" can empty.
type clearTarget struct {
	label    string // "Redis" or "Directory"
	location string
	clear    func(context.Context) (int, error)
	close    func() error
}

// resolveClearTarget picks Redis when a URL is given directly or through the
// configuration file, and the local cache directory otherwise. A nil target
// with a nil error means the local directory has never been created.
func resolveClearTarget(ctx context.Context, redisURL, configPath string) (*clearTarget, error) {
	if redisURL == "" && configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		redisURL = cfg.Cache.RedisURL
	}

	if redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			return nil, err
		}
		return &clearTarget{label: "Redis", location: redisURL, clear: rc.Clear, close: rc.Close}, nil
	}

	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return &clearTarget{
		label:    "Directory",
		location: dir,
		clear:    func(context.Context) (int, error) { return fc.Clear() },
		close:    fc.Close,
	}, nil
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var redisURL, configPath string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached extraction results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := printer{w: c.Stderr}
			target, err := resolveClearTarget(cmd.Context(), redisURL, configPath)
			if err != nil {
				return err
			}
			if target == nil {
				p.info("Cache is empty")
				return nil
			}
			defer target.close()

			n, err := target.clear(cmd.Context())
			if err != nil {
				return err
			}
			p.success("Cleared %s", plural(n, "cached entry", "cached entries"))
			p.detail("%s: %s", target.label, target.location)
			return nil
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis", "", "clear this Redis cache instead of the local directory")
	cmd.Flags().StringVar(&configPath, "config", "", "read cache.redis_url from this configuration file")
	return cmd
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.Stdout, dir)
			return nil
		},
	}
}
