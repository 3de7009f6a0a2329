// Package cli implements the depscan command-line interface.
//
// # Commands
//
//   - scan: walk a tree, extract every project's dependencies, write them out
//   - detect: list the projects a scan would extract, without running anything
//   - cache: inspect or clear the result cache
//   - completion: shell completion scripts
//
// # Logging
//
// --debug (or -v/--verbose) switches to debug-level logging. The logger is
// created once per invocation and attached to the command context; packages
// below the CLI read it back with logging.FromContext.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depscan/pkg/buildinfo"
	"github.com/matzehuels/depscan/pkg/logging"
)

// appName is the application name used for directories and display.
const appName = "depscan"

// Process exit codes. Per-project failures never change the exit code; only
// an error returned from the command does.
const (
	ExitOK          = 0
	ExitFatal       = 1
	ExitInterrupted = 130
)

// ExitCode maps the error returned by the root command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitFatal
	}
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Stdout io.Writer // data (CSV to "-")
	Stderr io.Writer // logs, spinner and summary

	debug bool
}

// New creates a CLI writing data to stdout and everything else to stderr.
func New(stdout, stderr io.Writer) *CLI {
	return &CLI{
		Logger: logging.New(stderr, log.InfoLevel),
		Stdout: stdout,
		Stderr: stderr,
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depscan inventories the third-party dependencies of a source tree",
		Long: `depscan walks a directory tree, finds npm, Maven, Gradle and Composer projects,
and records every dependency each one declares or resolves into a CSV, JSON Lines,
SQLite or MongoDB sink.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if c.debug {
				level = log.DebugLevel
			}
			c.Logger.SetLevel(level)
			cmd.SetContext(logging.WithLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Stdout)
	root.SetErr(c.Stderr)

	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&c.debug, "verbose", "v", false, "alias for --debug")

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.detectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// cacheDir returns the cache directory using XDG standard (~/.cache/depscan/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
