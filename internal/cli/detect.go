package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/deps/ecosystems"
	"github.com/matzehuels/depscan/pkg/detect"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/walk"
)

// detectCommand creates the detect command.
func (c *CLI) detectCommand() *cobra.Command {
	var (
		exclude    []string
		strategies bool
	)

	cmd := &cobra.Command{
		Use:   "detect <path>",
		Short: "List the projects a scan would extract",
		Long: `Detect walks path and prints every project it finds, one per line, as
"<ecosystem> <relative manifest path>". Nothing is installed or resolved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			if err := errors.ValidateRoot(root); err != nil {
				return err
			}
			w, err := walk.New(exclude...)
			if err != nil {
				return err
			}

			projects, stats := detect.New(w).Detect(cmd.Context(), root)
			for _, p := range projects {
				fmt.Fprintf(c.Stdout, "%-9s %s\n", p.Ecosystem, p.RelativePath)
			}

			out := printer{w: c.Stderr}
			if strategies {
				table := ecosystems.New(deps.Options{})
				for _, eco := range deps.Ecosystems() {
					out.keyValue(eco.String(), joinParts(table.Strategies(eco)))
				}
			}
			out.info("%s in %s", plural(len(projects), "project", "projects"), plural(stats.Files, "file", "files"))
			if stats.Errors > 0 {
				out.warning("%s could not be read", plural(stats.Errors, "directory", "directories"))
			}
			return cmd.Context().Err()
		},
	}

	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "glob of paths to skip, relative to path (repeatable)")
	cmd.Flags().BoolVar(&strategies, "strategies", false, "also print each ecosystem's strategy chain")
	return cmd
}
