package deps

import (
	"context"
	"time"

	"github.com/matzehuels/depscan/pkg/shell"
)

// Default timeouts for external commands.
const (
	DefaultInstallTimeout = 5 * time.Minute
	DefaultResolveTimeout = 2 * time.Minute
)

// Command override keys. They match the keys of the [commands] table in
// .depscan.toml.
const (
	CmdNPMInstall        = "npm_install"
	CmdMavenInstall      = "maven_install"
	CmdMavenEffectivePOM = "maven_effective_pom"
	CmdGradleBuild       = "gradle_build"
	CmdGradleDeps        = "gradle_dependencies"
	CmdComposerInstall   = "composer_install"
	CmdComposerShow      = "composer_show"
)

// ToolEnv is appended to the environment of every package-manager run so no
// tool waits on a prompt or colors the output that strategies parse.
var ToolEnv = []string{"CI=true", "NO_COLOR=1", "COMPOSER_NO_INTERACTION=1"}

// CommandKeys lists every recognised command override key.
func CommandKeys() []string {
	return []string{
		CmdNPMInstall, CmdMavenInstall, CmdMavenEffectivePOM,
		CmdGradleBuild, CmdGradleDeps, CmdComposerInstall, CmdComposerShow,
	}
}

// Options configures the strategy chains.
type Options struct {
	Runner         shell.Runner        // Executes external tools (default: shell.NewRunner())
	InstallTimeout time.Duration       // Budget for install/build steps
	ResolveTimeout time.Duration       // Budget for resolver steps
	SkipInstall    bool                // Skip best-effort install/build steps
	Commands       map[string][]string // Per-key argv overrides (name followed by args)
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Runner == nil {
		o.Runner = shell.NewRunner()
	}
	if o.InstallTimeout <= 0 {
		o.InstallTimeout = DefaultInstallTimeout
	}
	if o.ResolveTimeout <= 0 {
		o.ResolveTimeout = DefaultResolveTimeout
	}
	return o
}

// Command returns the argv configured for key, or def when there is no
// override. The returned slice is always a fresh copy.
func (o Options) Command(key string, def ...string) []string {
	if argv, ok := o.Commands[key]; ok && len(argv) > 0 {
		return append([]string(nil), argv...)
	}
	return append([]string(nil), def...)
}

// Run executes argv in p's directory with timeout d through o.Runner.
func (o Options) Run(ctx context.Context, p Project, d time.Duration, argv []string) (*shell.Result, error) {
	return o.Runner.Run(ctx, shell.Command{
		Name:    argv[0],
		Args:    argv[1:],
		Dir:     p.RootDir,
		Timeout: d,
		Env:     ToolEnv,
	})
}
