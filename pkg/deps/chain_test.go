package deps

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/depscan/pkg/errors"
)

func fixed(name string, out Outcome) Strategy {
	return Strategy{Name: name, Run: func(context.Context, Project) Outcome { return out }}
}

func dep(name, version string) Dependency {
	return Dependency{Name: name, Version: version}
}

func TestChainStopsAtFirstNonEmptySuccess(t *testing.T) {
	var ranLast bool
	c := NewChain(NPM,
		fixed("resolver", Failure(errors.New(errors.ErrCodeToolFailed, "boom"))),
		fixed("lockfile", Success(nil)),
		fixed("manifest", Success([]Dependency{dep("lodash", "^4.17.21")})),
		Strategy{Name: "never", Run: func(context.Context, Project) Outcome {
			ranLast = true
			return Success([]Dependency{dep("x", "1")})
		}},
	)

	p := NewProject(NPM, "/repo", "web/package.json")
	res := c.Extract(context.Background(), p)

	if ranLast {
		t.Error("strategy after first non-empty success was run")
	}
	if res.Strategy != "manifest" {
		t.Errorf("Strategy = %q, want manifest", res.Strategy)
	}
	want := []Dependency{{Ecosystem: NPM, ProjectPath: "web/package.json", Name: "lodash", Version: "^4.17.21"}}
	if !reflect.DeepEqual(res.Dependencies, want) {
		t.Errorf("Dependencies = %+v, want %+v", res.Dependencies, want)
	}
	if len(res.Attempts) != 3 {
		t.Fatalf("Attempts = %d, want 3", len(res.Attempts))
	}
	if res.Attempts[0].Kind != KindFailure || res.Attempts[0].Err == nil {
		t.Errorf("first attempt = %+v, want failure with error", res.Attempts[0])
	}
}

func TestChainTerminalOutcomes(t *testing.T) {
	tests := []struct {
		name string
		out  Outcome
		kind OutcomeKind
	}{
		{"no manifest", NoManifest("pom.xml missing"), KindNoManifest},
		{"skipped", Skipped("inside vendor"), KindSkipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChain(Maven,
				fixed("gate", tt.out),
				fixed("manifest", Success([]Dependency{dep("a:b", "1")})),
			)
			res := c.Extract(context.Background(), NewProject(Maven, "/r", "pom.xml"))
			if !res.Empty() {
				t.Errorf("expected empty result, got %+v", res.Dependencies)
			}
			if res.Outcome != tt.kind {
				t.Errorf("Outcome = %v, want %v", res.Outcome, tt.kind)
			}
			if res.Reason != tt.out.Reason {
				t.Errorf("Reason = %q, want %q", res.Reason, tt.out.Reason)
			}
			if len(res.Attempts) != 1 {
				t.Errorf("Attempts = %d, want 1", len(res.Attempts))
			}
		})
	}
}

func TestChainExhaustedReturnsEmptyNotError(t *testing.T) {
	c := NewChain(Gradle,
		fixed("resolver", Failure(errors.New(errors.ErrCodeTimeout, "slow"))),
		fixed("buildfile", Success(nil)),
	)
	res := c.Extract(context.Background(), NewProject(Gradle, "/r", "build.gradle"))
	if res.Dependencies == nil || !res.Empty() {
		t.Errorf("Dependencies = %#v, want non-nil empty slice", res.Dependencies)
	}
	if res.Strategy != "" {
		t.Errorf("Strategy = %q, want empty", res.Strategy)
	}
	if res.Failed() {
		t.Error("Failed() = true after last strategy returned an empty success")
	}
	if !errors.Is(res.LastErr(), errors.ErrCodeTimeout) {
		t.Errorf("LastErr = %v, want TIMEOUT", res.LastErr())
	}
}

func TestChainRecoversPanics(t *testing.T) {
	c := NewChain(Composer,
		Strategy{Name: "broken", Run: func(context.Context, Project) Outcome { panic("nil map") }},
		fixed("manifest", Success([]Dependency{dep("guzzlehttp/guzzle", "^7.0")})),
	)
	res := c.Extract(context.Background(), NewProject(Composer, "/r", "composer.json"))
	if res.Strategy != "manifest" || len(res.Dependencies) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if !errors.Is(res.Attempts[0].Err, errors.ErrCodeInternal) {
		t.Errorf("panic attempt err = %v, want INTERNAL_ERROR", res.Attempts[0].Err)
	}
}

func TestChainDropsInvalidNames(t *testing.T) {
	c := NewChain(NPM, fixed("lockfile", Success([]Dependency{
		dep("", "1.0.0"),
		dep("  ", "1.0.0"),
		dep(" react ", " 18.2.0 "),
	})))
	res := c.Extract(context.Background(), NewProject(NPM, "/r", "package.json"))
	if len(res.Dependencies) != 1 {
		t.Fatalf("Dependencies = %+v, want 1", res.Dependencies)
	}
	if d := res.Dependencies[0]; d.Name != "react" || d.Version != "18.2.0" {
		t.Errorf("dependency = %+v", d)
	}
}

func TestChainCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran bool
	c := NewChain(NPM, Strategy{Name: "x", Run: func(context.Context, Project) Outcome {
		ran = true
		return Success(nil)
	}})
	res := c.Extract(ctx, NewProject(NPM, "/r", "package.json"))
	if ran {
		t.Error("strategy ran with canceled context")
	}
	if !res.Failed() || !errors.Is(res.LastErr(), errors.ErrCodeCanceled) {
		t.Errorf("result = %+v, want canceled failure", res)
	}
}

func TestRequireAndSkipUnder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "build.gradle.kts"), []byte("plugins {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := Project{Ecosystem: Gradle, RootDir: dir, ManifestFile: "build.gradle.kts", RelativePath: "build.gradle.kts"}

	if out := Require("build.gradle", "build.gradle.kts").Run(context.Background(), p); out.Kind != KindSuccess {
		t.Errorf("Require with kts present = %v", out.Kind)
	}
	if out := Require("pom.xml").Run(context.Background(), p); out.Kind != KindNoManifest {
		t.Errorf("Require with pom missing = %v", out.Kind)
	}

	vendored := NewProject(Composer, dir, "vendor/monolog/composer.json")
	if out := SkipUnder("vendor").Run(context.Background(), vendored); out.Kind != KindSkipped {
		t.Errorf("SkipUnder(vendor) = %v", out.Kind)
	}
	if out := SkipUnder("vendor").Run(context.Background(), p); out.Kind != KindSuccess {
		t.Errorf("SkipUnder on top-level project = %v", out.Kind)
	}
}

func TestBestEffortNeverStopsChain(t *testing.T) {
	s := BestEffort("install", func(context.Context, Project) error {
		return errors.New(errors.ErrCodeToolFailed, "npm install failed")
	})
	out := s.Run(context.Background(), NewProject(NPM, "/r", "package.json"))
	if out.Kind != KindSuccess || out.Terminal() {
		t.Errorf("BestEffort outcome = %+v, want non-terminal success", out)
	}
}

func TestOutcomeTerminal(t *testing.T) {
	tests := []struct {
		out  Outcome
		want bool
	}{
		{Success(nil), false},
		{Success([]Dependency{dep("a", "1")}), true},
		{NoManifest("x"), true},
		{Skipped("x"), true},
		{Failure(errors.New(errors.ErrCodeParse, "x")), false},
	}
	for _, tt := range tests {
		if got := tt.out.Terminal(); got != tt.want {
			t.Errorf("%v.Terminal() = %v, want %v", tt.out.Kind, got, tt.want)
		}
	}
}
