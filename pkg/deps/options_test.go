package deps

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/depscan/pkg/shell/shelltest"
)

func TestOptionsRun(t *testing.T) {
	r := shelltest.New().On("composer show", shelltest.Response{Stdout: "{}"})
	opts := Options{Runner: r}.WithDefaults()
	p := NewProject(Composer, "/repo", "app/composer.json")

	argv := opts.Command(CmdComposerShow, "composer", "show", "--format=json")
	if _, err := opts.Run(context.Background(), p, time.Second, argv); err != nil {
		t.Fatal(err)
	}

	calls := r.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	c := calls[0]
	if c.Dir != p.RootDir || c.Timeout != time.Second {
		t.Errorf("Dir, Timeout = %q, %v", c.Dir, c.Timeout)
	}
	if !reflect.DeepEqual(c.Env, ToolEnv) {
		t.Errorf("Env = %v, want %v", c.Env, ToolEnv)
	}
}
