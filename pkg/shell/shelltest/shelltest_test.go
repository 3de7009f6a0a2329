package shelltest

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/shell"
)

func TestRunnerLongestPrefixWins(t *testing.T) {
	r := New().
		On("mvn", Response{Stdout: "generic"}).
		On("mvn help:effective-pom", Response{Stdout: "specific"})

	res, err := r.Run(context.Background(), shell.Command{Name: "mvn", Args: []string{"help:effective-pom", "-q"}})
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Stdout) != "specific" {
		t.Errorf("Stdout = %q, want specific", res.Stdout)
	}
	if !r.Called("mvn help:effective-pom") {
		t.Error("Called() = false, want true")
	}
}

func TestRunnerUnmatchedIsMissingTool(t *testing.T) {
	_, err := New().Run(context.Background(), shell.Command{Name: "gradle"})
	if !errors.Is(err, errors.ErrCodeToolNotFound) {
		t.Fatalf("error = %v, want TOOL_NOT_FOUND", err)
	}
}

func TestRunnerDelayHonoursTimeout(t *testing.T) {
	r := New().On("composer show", Response{Delay: time.Minute})

	start := time.Now()
	_, err := r.Run(context.Background(), shell.Command{
		Name:    "composer",
		Args:    []string{"show"},
		Timeout: 50 * time.Millisecond,
	})
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Fatalf("error = %v, want TIMEOUT", err)
	}
	if time.Since(start) > time.Second {
		t.Error("delayed response ignored the command timeout")
	}
}
