package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/pipeline"
)

func TestPrintSummary(t *testing.T) {
	s := &pipeline.Summary{
		Root:         "/src/repo",
		Files:        120,
		Projects:     3,
		Dependencies: 41,
		Location:     "/tmp/dependencies.csv",
		Duration:     1500 * time.Millisecond,
		Ecosystems: map[deps.Ecosystem]*pipeline.EcosystemStats{
			deps.NPM: {
				Projects:     2,
				Dependencies: 40,
				Statuses:     map[pipeline.Status]int{pipeline.StatusExtracted: 1, pipeline.StatusSkipped: 1},
				Strategies:   map[string]int{"lockfile": 1},
			},
			deps.Maven: {
				Projects:     1,
				Dependencies: 1,
				Statuses:     map[pipeline.Status]int{pipeline.StatusCached: 1},
				Strategies:   map[string]int{"cache": 1},
			},
		},
	}
	tally := newStrategyTally()
	tally.OnStrategy(context.Background(), "maven", "api/pom.xml", "effective-pom", "failure", 0)
	tally.OnStrategy(context.Background(), "maven", "api/pom.xml", "pom", "success", 0)

	var buf bytes.Buffer
	printer{w: &buf}.summary(s, tally)
	out := buf.String()

	for _, want := range []string{
		"Scanned /src/repo in 1.5s",
		"120 files",
		"3 projects",
		"41 dependencies",
		"1 cached",
		"npm",
		"lockfile 1",
		"1 vendored",
		"fallbacks: maven/effective-pom 1",
		"/tmp/dependencies.csv",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "failed") {
		t.Errorf("summary reports failures that did not happen:\n%s", out)
	}
}

func TestFormatCounts(t *testing.T) {
	tests := []struct {
		in   map[string]int
		want string
	}{
		{nil, ""},
		{map[string]int{"a": 1}, "a 1"},
		{map[string]int{"b": 1, "a": 1, "c": 3}, "c 3 · a 1 · b 1"},
	}
	for _, tt := range tests {
		if got := formatCounts(tt.in); got != tt.want {
			t.Errorf("formatCounts(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "file", "files"); got != "1 file" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(0, "file", "files"); got != "0 files" {
		t.Errorf("plural(0) = %q", got)
	}
}
