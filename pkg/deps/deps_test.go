package deps

import (
	"path/filepath"
	"testing"
)

func TestNewProject(t *testing.T) {
	root := filepath.Join("/", "repo")

	tests := []struct {
		rel      string
		wantDir  string
		wantFile string
		wantRel  string
	}{
		{"package.json", root, "package.json", "package.json"},
		{"web/app/package.json", filepath.Join(root, "web", "app"), "package.json", "web/app/package.json"},
		{filepath.Join("api", "pom.xml"), filepath.Join(root, "api"), "pom.xml", "api/pom.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			p := NewProject(NPM, root, tt.rel)
			if p.RootDir != tt.wantDir {
				t.Errorf("RootDir = %q, want %q", p.RootDir, tt.wantDir)
			}
			if p.ManifestFile != tt.wantFile {
				t.Errorf("ManifestFile = %q, want %q", p.ManifestFile, tt.wantFile)
			}
			if p.RelativePath != tt.wantRel {
				t.Errorf("RelativePath = %q, want %q", p.RelativePath, tt.wantRel)
			}
			if p.ManifestPath() != filepath.Join(tt.wantDir, tt.wantFile) {
				t.Errorf("ManifestPath = %q", p.ManifestPath())
			}
		})
	}
}

func TestProjectUnder(t *testing.T) {
	tests := []struct {
		rel     string
		segment string
		want    bool
	}{
		{"package.json", "node_modules", false},
		{"node_modules/lodash/package.json", "node_modules", true},
		{"web/node_modules/a/b/package.json", "node_modules", true},
		{"my_node_modules/package.json", "node_modules", false},
		{"vendor/guzzle/composer.json", "vendor", true},
		{"app/composer.json", "vendor", false},
	}
	for _, tt := range tests {
		p := NewProject(NPM, "/vendor/root", tt.rel)
		if got := p.Under(tt.segment); got != tt.want {
			t.Errorf("Under(%q) for %q = %v, want %v", tt.segment, tt.rel, got, tt.want)
		}
	}
}
