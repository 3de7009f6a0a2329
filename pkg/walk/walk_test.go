package walk

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/matzehuels/depscan/pkg/errors"
)

func tree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func collect(t *testing.T, w *Walker, root string) ([]string, []error, int) {
	t.Helper()
	var files []string
	var errs []error
	n := w.Walk(context.Background(), root, func(rel string) { files = append(files, rel) }, func(err error) { errs = append(errs, err) })
	sort.Strings(files)
	return files, errs, n
}

func TestWalkVisitsAllFiles(t *testing.T) {
	root := tree(t, "package.json", "web/package.json", "web/src/index.js", "api/pom.xml")

	files, errs, n := collect(t, &Walker{}, root)

	want := []string{"api/pom.xml", "package.json", "web/package.json", "web/src/index.js"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
	if n != len(want) {
		t.Errorf("count = %d, want %d", n, len(want))
	}
	if len(errs) != 0 {
		t.Errorf("errors = %v", errs)
	}
}

func TestWalkSkipsSymlinks(t *testing.T) {
	outside := tree(t, "secret/package.json")
	root := tree(t, "app/package.json")

	if err := os.Symlink(filepath.Join(outside, "secret"), filepath.Join(root, "linked-dir")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "app", "package.json"), filepath.Join(root, "linked.json")); err != nil {
		t.Fatal(err)
	}

	files, errs, n := collect(t, &Walker{}, root)
	if n != 1 || len(files) != 1 || files[0] != "app/package.json" {
		t.Errorf("files = %v (count %d), want only app/package.json", files, n)
	}
	if len(errs) != 0 {
		t.Errorf("symlinks produced errors: %v", errs)
	}
}

func TestWalkContinuesPastUnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := tree(t, "locked/package.json", "open/package.json")
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	files, errs, n := collect(t, &Walker{}, root)
	if n != 1 || files[0] != "open/package.json" {
		t.Errorf("files = %v, want open/package.json", files)
	}
	if len(errs) != 1 || !errors.Is(errs[0], errors.ErrCodeIO) {
		t.Errorf("errors = %v, want one IO error", errs)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	var errs []error
	n := (&Walker{}).Walk(context.Background(), filepath.Join(t.TempDir(), "nope"), func(string) {
		t.Error("onFile called for missing root")
	}, func(err error) { errs = append(errs, err) })
	if n != 0 || len(errs) != 1 {
		t.Errorf("count = %d, errors = %v", n, errs)
	}
}

func TestWalkExclude(t *testing.T) {
	root := tree(t, "app/package.json", "legacy/pom.xml", "app/testdata/fixture/package.json", "docs/readme.md")

	w, err := New("legacy", "**/testdata/**", "**/*.md")
	if err != nil {
		t.Fatal(err)
	}
	files, _, _ := collect(t, w, root)
	if len(files) != 1 || files[0] != "app/package.json" {
		t.Errorf("files = %v, want [app/package.json]", files)
	}
}

func TestNewRejectsBadPattern(t *testing.T) {
	if _, err := New("[unclosed"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("New([unclosed) err = %v, want INVALID_INPUT", err)
	}
}

func TestWalkCanceled(t *testing.T) {
	root := tree(t, "a/package.json", "b/package.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if n := (&Walker{}).Walk(ctx, root, func(string) {}, nil); n != 0 {
		t.Errorf("count = %d after cancel, want 0", n)
	}
}

func TestWalkIsRepeatable(t *testing.T) {
	root := tree(t, "a/package.json", "b/c/composer.json")
	first, _, _ := collect(t, &Walker{}, root)
	second, _, _ := collect(t, &Walker{}, root)
	if len(first) != len(second) {
		t.Errorf("walks differ: %v vs %v", first, second)
	}
}
