// Package walk enumerates regular files below a directory.
//
// Symbolic links are never followed and never reported, so nothing outside
// the scanned tree can leak into a scan. Unreadable directories and entries
// are reported through an error callback and skipped; the rest of the tree
// is still visited.
package walk

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/depscan/pkg/errors"
)

// Walker visits files depth-first. The zero value excludes nothing.
type Walker struct {
	// Exclude holds doublestar globs matched against slash-separated paths
	// relative to the root (e.g., "**/testdata/**" or "legacy"). A matching
	// directory is not descended into.
	Exclude []string
}

// New returns a Walker after validating the exclude patterns.
func New(exclude ...string) (*Walker, error) {
	for _, g := range exclude {
		if !doublestar.ValidatePattern(g) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid exclude pattern %q", g)
		}
	}
	return &Walker{Exclude: exclude}, nil
}

// Walk visits every regular file below root and calls onFile with its
// slash-separated path relative to root. Failures to read a directory or
// stat an entry are passed to onError (which may be nil) and affect only
// that entry. Walk stops early when ctx is canceled.
//
// It returns the number of files passed to onFile.
func (w *Walker) Walk(ctx context.Context, root string, onFile func(rel string), onError func(err error)) int {
	if onError == nil {
		onError = func(error) {}
	}
	return w.walkDir(ctx, root, "", onFile, onError)
}

func (w *Walker) walkDir(ctx context.Context, root, rel string, onFile func(string), onError func(error)) int {
	if ctx.Err() != nil {
		return 0
	}
	dir := filepath.Join(root, filepath.FromSlash(rel))
	entries, err := os.ReadDir(dir)
	if err != nil {
		onError(errors.Wrap(errors.ErrCodeIO, err, "read directory %s", dir))
		// ReadDir returns the entries it read before failing.
	}

	count := 0
	for _, entry := range entries {
		child := path.Join(rel, entry.Name())
		info, err := entry.Info()
		if err != nil {
			onError(errors.Wrap(errors.ErrCodeIO, err, "stat %s", filepath.Join(dir, entry.Name())))
			continue
		}
		switch mode := info.Mode(); {
		case mode&os.ModeSymlink != 0:
			continue
		case mode.IsDir():
			if w.excluded(child, true) {
				continue
			}
			count += w.walkDir(ctx, root, child, onFile, onError)
		case mode.IsRegular():
			if w.excluded(child, false) {
				continue
			}
			onFile(child)
			count++
		}
	}
	return count
}

func (w *Walker) excluded(rel string, dir bool) bool {
	for _, g := range w.Exclude {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if dir {
			if ok, _ := doublestar.Match(g, rel+"/"); ok {
				return true
			}
		}
	}
	return false
}
