// Package sink persists dependency records as they are extracted.
//
// A Sink is driven in three phases:
//
//	s.Initialize(ctx)                 // create the destination, write a header or schema
//	s.Append(ctx, batch)              // once per project, from any goroutine
//	location, err := s.Finalize(ctx)  // flush, close, report where the output went
//
// Each Append is atomic with respect to other Appends: one project's records
// are written contiguously and never interleave with another's. Batches may
// arrive in any project order.
//
// The destination is chosen from the output location by [Open]:
//
//	"-" (stdout)                      CSV on stdout
//	*.csv (default)                   CSV file
//	*.jsonl, *.ndjson                 JSON Lines file
//	*.db, *.sqlite, *.sqlite3         SQLite database (table "dependencies")
//	mongodb://..., mongodb+srv://...  MongoDB collection (?collection=, default "dependencies")
package sink

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

// DefaultLocation is used when no output location is given.
const DefaultLocation = "dependencies.csv"

// Stdout is the location that writes CSV to standard output.
const Stdout = "-"

// Sink receives dependency batches.
type Sink interface {
	// Initialize prepares the destination. It is called once, before Append.
	Initialize(ctx context.Context) error

	// Append durably persists one batch. It is safe for concurrent use.
	Append(ctx context.Context, batch []deps.Dependency) error

	// Finalize flushes and closes the destination and returns its location.
	Finalize(ctx context.Context) (string, error)
}

// Record is the flat output shape of a dependency. Absent values are empty
// strings, never null.
type Record struct {
	RunID             string `json:"-" bson:"run_id,omitempty"`
	ProjectType       string `json:"projectType" bson:"project_type"`
	ProjectPath       string `json:"projectPath" bson:"project_path"`
	DependencyName    string `json:"dependencyName" bson:"dependency_name"`
	DependencyVersion string `json:"dependencyVersion" bson:"dependency_version"`
	IsDev             bool   `json:"isDev" bson:"is_dev"`
}

// NewRecord converts a dependency to its output shape.
func NewRecord(d deps.Dependency) Record {
	return Record{
		ProjectType:       d.Ecosystem.String(),
		ProjectPath:       d.ProjectPath,
		DependencyName:    d.Name,
		DependencyVersion: d.Version,
		IsDev:             d.IsDev,
	}
}

// Columns is the field order of tabular sinks.
var Columns = []string{"project_type", "project_path", "dependency_name", "dependency_version", "is_dev"}

// Row returns the record's values in Columns order.
func (r Record) Row() []string {
	return []string{r.ProjectType, r.ProjectPath, r.DependencyName, r.DependencyVersion, strconv.FormatBool(r.IsDev)}
}

// Options configures sinks created by Open.
type Options struct {
	// RunID tags rows in database sinks so repeated scans into the same
	// database can be told apart.
	RunID string

	// Stdout is where "-" writes (default os.Stdout).
	Stdout io.Writer
}

// Open returns the sink for location without touching the destination;
// that happens in Initialize.
func Open(location string, opts Options) (Sink, error) {
	if location == "" {
		location = DefaultLocation
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	if location == Stdout {
		return NewCSVWriter(opts.Stdout, "stdout"), nil
	}
	if strings.HasPrefix(location, "mongodb://") || strings.HasPrefix(location, "mongodb+srv://") {
		return NewMongo(location, opts.RunID)
	}

	switch strings.ToLower(filepath.Ext(location)) {
	case ".jsonl", ".ndjson":
		return NewJSONL(location), nil
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLite(location, opts.RunID), nil
	case ".csv", "":
		return NewCSV(location), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported output format %q (use .csv, .jsonl, .db or a mongodb:// URI)", location)
}

// createFile opens path for writing, creating parent directories. The
// returned lock keeps a second scan from truncating the same file while this
// one writes it; release it after closing the file.
func createFile(path string) (*os.File, *outputLock, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeSink, err, "create directory %s", dir)
		}
	}
	lock, err := lockOutput(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		_ = lock.release()
		return nil, nil, errors.Wrap(errors.ErrCodeSink, err, "create %s", path)
	}
	return f, lock, nil
}

// outputLock is an advisory lock held in "<output>.lock".
type outputLock struct {
	*flock.Flock
}

func lockOutput(path string) (*outputLock, error) {
	l := flock.New(path + ".lock")
	locked, err := l.TryLock()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSink, err, "lock %s", path)
	}
	if !locked {
		return nil, errors.New(errors.ErrCodeSink, "%s is being written by another scan", path)
	}
	return &outputLock{l}, nil
}

// release unlocks and removes the lock file. A nil lock is a no-op.
func (l *outputLock) release() error {
	if l == nil {
		return nil
	}
	err := l.Unlock()
	_ = os.Remove(l.Path())
	return err
}

// absPath returns path made absolute, or path itself if that fails.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
