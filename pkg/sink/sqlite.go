package sink

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS dependencies (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL DEFAULT '',
    project_type TEXT NOT NULL,
    project_path TEXT NOT NULL,
    dependency_name TEXT NOT NULL,
    dependency_version TEXT NOT NULL,
    is_dev INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dependencies_run ON dependencies(run_id);
CREATE INDEX IF NOT EXISTS idx_dependencies_name ON dependencies(dependency_name);`

// SQLite appends records to the "dependencies" table of a SQLite database.
// Each batch is written in one transaction. Existing rows are kept; rows
// from this run carry its run id.
type SQLite struct {
	path  string
	runID string

	mu sync.Mutex
	db *sql.DB
}

// NewSQLite returns a sink for the database file at path.
func NewSQLite(path, runID string) *SQLite {
	return &SQLite{path: path, runID: runID}
}

// Initialize implements Sink.
func (s *SQLite) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "create directory for %s", s.path)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "open %s", s.path)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return errors.Wrap(errors.ErrCodeSink, err, "apply pragma %s", p)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return errors.Wrap(errors.ErrCodeSink, err, "create schema in %s", s.path)
	}
	s.db = db
	return nil
}

// Append implements Sink.
func (s *SQLite) Append(ctx context.Context, batch []deps.Dependency) error {
	if len(batch) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errors.New(errors.ErrCodeSink, "sqlite sink not initialized")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dependencies(run_id, project_type, project_path, dependency_name, dependency_version, is_dev) VALUES(?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "prepare insert")
	}
	defer stmt.Close()

	for _, d := range batch {
		r := NewRecord(d)
		isDev := 0
		if r.IsDev {
			isDev = 1
		}
		if _, err := stmt.ExecContext(ctx, s.runID, r.ProjectType, r.ProjectPath, r.DependencyName, r.DependencyVersion, isDev); err != nil {
			return errors.Wrap(errors.ErrCodeSink, err, "insert %s", r.DependencyName)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "commit batch")
	}
	return nil
}

// Finalize implements Sink.
func (s *SQLite) Finalize(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return "", errors.Wrap(errors.ErrCodeSink, err, "close %s", s.path)
		}
		s.db = nil
	}
	return absPath(s.path), nil
}
