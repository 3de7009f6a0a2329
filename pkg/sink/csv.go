package sink

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

// CSV writes records as comma-separated values with a header row.
type CSV struct {
	path     string
	location string

	mu   sync.Mutex
	w    io.Writer
	f    *os.File
	lock *outputLock
	cw   *csv.Writer
}

// NewCSV returns a sink that creates the file at path.
func NewCSV(path string) *CSV {
	return &CSV{path: path, location: absPath(path)}
}

// NewCSVWriter returns a sink that writes to w. Finalize reports location
// and does not close w.
func NewCSVWriter(w io.Writer, location string) *CSV {
	return &CSV{w: w, location: location}
}

// Initialize implements Sink.
func (s *CSV) Initialize(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w == nil {
		f, lock, err := createFile(s.path)
		if err != nil {
			return err
		}
		s.f, s.w, s.lock = f, f, lock
	}
	s.cw = csv.NewWriter(s.w)
	if err := s.cw.Write(Columns); err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "write csv header")
	}
	return s.flush()
}

// Append implements Sink.
func (s *CSV) Append(_ context.Context, batch []deps.Dependency) error {
	if len(batch) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cw == nil {
		return errors.New(errors.ErrCodeSink, "csv sink not initialized")
	}
	for _, d := range batch {
		if err := s.cw.Write(NewRecord(d).Row()); err != nil {
			return errors.Wrap(errors.ErrCodeSink, err, "write csv row")
		}
	}
	return s.flush()
}

// Finalize implements Sink.
func (s *CSV) Finalize(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *multierror.Error
	if s.cw != nil {
		result = multierror.Append(result, s.flush())
	}
	if s.f != nil {
		if err := s.f.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(errors.ErrCodeSink, err, "close %s", s.path))
		}
		s.f = nil
	}
	if err := s.lock.release(); err != nil {
		result = multierror.Append(result, errors.Wrap(errors.ErrCodeSink, err, "unlock %s", s.path))
	}
	s.lock = nil
	if err := result.ErrorOrNil(); err != nil {
		return "", errors.Wrap(errors.ErrCodeSink, err, "finalize csv")
	}
	return s.location, nil
}

func (s *CSV) flush() error {
	s.cw.Flush()
	if err := s.cw.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "flush csv")
	}
	return nil
}
