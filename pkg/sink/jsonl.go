package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

// JSONL writes one JSON object per record per line.
type JSONL struct {
	path string

	mu   sync.Mutex
	f    *os.File
	lock *outputLock
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewJSONL returns a sink that creates the file at path.
func NewJSONL(path string) *JSONL {
	return &JSONL{path: path}
}

// Initialize implements Sink.
func (s *JSONL) Initialize(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, lock, err := createFile(s.path)
	if err != nil {
		return err
	}
	s.f, s.lock = f, lock
	s.buf = bufio.NewWriter(f)
	s.enc = json.NewEncoder(s.buf)
	return nil
}

// Append implements Sink.
func (s *JSONL) Append(_ context.Context, batch []deps.Dependency) error {
	if len(batch) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enc == nil {
		return errors.New(errors.ErrCodeSink, "jsonl sink not initialized")
	}
	for _, d := range batch {
		if err := s.enc.Encode(NewRecord(d)); err != nil {
			return errors.Wrap(errors.ErrCodeSink, err, "encode record")
		}
	}
	if err := s.buf.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "flush %s", s.path)
	}
	return nil
}

// Finalize implements Sink.
func (s *JSONL) Finalize(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return absPath(s.path), nil
	}
	var result *multierror.Error
	if err := s.buf.Flush(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.f.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.lock.release(); err != nil {
		result = multierror.Append(result, err)
	}
	s.f, s.enc, s.lock = nil, nil, nil
	if err := result.ErrorOrNil(); err != nil {
		return "", errors.Wrap(errors.ErrCodeSink, err, "finalize %s", s.path)
	}
	return absPath(s.path), nil
}
