package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/depscan/pkg/deps"
)

// Status classifies how a single project ended.
type Status string

const (
	StatusExtracted   Status = "extracted"    // chain produced dependencies
	StatusCached      Status = "cached"       // served from the result cache
	StatusEmpty       Status = "empty"        // chain ran cleanly but found nothing
	StatusSkipped     Status = "skipped"      // vendored copy
	StatusNoManifest  Status = "no-manifest"  // manifest vanished between detection and extraction
	StatusFailed      Status = "failed"       // every strategy failed
	StatusTimedOut    Status = "timed-out"    // project budget exceeded
	StatusWriteFailed Status = "write-failed" // dependencies found but the sink rejected them
)

// EcosystemStats aggregates one ecosystem's projects.
type EcosystemStats struct {
	Projects     int
	Dependencies int
	Statuses     map[Status]int
	Strategies   map[string]int // winning strategy name -> projects
}

// Summary describes a finished scan. It is safe for concurrent updates
// while the scan runs and should be treated as read-only afterwards.
type Summary struct {
	RunID        string
	Root         string
	Files        int // regular files visited
	WalkErrors   int // unreadable directories
	Projects     int
	Dependencies int // rows handed to the sink successfully
	Location     string
	Duration     time.Duration
	Ecosystems   map[deps.Ecosystem]*EcosystemStats

	mu sync.Mutex
}

func newSummary(runID, root string) *Summary {
	return &Summary{RunID: runID, Root: root, Ecosystems: make(map[deps.Ecosystem]*EcosystemStats)}
}

func (s *Summary) stats(eco deps.Ecosystem) *EcosystemStats {
	es, ok := s.Ecosystems[eco]
	if !ok {
		es = &EcosystemStats{Statuses: make(map[Status]int), Strategies: make(map[string]int)}
		s.Ecosystems[eco] = es
	}
	return es
}

func (s *Summary) addProject(p deps.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Projects++
	s.stats(p.Ecosystem).Projects++
}

func (s *Summary) record(p deps.Project, o projectOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	es := s.stats(p.Ecosystem)
	es.Statuses[o.status]++
	if o.status == StatusExtracted || o.status == StatusCached {
		es.Dependencies += len(o.deps)
		es.Strategies[o.strategy]++
		s.Dependencies += len(o.deps)
	}
}

// Count returns how many projects across all ecosystems ended with status.
func (s *Summary) Count(status Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, es := range s.Ecosystems {
		n += es.Statuses[status]
	}
	return n
}

// SortedEcosystems returns the ecosystems that had at least one project, in
// declaration order.
func (s *Summary) SortedEcosystems() []deps.Ecosystem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]deps.Ecosystem, 0, len(s.Ecosystems))
	for eco := range s.Ecosystems {
		out = append(out, eco)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
