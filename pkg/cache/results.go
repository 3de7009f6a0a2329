package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/observability"
)

// DefaultTTL is how long extraction results are kept.
const DefaultTTL = 24 * time.Hour

const keyTypeResult = "result"

// cachedResult is the stored form of an extraction result.
type cachedResult struct {
	Strategy     string      `json:"strategy"`
	Dependencies []cachedDep `json:"dependencies"`
	StoredAt     time.Time   `json:"stored_at"`
}

type cachedDep struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	IsDev   bool   `json:"dev,omitempty"`
}

// Results stores dependency lists keyed by project state.
type Results struct {
	Cache   Cache
	Keyer   Keyer
	TTL     time.Duration
	Refresh bool // Skip reads; writes still happen
}

// Key returns the cache key for p given its input files, or an error when
// an input cannot be read.
func (r *Results) Key(p deps.Project, inputs []string) (string, error) {
	fp, err := Fingerprint(inputs)
	if err != nil {
		return "", err
	}
	keyer := r.Keyer
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return keyer.ResultKey(p.Ecosystem.String(), p.RelativePath, fp), nil
}

// Get returns the cached dependencies of p under key, tagged with p, and
// the strategy that originally produced them.
func (r *Results) Get(ctx context.Context, key string, p deps.Project) ([]deps.Dependency, string, bool, error) {
	if r.Refresh {
		return nil, "", false, nil
	}
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, keyTypeResult)
		return nil, "", false, err
	}
	var cr cachedResult
	if err := json.Unmarshal(data, &cr); err != nil {
		observability.Cache().OnCacheMiss(ctx, keyTypeResult)
		return nil, "", false, errors.Wrap(errors.ErrCodeCache, err, "decode cached result")
	}
	observability.Cache().OnCacheHit(ctx, keyTypeResult)

	out := make([]deps.Dependency, len(cr.Dependencies))
	for i, d := range cr.Dependencies {
		out[i] = deps.Dependency{
			Ecosystem:   p.Ecosystem,
			ProjectPath: p.RelativePath,
			Name:        d.Name,
			Version:     d.Version,
			IsDev:       d.IsDev,
		}
	}
	return out, cr.Strategy, true, nil
}

// Set stores a non-empty result. Empty results are never cached, so a
// project whose tools were unavailable is retried on the next scan.
func (r *Results) Set(ctx context.Context, key, strategy string, ds []deps.Dependency) error {
	if len(ds) == 0 {
		return nil
	}
	cr := cachedResult{Strategy: strategy, Dependencies: make([]cachedDep, len(ds)), StoredAt: time.Now().UTC()}
	for i, d := range ds {
		cr.Dependencies[i] = cachedDep{Name: d.Name, Version: d.Version, IsDev: d.IsDev}
	}
	data, err := json.Marshal(cr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCache, err, "encode result")
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyTypeResult, len(data))
	return nil
}
