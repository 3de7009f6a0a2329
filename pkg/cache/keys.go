package cache

// schemaVersion is bumped when the cached result format or extraction
// semantics change, invalidating older entries.
const schemaVersion = 1

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey identifies the extraction result of one project state.
	ResultKey(ecosystem, project, fingerprint string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey hashes the ecosystem, project path and input fingerprint.
func (DefaultKeyer) ResultKey(ecosystem, project, fingerprint string) string {
	return hashKey("deps:"+ecosystem, schemaVersion, project, fingerprint)
}

// ScopedKeyer wraps a Keyer with a prefix, separating cache namespaces.
// Scans key their results by scan root so identical relative paths in
// different checkouts never share entries:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), Hash([]byte(absRoot))[:16]+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey generates a prefixed result key.
func (k *ScopedKeyer) ResultKey(ecosystem, project, fingerprint string) string {
	return k.prefix + k.inner.ResultKey(ecosystem, project, fingerprint)
}
