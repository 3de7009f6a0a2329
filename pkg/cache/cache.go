// Package cache stores extraction results between scans.
//
// Running package managers is slow, so a project whose manifest and
// lockfiles have not changed since the last scan is answered from the cache.
// Keys combine the project's ecosystem, its relative path and a fingerprint
// of its input files (see [Fingerprint]); any edit to those files produces a
// new key.
//
// # Backends
//
//   - [FileCache]: one file per entry under the user cache directory (default)
//   - [RedisCache]: a shared Redis instance, for CI fleets
//
// Disabling the cache (--no-cache) leaves the pipeline without a [Results]
// at all, so fingerprints are never computed.
//
// [Results] layers typed access to dependency lists over any backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
