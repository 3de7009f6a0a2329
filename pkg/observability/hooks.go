// Package observability carries depscan's instrumentation hooks.
//
// Scans, strategy attempts, package-manager subprocesses and cache lookups all
// report through the hook sets registered here. Every set defaults to a no-op,
// so instrumentation costs nothing until a consumer (the CLI's fallback tally,
// a test recorder) installs its own. Embed the Noop type to implement only the
// events you care about.
//
// Emitting an event:
//
//	observability.Pipeline().OnProjectStart(ctx, "npm", "web/package.json")
//	// ... extract ...
//	observability.Pipeline().OnProjectComplete(ctx, "npm", "web/package.json", "lockfile", 42, d, nil)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the scan orchestrator and strategy chains.
type PipelineHooks interface {
	// Scan events
	OnScanStart(ctx context.Context, root string)
	OnScanComplete(ctx context.Context, root string, projects, dependencies int, duration time.Duration, err error)

	// Project events. strategy names the strategy that produced the result
	// ("cache" for cache hits, empty when nothing produced dependencies).
	OnProjectStart(ctx context.Context, ecosystem, project string)
	OnProjectComplete(ctx context.Context, ecosystem, project, strategy string, dependencies int, duration time.Duration, err error)

	// OnStrategy records one strategy attempt and its outcome kind.
	OnStrategy(ctx context.Context, ecosystem, project, strategy, outcome string, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Command Hooks
// =============================================================================

// CommandHooks receives events from external package-manager invocations.
type CommandHooks interface {
	// OnCommandStart records a subprocess launch.
	OnCommandStart(ctx context.Context, name, dir string)

	// OnCommandComplete records a subprocess exit, timeout or spawn failure.
	OnCommandComplete(ctx context.Context, name string, exitCode int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnScanStart(context.Context, string) {}
func (NoopPipelineHooks) OnScanComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnProjectStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnProjectComplete(context.Context, string, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnStrategy(context.Context, string, string, string, string, time.Duration) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopCommandHooks is a no-op implementation of CommandHooks.
type NoopCommandHooks struct{}

func (NoopCommandHooks) OnCommandStart(context.Context, string, string)                       {}
func (NoopCommandHooks) OnCommandComplete(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds one registered hook set and the default Reset restores.
type slot[T any] struct {
	mu  sync.RWMutex
	cur T
	def T
}

func newSlot[T any](def T) *slot[T] { return &slot[T]{cur: def, def: def} }

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *slot[T]) set(h T, isNil bool) {
	if isNil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.cur = s.def
	s.mu.Unlock()
}

var (
	pipelineSlot = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	commandSlot  = newSlot[CommandHooks](NoopCommandHooks{})
)

// SetPipelineHooks registers pipeline hooks. A nil value is ignored.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.set(h, h == nil) }

// SetCacheHooks registers cache hooks. A nil value is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h, h == nil) }

// SetCommandHooks registers subprocess hooks. A nil value is ignored.
func SetCommandHooks(h CommandHooks) { commandSlot.set(h, h == nil) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// Command returns the registered command hooks.
func Command() CommandHooks { return commandSlot.get() }

// Reset restores every hook set to its no-op default.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	commandSlot.reset()
}
