// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pack and unpack runs and about individual archive
// entries.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which keeps the archive
// packages free of any particular metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetArchiveHooks(&myArchiveHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnPackStart(ctx, path)
//	// ... write the archive ...
//	observability.Pipeline().OnPackComplete(ctx, path, nodes, chunks, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from pack and unpack runs.
type PipelineHooks interface {
	// Pack events
	OnPackStart(ctx context.Context, path string)
	OnPackComplete(ctx context.Context, path string, nodes, chunks int, duration time.Duration, err error)

	// Unpack events
	OnUnpackStart(ctx context.Context, path string)
	OnUnpackComplete(ctx context.Context, path string, nodes, chunks int, duration time.Duration, err error)
}

// =============================================================================
// Archive Hooks
// =============================================================================

// ArchiveHooks receives events from archive writers and readers.
type ArchiveHooks interface {
	// OnEntryWritten records an entry appended to an archive.
	OnEntryWritten(name string, nodes, size int, duration time.Duration)

	// OnEntryRead records an entry read and decoded from an archive.
	OnEntryRead(name string, nodes, size int, duration time.Duration)

	// OnFailed records a writer or reader entering its failed state.
	OnFailed(op string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnPackStart(context.Context, string) {}
func (NoopPipelineHooks) OnPackComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnUnpackStart(context.Context, string) {}
func (NoopPipelineHooks) OnUnpackComplete(context.Context, string, int, int, time.Duration, error) {
}

// NoopArchiveHooks is a no-op implementation of ArchiveHooks.
type NoopArchiveHooks struct{}

func (NoopArchiveHooks) OnEntryWritten(string, int, int, time.Duration) {}
func (NoopArchiveHooks) OnEntryRead(string, int, int, time.Duration)    {}
func (NoopArchiveHooks) OnFailed(string, error)                         {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	archiveHooks  ArchiveHooks  = NoopArchiveHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetArchiveHooks registers custom archive hooks.
// This should be called once at application startup before any archive is opened.
func SetArchiveHooks(h ArchiveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		archiveHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Archive returns the registered archive hooks.
func Archive() ArchiveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return archiveHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	archiveHooks = NoopArchiveHooks{}
}
