// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about engine operations and document
// store activity.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which avoids import
// cycles and keeps the core free of observability frameworks.
//
// # Usage
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from pack/unpack operations.
type EngineHooks interface {
	// OnPackStart is called when a pack begins, with the document's page
	// count (staging page included, if present).
	OnPackStart(ctx context.Context, pageCount int)

	// OnPackComplete is called when a pack finishes. containers is the
	// number created; err is nil on success and carries the recovered or
	// fatal outcome otherwise.
	OnPackComplete(ctx context.Context, containers int, duration time.Duration, err error)

	// OnUnpackStart is called when an unpack begins.
	OnUnpackStart(ctx context.Context)

	// OnUnpackComplete is called when an unpack finishes. pages is the
	// number of pages created.
	OnUnpackComplete(ctx context.Context, pages int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from document store operations.
type StoreHooks interface {
	// OnLoad records a document read. found is false for missing IDs.
	OnLoad(ctx context.Context, backend, id string, found bool, err error)

	// OnSave records a document write.
	OnSave(ctx context.Context, backend, id string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnPackStart(context.Context, int)                            {}
func (NoopEngineHooks) OnPackComplete(context.Context, int, time.Duration, error)   {}
func (NoopEngineHooks) OnUnpackStart(context.Context)                               {}
func (NoopEngineHooks) OnUnpackComplete(context.Context, int, time.Duration, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, bool, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, string, error)       {}

// =============================================================================
// Global Registry
// =============================================================================

var (
	mu          sync.RWMutex
	engineHooks EngineHooks = NoopEngineHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
)

// SetEngineHooks registers engine hooks. Pass nil to restore the no-op
// implementation. Call at startup, before operations run.
func SetEngineHooks(h EngineHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopEngineHooks{}
	}
	engineHooks = h
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return engineHooks
}

// SetStoreHooks registers store hooks. Pass nil to restore the no-op
// implementation.
func SetStoreHooks(h StoreHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopStoreHooks{}
	}
	storeHooks = h
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	mu.RLock()
	defer mu.RUnlock()
	return storeHooks
}
