// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about placement runs and store transactions.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPlacementHooks(&myPlacementHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Placement().OnRunStart(ctx, doc, includeLinked)
//	// ... place labels ...
//	observability.Placement().OnRunComplete(ctx, doc, placed, skipped, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Placement Hooks
// =============================================================================

// PlacementHooks receives events from the placement orchestrator.
type PlacementHooks interface {
	OnRunStart(ctx context.Context, document string, includeLinked bool)
	OnRunComplete(ctx context.Context, document string, placed, skipped int, duration time.Duration, err error)

	// OnSkip records one room or link that could not be labeled.
	OnSkip(ctx context.Context, document, reason string)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from host store transactions.
type StoreHooks interface {
	OnCommit(ctx context.Context, backend string, tags int, duration time.Duration, err error)
	OnRollback(ctx context.Context, backend string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPlacementHooks is a no-op implementation of PlacementHooks.
type NoopPlacementHooks struct{}

func (NoopPlacementHooks) OnRunStart(context.Context, string, bool) {}
func (NoopPlacementHooks) OnRunComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPlacementHooks) OnSkip(context.Context, string, string) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnCommit(context.Context, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnRollback(context.Context, string)                          {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	placementHooks PlacementHooks = NoopPlacementHooks{}
	storeHooks     StoreHooks     = NoopStoreHooks{}
	hooksMu        sync.RWMutex
)

// SetPlacementHooks registers custom placement hooks.
// This should be called once at application startup before any run.
func SetPlacementHooks(h PlacementHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		placementHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Placement returns the registered placement hooks.
func Placement() PlacementHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return placementHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	placementHooks = NoopPlacementHooks{}
	storeHooks = NoopStoreHooks{}
}
