// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about workflow loads and saves, component cache lookups,
// and HTTP traffic.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The prom subpackage provides a Prometheus implementation of every hook
// interface. It is registered by the API server at startup.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    prom.Register(prometheus.DefaultRegisterer)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Workflow().OnLoadStart(ctx, id)
//	// ... reconstruct ...
//	observability.Workflow().OnLoadComplete(ctx, id, nodeCount, missing, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// WorkflowHooks receives events from workflow sessions.
type WorkflowHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, workflowID string)
	OnLoadComplete(ctx context.Context, workflowID string, nodeCount, missing int, duration time.Duration, err error)

	// Save events
	OnSaveComplete(ctx context.Context, workflowID string, nodeCount int, duration time.Duration, err error)

	// Check events
	OnCheck(ctx context.Context, nodeCount int, compatible bool)
}

// CacheHooks receives events from the component cache and the render cache.
// keyType names the cache: "component", "category" or "render".
type CacheHooks interface {
	// OnCacheHit records ids served from cache.
	OnCacheHit(ctx context.Context, keyType string, count int)

	// OnCacheMiss records ids that had to be fetched.
	OnCacheMiss(ctx context.Context, keyType string, count int)
}

// HTTPHooks receives events from HTTP client and server operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopWorkflowHooks is a no-op implementation of WorkflowHooks.
type NoopWorkflowHooks struct{}

func (NoopWorkflowHooks) OnLoadStart(context.Context, string) {}
func (NoopWorkflowHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopWorkflowHooks) OnSaveComplete(context.Context, string, int, time.Duration, error) {}
func (NoopWorkflowHooks) OnCheck(context.Context, int, bool)                                {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string, int)  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// registry holds the hooks every package reports to. Setters ignore nil.
var registry = struct {
	sync.RWMutex
	workflow WorkflowHooks
	cache    CacheHooks
	http     HTTPHooks
}{
	workflow: NoopWorkflowHooks{},
	cache:    NoopCacheHooks{},
	http:     NoopHTTPHooks{},
}

func set[T any](dst *T, h T, isNil bool) {
	if isNil {
		return
	}
	registry.Lock()
	defer registry.Unlock()
	*dst = h
}

func get[T any](src *T) T {
	registry.RLock()
	defer registry.RUnlock()
	return *src
}

// SetWorkflowHooks registers workflow hooks. Call it at startup, before any
// session is created.
func SetWorkflowHooks(h WorkflowHooks) { set(&registry.workflow, h, h == nil) }

// SetCacheHooks registers hooks for the component and render caches.
func SetCacheHooks(h CacheHooks) { set(&registry.cache, h, h == nil) }

// SetHTTPHooks registers hooks for the remote catalog client and the API.
func SetHTTPHooks(h HTTPHooks) { set(&registry.http, h, h == nil) }

// Workflow returns the registered workflow hooks.
func Workflow() WorkflowHooks { return get(&registry.workflow) }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return get(&registry.cache) }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return get(&registry.http) }

// Reset restores the no-op hooks. Tests that register hooks defer it.
func Reset() {
	registry.Lock()
	defer registry.Unlock()
	registry.workflow = NoopWorkflowHooks{}
	registry.cache = NoopCacheHooks{}
	registry.http = NoopHTTPHooks{}
}
