package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

type countingHooks struct {
	NoopWorkflowHooks
	NoopCacheHooks
	NoopHTTPHooks

	mu     sync.Mutex
	loads  int
	hits   map[string]int
	status []int
}

func (h *countingHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads++
}

func (h *countingHooks) OnCacheHit(_ context.Context, keyType string, count int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hits == nil {
		h.hits = make(map[string]int)
	}
	h.hits[keyType] += count
}

func (h *countingHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = append(h.status, status)
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	Workflow().OnLoadStart(ctx, "wf-1")
	Workflow().OnLoadComplete(ctx, "wf-1", 12, 1, time.Second, nil)
	Workflow().OnSaveComplete(ctx, "wf-1", 12, time.Millisecond, nil)
	Workflow().OnCheck(ctx, 12, true)
	Cache().OnCacheHit(ctx, "component", 3)
	Cache().OnCacheMiss(ctx, "render", 1)
	HTTP().OnRequest(ctx, "GET", "catalog.example.com", "/components")
	HTTP().OnResponse(ctx, "GET", "catalog.example.com", "/components", 200, time.Second)
	HTTP().OnError(ctx, "GET", "catalog.example.com", "/components", nil)

	if _, ok := Workflow().(NoopWorkflowHooks); !ok {
		t.Errorf("Workflow() = %T, want NoopWorkflowHooks", Workflow())
	}
}

func TestRegisteredHooksReceiveEvents(t *testing.T) {
	defer Reset()
	h := &countingHooks{}
	SetWorkflowHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)

	ctx := context.Background()
	Workflow().OnLoadComplete(ctx, "wf-1", 2, 0, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "component", 2)
	Cache().OnCacheHit(ctx, "render", 1)
	HTTP().OnResponse(ctx, "GET", "localhost", "/workflows/{id}", 404, time.Millisecond)

	if h.loads != 1 || h.hits["component"] != 2 || h.hits["render"] != 1 {
		t.Errorf("loads=%d hits=%v", h.loads, h.hits)
	}
	if len(h.status) != 1 || h.status[0] != 404 {
		t.Errorf("status = %v, want [404]", h.status)
	}

	Reset()
	Cache().OnCacheHit(ctx, "component", 5)
	if h.hits["component"] != 2 {
		t.Error("Reset() left the registered cache hooks in place")
	}
}

func TestSetNilIsIgnored(t *testing.T) {
	defer Reset()
	h := &countingHooks{}
	SetWorkflowHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)

	SetWorkflowHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)

	if Workflow() != WorkflowHooks(h) || Cache() != CacheHooks(h) || HTTP() != HTTPHooks(h) {
		t.Error("a nil setter replaced the registered hooks")
	}
}

func TestRegistryConcurrentUse(t *testing.T) {
	defer Reset()
	h := &countingHooks{}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				SetCacheHooks(h)
			}
			Cache().OnCacheHit(ctx, "component", 1)
		}()
	}
	wg.Wait()
}
