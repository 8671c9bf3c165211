package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/canicai/canicai/pkg/observability"
)

func TestHooksRecordMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := New(reg)
	ctx := context.Background()

	h.OnLoadComplete(ctx, "wf", 4, 2, 10*time.Millisecond, nil)
	h.OnLoadComplete(ctx, "wf", 0, 0, time.Millisecond, errors.New("boom"))
	h.OnCheck(ctx, 4, false)
	h.OnCacheHit(ctx, "component", 3)
	h.OnCacheMiss(ctx, "component", 1)

	if got := testutil.ToFloat64(h.loadTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("successful loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.loadTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("failed loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.loadMissing); got != 2 {
		t.Errorf("missing = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.checkTotal.WithLabelValues("false")); got != 1 {
		t.Errorf("incompatible checks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.cacheLookups.WithLabelValues("component", "hit")); got != 3 {
		t.Errorf("cache hits = %v, want 3", got)
	}
}

func TestRegisterInstallsGlobalHooks(t *testing.T) {
	defer observability.Reset()

	h := Register(prometheus.NewRegistry())
	if observability.Workflow() != h {
		t.Error("Register should install workflow hooks")
	}
	if observability.Cache() != h {
		t.Error("Register should install cache hooks")
	}
	if observability.HTTP() != h {
		t.Error("Register should install HTTP hooks")
	}
}
