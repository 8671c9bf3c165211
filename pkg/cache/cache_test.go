package cache

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

// exercise runs the behaviour every Cache implementation shares.
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get = %q, %v, %v, want v1 hit", data, hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v2"), time.Hour); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if data, _, _ := c.Get(ctx, "k"); string(data) != "v2" {
		t.Errorf("after overwrite Get = %q, want v2", data)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of a missing key: %v", err)
	}
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory(0))
}

func TestFile(t *testing.T) {
	c, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, c)
}

func TestScoped(t *testing.T) {
	inner := NewMemory(0)
	exercise(t, NewScoped(inner, "tenant:"))

	ctx := context.Background()
	s := NewScoped(inner, "tenant:")
	_ = s.Set(ctx, "k", []byte("x"), 0)
	if _, hit, _ := inner.Get(ctx, "tenant:k"); !hit {
		t.Error("scoped key should be stored with its prefix")
	}
	if _, hit, _ := inner.Get(ctx, "k"); hit {
		t.Error("unprefixed key should not exist")
	}
}

func TestNull(t *testing.T) {
	ctx := context.Background()
	c := NewNull()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Null.Get = %q, %v, %v, want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(0)
	m.now = func() time.Time { return now }

	_ = m.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := m.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := m.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if m.Len() != 0 {
		t.Errorf("expired entry should be dropped, Len = %d", m.Len())
	}
}

func TestMemoryEviction(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(2)
	m.now = func() time.Time { return now }

	_ = m.Set(ctx, "forever", []byte("a"), 0)
	_ = m.Set(ctx, "soon", []byte("b"), time.Minute)
	_ = m.Set(ctx, "later", []byte("c"), time.Hour)

	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if _, hit, _ := m.Get(ctx, "soon"); hit {
		t.Error("the entry closest to expiry should be evicted")
	}
	for _, k := range []string{"forever", "later"} {
		if _, hit, _ := m.Get(ctx, k); !hit {
			t.Errorf("%s should survive eviction", k)
		}
	}
}

func TestFileExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	now = now.Add(time.Hour)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired file entry should miss")
	}
}

func TestRenderKey(t *testing.T) {
	dot := "digraph G { a -> b; }"

	k1 := RenderKey(dot, "svg")
	if k1 != RenderKey(dot, "svg") {
		t.Error("RenderKey should be deterministic")
	}
	if k1 == RenderKey(dot, "png") {
		t.Error("formats should produce different keys")
	}
	if k1 == RenderKey(dot+" ", "svg") {
		t.Error("different DOT sources should produce different keys")
	}
	if !strings.HasPrefix(k1, "render:svg:") || len(k1) != len("render:svg:")+64 {
		t.Errorf("RenderKey = %q, want render:svg:<sha256>", k1)
	}
}

func TestMemoryKeepsBytes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(1)
	want := []byte("<svg/>")
	_ = m.Set(ctx, "k", want, 0)
	got, _, _ := m.Get(ctx, "k")
	if !bytes.Equal(got, want) {
		t.Errorf("Get = %q, want %q", got, want)
	}
}
