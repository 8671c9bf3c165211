package httputil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type record struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Compatible bool     `json:"compatible"`
	Types      []string `json:"types,omitempty"`
}

func TestCacheRoundTrip(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	want := record{ID: "c1", Name: "Camera X", Compatible: true, Types: []string{"input"}}
	if err := c.Set("component:c1", want); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	var got record
	ok, err := c.Get("component:c1", &got)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, want hit", ok, err)
	}
	if got.ID != want.ID || got.Name != want.Name || !got.Compatible || len(got.Types) != 1 {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	ok, err = c.Get("component:c2", &got)
	if ok || err != nil {
		t.Errorf("Get(missing) = %v, %v, want miss without error", ok, err)
	}
}

func TestCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewCache(dir, time.Minute)
	if err := c.Set("category:cam", record{ID: "cam"}); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(c.keyPath("category:cam"), old, old); err != nil {
		t.Fatal(err)
	}
	var r record
	ok, err := c.Get("category:cam", &r)
	if ok || !errors.Is(err, ErrExpired) {
		t.Errorf("Get(stale) = %v, %v, want ErrExpired", ok, err)
	}

	forever, _ := NewCache(dir, 0)
	if ok, err := forever.Get("category:cam", &r); !ok || err != nil {
		t.Errorf("Get() with no TTL = %v, %v, want hit", ok, err)
	}
}

func TestCacheCorruptEntry(t *testing.T) {
	c, _ := NewCache(t.TempDir(), 0)
	if err := os.WriteFile(c.keyPath("component:c1"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	var r record
	if ok, err := c.Get("component:c1", &r); ok || err == nil {
		t.Errorf("Get(corrupt) = %v, %v, want a decode error", ok, err)
	}
}

func TestNewCacheDefaultDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	want, err := DefaultCacheDir()
	if err != nil {
		t.Skip("no user cache directory")
	}

	c, err := NewCache("", time.Hour)
	if err != nil {
		t.Fatalf("NewCache() failed: %v", err)
	}
	if c.Dir() != want || filepath.Base(want) != "canicai" {
		t.Errorf("Dir() = %s, want %s", c.Dir(), want)
	}
	if c.TTL() != time.Hour {
		t.Errorf("TTL() = %v, want 1h", c.TTL())
	}
	if info, err := os.Stat(c.Dir()); err != nil || !info.IsDir() {
		t.Errorf("cache directory not created: %v", err)
	}
}

func TestCacheNamespaces(t *testing.T) {
	c, _ := NewCache(t.TempDir(), 0)
	components := c.Namespace("component:")
	categories := c.Namespace("category:")
	nested := c.Namespace("remote:").Namespace("component:")

	if err := components.Set("x", record{Name: "component"}); err != nil {
		t.Fatal(err)
	}
	if err := categories.Set("x", record{Name: "category"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		cache *Cache
		want  string
	}{
		{"components", components, "component"},
		{"categories", categories, "category"},
		{"prefix spelled out", c, ""},
		{"chained prefix", nested, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r record
			ok, err := tt.cache.Get("x", &r)
			if err != nil {
				t.Fatal(err)
			}
			if ok != (tt.want != "") || r.Name != tt.want {
				t.Errorf("Get(x) = %v, %q, want %q", ok, r.Name, tt.want)
			}
		})
	}

	var r record
	if ok, _ := c.Get("component:x", &r); !ok || r.Name != "component" {
		t.Error("namespaced key is not the plain prefixed key")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewCache(dir, 0)
	for _, key := range []string{"component:c1", "component:c2", "category:cam"} {
		if err := c.Set(key, record{ID: key}); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "render"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := c.Delete("component:c1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := c.Delete("component:c1"); err != nil {
		t.Fatalf("second Delete() failed: %v", err)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Clear() removed %d entries, want 2", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "render")); err != nil {
		t.Error("Clear() removed a subdirectory")
	}
}
