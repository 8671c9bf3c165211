// Package cache stores rendered workflow diagrams.
//
// Rendering a diagram through Graphviz is the slowest thing the API does,
// and the output depends only on the DOT source and the target format. The
// [Cache] interface keeps rendered bytes under a key derived from both
// (see [RenderKey]) so repeated renders of an unchanged workflow are served
// without touching Graphviz.
//
// # Implementations
//
//   - [Memory]: in-process, bounded by entry count
//   - [File]: one file per entry, for the CLI and single-node servers
//   - [Redis]: shared between API replicas
//   - [Null]: stores nothing, for disabled caching
//
// [Scoped] prefixes every key, so several deployments can share one
// backend.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores opaque blobs with an optional time-to-live.
type Cache interface {
	// Get returns the data for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 keeps the entry until it is
	// evicted or deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// RenderKey returns the cache key for dot rendered as format.
func RenderKey(dot, format string) string {
	sum := sha256.Sum256([]byte(format + "\x00" + dot))
	return "render:" + format + ":" + hex.EncodeToString(sum[:])
}

// Scoped prefixes every key of an inner cache.
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped wraps inner so that all keys start with prefix.
func NewScoped(inner Cache, prefix string) *Scoped {
	return &Scoped{inner: inner, prefix: prefix}
}

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the inner cache.
func (s *Scoped) Close() error { return s.inner.Close() }

var _ Cache = (*Scoped)(nil)
