package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/canicai/canicai/pkg/observability"
)

// Cached wraps a ComponentFetcher and keeps every component it has resolved.
// Only ids that are not cached yet are forwarded to the inner fetcher, in a
// single batch. Cached is safe for concurrent use.
type Cached struct {
	inner Fetcher

	mu         sync.RWMutex
	components map[string]Component
	categories map[string]Category
}

// NewCached wraps inner. Categories are cached as well.
func NewCached(inner Fetcher) *Cached {
	return &Cached{
		inner:      inner,
		components: make(map[string]Component),
		categories: make(map[string]Category),
	}
}

// Add seeds the cache with a known component.
func (c *Cached) Add(comp Component) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components[comp.ID] = comp
}

// FetchComponentsByIDs serves cached components and fetches the rest.
func (c *Cached) FetchComponentsByIDs(ctx context.Context, ids []string) (Batch, error) {
	ids = Dedupe(ids)

	c.mu.RLock()
	var pending []string
	for _, id := range ids {
		if _, ok := c.components[id]; !ok {
			pending = append(pending, id)
		}
	}
	c.mu.RUnlock()

	hooks := observability.Cache()
	hooks.OnCacheHit(ctx, "component", len(ids)-len(pending))

	if len(pending) > 0 {
		hooks.OnCacheMiss(ctx, "component", len(pending))
		fetched, err := c.inner.FetchComponentsByIDs(ctx, pending)
		if err != nil {
			return Batch{}, fmt.Errorf("fetch components: %w", err)
		}
		c.mu.Lock()
		for _, comp := range fetched.Components {
			c.components[comp.ID] = comp
		}
		c.mu.Unlock()
	}

	var b Batch
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range ids {
		if comp, ok := c.components[id]; ok {
			b.Components = append(b.Components, comp)
		} else {
			b.Missing = append(b.Missing, id)
		}
	}
	return b, nil
}

// FetchCategoryByID serves a cached category or asks the inner fetcher.
// Absent categories are not cached.
func (c *Cached) FetchCategoryByID(ctx context.Context, id string) (*Category, error) {
	c.mu.RLock()
	cat, ok := c.categories[id]
	c.mu.RUnlock()
	if ok {
		observability.Cache().OnCacheHit(ctx, "category", 1)
		return &cat, nil
	}

	observability.Cache().OnCacheMiss(ctx, "category", 1)
	fetched, err := c.inner.FetchCategoryByID(ctx, id)
	if err != nil || fetched == nil {
		return fetched, err
	}
	c.mu.Lock()
	c.categories[id] = *fetched
	c.mu.Unlock()
	return fetched, nil
}

var _ Fetcher = (*Cached)(nil)
