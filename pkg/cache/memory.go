package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryEntries bounds a [Memory] cache created with limit <= 0.
const DefaultMemoryEntries = 256

// Memory is an in-process cache. When full, the entry closest to expiry
// is evicted, with entries without a TTL going last. It is safe for
// concurrent use.
type Memory struct {
	mu      sync.Mutex
	limit   int
	entries map[string]memEntry
	now     func() time.Time
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
	added     time.Time
}

// NewMemory creates a cache holding at most limit entries.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultMemoryEntries
	}
	return &Memory{limit: limit, entries: make(map[string]memEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.data, true, nil
}

func (m *Memory) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if _, ok := m.entries[key]; !ok && len(m.entries) >= m.limit {
		m.evict()
	}
	e := memEntry{data: data, added: now}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// evict drops one entry. Callers hold m.mu.
func (m *Memory) evict() {
	var (
		victim string
		best   memEntry
		found  bool
	)
	for k, e := range m.entries {
		if !found || evictsBefore(e, best) || (!evictsBefore(best, e) && k < victim) {
			victim, best, found = k, e, true
		}
	}
	delete(m.entries, victim)
}

// evictsBefore reports whether a should be evicted before b.
func evictsBefore(a, b memEntry) bool {
	switch {
	case a.expiresAt.IsZero() && b.expiresAt.IsZero():
		return a.added.Before(b.added)
	case a.expiresAt.IsZero():
		return false
	case b.expiresAt.IsZero():
		return true
	}
	return a.expiresAt.Before(b.expiresAt)
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close drops every entry.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memEntry)
	return nil
}

var _ Cache = (*Memory)(nil)
