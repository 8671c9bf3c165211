package catalog

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-process catalog. It is safe for concurrent use.
type Memory struct {
	mu            sync.RWMutex
	components    map[string]Component
	categories    map[string]Category
	manufacturers map[string]Manufacturer
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{
		components:    make(map[string]Component),
		categories:    make(map[string]Category),
		manufacturers: make(map[string]Manufacturer),
	}
}

// AddComponent inserts or replaces a component.
func (m *Memory) AddComponent(c Component) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[c.ID] = c
}

// AddCategory inserts or replaces a category.
func (m *Memory) AddCategory(c Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = c
}

// AddManufacturer inserts or replaces a manufacturer.
func (m *Memory) AddManufacturer(mf Manufacturer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manufacturers[mf.ID] = mf
}

// FetchComponentsByIDs returns the known components in request order and
// lists every unknown id in Missing.
func (m *Memory) FetchComponentsByIDs(_ context.Context, ids []string) (Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b Batch
	for _, id := range Dedupe(ids) {
		if c, ok := m.components[id]; ok {
			b.Components = append(b.Components, c)
		} else {
			b.Missing = append(b.Missing, id)
		}
	}
	return b, nil
}

// FetchComponentByID returns a single component, or nil if unknown.
func (m *Memory) FetchComponentByID(_ context.Context, id string) (*Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.components[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// FetchCategoryByID returns the category, or nil if unknown.
func (m *Memory) FetchCategoryByID(_ context.Context, id string) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Categories returns all categories sorted by id.
func (m *Memory) Categories(_ context.Context) ([]Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Category, 0, len(m.categories))
	for _, id := range slices.Sorted(maps.Keys(m.categories)) {
		out = append(out, m.categories[id])
	}
	return out, nil
}

// ComponentsInCategory returns the components of a category sorted by name.
func (m *Memory) ComponentsInCategory(_ context.Context, categoryID string) ([]Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Component
	for _, c := range m.components {
		if c.Category == categoryID {
			out = append(out, c)
		}
	}
	sortByName(out)
	return out, nil
}

func sortByName(cs []Component) {
	slices.SortFunc(cs, func(a, b Component) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Search returns the components matching q, sorted by name.
func (m *Memory) Search(_ context.Context, q Query) ([]Component, error) {
	words := q.Words()
	if len(words) == 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Component
	for _, c := range m.components {
		if !q.matchesType(c.Type) {
			continue
		}
		name := strings.ToLower(c.Name)
		maker := strings.ToLower(m.manufacturers[c.Manufacturer].Name)
		for _, word := range words {
			if strings.Contains(name, word) || (maker != "" && strings.Contains(maker, word)) {
				out = append(out, c)
				break
			}
		}
	}
	sortByName(out)
	return out, nil
}

// Len returns the number of components in the catalog.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.components)
}

// File returns every record of the catalog, each list sorted by id.
func (m *Memory) File() File {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var f File
	for _, id := range slices.Sorted(maps.Keys(m.manufacturers)) {
		f.Manufacturers = append(f.Manufacturers, m.manufacturers[id])
	}
	for _, id := range slices.Sorted(maps.Keys(m.categories)) {
		f.Categories = append(f.Categories, m.categories[id])
	}
	for _, id := range slices.Sorted(maps.Keys(m.components)) {
		f.Components = append(f.Components, m.components[id])
	}
	return f
}

var _ Source = (*Memory)(nil)
