package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/canicai/canicai/pkg/persist"
)

// Memory keeps saved workflows in process. Workflows are stored encoded, so
// callers never share state with the store.
type Memory struct {
	mu      sync.RWMutex
	data    map[string][]byte
	index   map[string]Summary
	nowFunc func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data:    make(map[string][]byte),
		index:   make(map[string]Summary),
		nowFunc: time.Now,
	}
}

func (m *Memory) Load(_ context.Context, id string) (*persist.SavedWorkflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	return persist.Unmarshal(data)
}

func (m *Memory) Save(_ context.Context, saved *persist.SavedWorkflow) error {
	if saved.ID == "" {
		return fmt.Errorf("save: workflow has no id")
	}
	data, err := persist.Marshal(saved)
	if err != nil {
		return fmt.Errorf("marshal workflow: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[saved.ID] = data
	m.index[saved.ID] = SummaryOf(saved, m.nowFunc())
	return nil
}

func (m *Memory) List(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.index))
	for _, s := range m.index {
		out = append(out, s)
	}
	SortSummaries(out)
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	delete(m.index, id)
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
