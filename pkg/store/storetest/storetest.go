// Package storetest provides a behavioural test suite shared by every
// store.Store backend.
package storetest

import (
	"context"
	"testing"

	"github.com/canicai/canicai/pkg/persist"
	"github.com/canicai/canicai/pkg/store"
)

// Sample returns a small valid saved workflow: a catalog node feeding a
// custom node.
func Sample(id, name string) *persist.SavedWorkflow {
	return &persist.SavedWorkflow{
		ID:   id,
		Name: name,
		Adjacencies: []persist.AdjacencyEntry{
			{ID: "n1", Data: persist.Adjacency{In: []string{}, Out: []string{"e1"}}},
			{ID: "n2", Data: persist.Adjacency{In: []string{"e1"}, Out: []string{}}},
		},
		Nodes: []persist.NodeEntry{
			{ID: "n1", Data: persist.NodeData{ComponentID: "c1"}},
		},
		CustomNodes: []persist.CustomEntry{
			{ID: "n2", Data: persist.CustomComponent{
				Name: "Screen", Type: "output", Manufacturer: "Acme", Category: "cat", DataType: "custom", Compatible: true,
			}},
		},
		Edges: []persist.EdgeEntry{
			{ID: "e1", Data: persist.Edge{Source: "n1", Target: "n2"}},
		},
	}
}

// Run exercises the Store contract against the store returned by open.
// open is called once per subtest and must return an empty store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("load missing", func(t *testing.T) {
		st := open(t)
		got, err := st.Load(ctx, "missing")
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if got != nil {
			t.Errorf("Load() = %+v, want nil", got)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		st := open(t)
		want := Sample("wf-1", "Studio")
		if err := st.Save(ctx, want); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		got, err := st.Load(ctx, "wf-1")
		if err != nil || got == nil {
			t.Fatalf("Load() = %v, %v", got, err)
		}
		if got.Name != "Studio" || len(got.Edges) != 1 || got.CustomNodes[0].Data.Name != "Screen" {
			t.Errorf("Load() = %+v", got)
		}
		if err := persist.Validate(got); err != nil {
			t.Errorf("loaded workflow invalid: %v", err)
		}
	})

	t.Run("save replaces", func(t *testing.T) {
		st := open(t)
		if err := st.Save(ctx, Sample("wf-1", "Old")); err != nil {
			t.Fatal(err)
		}
		if err := st.Save(ctx, Sample("wf-1", "New")); err != nil {
			t.Fatal(err)
		}
		got, _ := st.Load(ctx, "wf-1")
		if got == nil || got.Name != "New" {
			t.Errorf("Load() = %+v, want name New", got)
		}
		list, err := st.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].Name != "New" {
			t.Errorf("List() = %+v, want single entry New", list)
		}
	})

	t.Run("list", func(t *testing.T) {
		st := open(t)
		for _, id := range []string{"a", "b"} {
			if err := st.Save(ctx, Sample(id, "wf "+id)); err != nil {
				t.Fatal(err)
			}
		}
		list, err := st.List(ctx)
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("List() = %d entries, want 2", len(list))
		}
		for _, s := range list {
			if s.ComponentCount != 2 {
				t.Errorf("%s: ComponentCount = %d, want 2", s.ID, s.ComponentCount)
			}
			if s.UpdatedAt.IsZero() {
				t.Errorf("%s: UpdatedAt not set", s.ID)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		st := open(t)
		if err := st.Save(ctx, Sample("wf-1", "Studio")); err != nil {
			t.Fatal(err)
		}
		if err := st.Delete(ctx, "wf-1"); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if got, _ := st.Load(ctx, "wf-1"); got != nil {
			t.Error("workflow still present after Delete")
		}
		if list, _ := st.List(ctx); len(list) != 0 {
			t.Errorf("List() = %+v, want empty", list)
		}
		if err := st.Delete(ctx, "wf-1"); err != nil {
			t.Errorf("second Delete() error: %v", err)
		}
	})
}
