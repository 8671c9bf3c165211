package workflow

import "testing"

func box(t *testing.T, w *Workflow, id string) BoundingBox {
	t.Helper()
	n, ok := w.Node(id)
	if !ok {
		t.Fatalf("node %s not found", id)
	}
	return n.Box
}

func TestRecalculateNodePositionBelowPredecessors(t *testing.T) {
	w := New("test")
	w.AddNodeWithID("p1", comp("p1", true), &BoundingBox{X: 0, Y: 0, Width: 100, Height: 10})
	w.AddNodeWithID("p2", comp("p2", true), &BoundingBox{X: 200, Y: 5, Width: 100, Height: 10})
	w.AddNodeWithID("d", comp("d", true), &BoundingBox{X: 7, Y: 99, Width: 50, Height: 30})
	connect(t, w, "p1", "d")
	connect(t, w, "p2", "d")

	w.RecalculateNodePosition("d")

	got := box(t, w, "d")
	want := BoundingBox{X: 125, Y: 35, Width: 50, Height: 30}
	if got != want {
		t.Errorf("d.Box = %+v, want %+v", got, want)
	}
}

func TestRecalculateNodePositionWithoutPredecessors(t *testing.T) {
	w := New("test")
	w.AddNodeWithID("a", comp("a", true), &BoundingBox{X: 42, Y: 17, Width: 10, Height: 10})

	w.RecalculateNodePosition("a")

	if got := box(t, w, "a"); got.X != 42 || got.Y != 0 {
		t.Errorf("a.Box = %+v, want x=42 y=0", got)
	}
	w.RecalculateNodePosition("nope")
}

func TestRecalculateNodePositionsFrom(t *testing.T) {
	w := chain(t, "a", "b", "c")
	w.SetSpacing(10)

	w.RecalculateNodePositionsFrom("a")

	for id, y := range map[string]float64{"a": 0, "b": 20, "c": 40} {
		if got := box(t, w, id).Y; got != y {
			t.Errorf("%s.Y = %v, want %v", id, got, y)
		}
	}
}

func TestRecalculateAllVisitsJoinOnce(t *testing.T) {
	w := New("test")
	w.AddNodeWithID("a", comp("a", true), &BoundingBox{Width: 100, Height: 10})
	w.AddNodeWithID("b", comp("b", true), &BoundingBox{Width: 100, Height: 50})
	w.AddNodeWithID("c", comp("c", true), &BoundingBox{Width: 100, Height: 10})
	connect(t, w, "a", "c")
	connect(t, w, "b", "c")
	connect(t, w, "a", "b")

	w.RecalculateAll()

	if got := box(t, w, "b").Y; got != 30 {
		t.Errorf("b.Y = %v, want 30", got)
	}
	if got := box(t, w, "c").Y; got != 100 {
		t.Errorf("c.Y = %v, want 100 (below b)", got)
	}
}

func TestSetSpacingIgnoresNonPositive(t *testing.T) {
	w := New("test")
	w.SetSpacing(0)
	w.SetSpacing(-5)
	if w.Spacing() != DefaultSpacing {
		t.Errorf("Spacing = %v, want %v", w.Spacing(), DefaultSpacing)
	}
}
