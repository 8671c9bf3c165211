package workflow

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// DefaultSpacing is the gap between vertically stacked nodes and between
// the members of a parallel group.
const DefaultSpacing = 20

var (
	// ErrAdjacencyMismatch is returned by [Workflow.Validate] when an edge id
	// is missing from, or stray in, an adjacency record.
	ErrAdjacencyMismatch = errors.New("adjacency does not match edges")

	// ErrDanglingEdge is returned by [Workflow.Validate] when an edge
	// references a node that does not exist.
	ErrDanglingEdge = errors.New("edge references unknown node")

	// ErrGroupMismatch is returned by [Workflow.Validate] when group
	// membership and node group references disagree.
	ErrGroupMismatch = errors.New("group membership mismatch")
)

// Workflow is the aggregate root of the engine: the graph, its groups and
// the hash pair used for dirty-state detection.
//
// The zero value is not usable - use New to create a Workflow.
type Workflow struct {
	ID   string
	Name string

	nodes     map[string]*Node
	edges     map[string]*Edge
	adjacency map[string]*Adjacency
	groups    map[string][]string

	spacing float64
	newID   func() string

	savedHash   string
	currentHash string
}

// New creates an empty workflow with a generated id.
func New(name string) *Workflow {
	w := &Workflow{
		spacing: DefaultSpacing,
		newID:   uuid.NewString,
	}
	w.reset()
	w.ID = w.newID()
	w.Name = name
	return w
}

func (w *Workflow) reset() {
	w.ID = ""
	w.Name = ""
	w.nodes = make(map[string]*Node)
	w.edges = make(map[string]*Edge)
	w.adjacency = make(map[string]*Adjacency)
	w.groups = make(map[string][]string)
	w.savedHash = ""
	w.currentHash = ""
}

// Clear discards every node, edge and group together with the id, name and
// hash pair. Layout spacing is kept.
func (w *Workflow) Clear() { w.reset() }

// Spacing returns the layout gap.
func (w *Workflow) Spacing() float64 { return w.spacing }

// SetSpacing changes the layout gap used by subsequent layout passes.
// Non-positive values are ignored.
func (w *Workflow) SetSpacing(s float64) {
	if s > 0 {
		w.spacing = s
	}
}

// =============================================================================
// Queries
// =============================================================================

// Node returns a copy of the node with the given id.
func (w *Workflow) Node(id string) (Node, bool) {
	n, ok := w.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Edge returns a copy of the edge with the given id.
func (w *Workflow) Edge(id string) (Edge, bool) {
	e, ok := w.edges[id]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Adjacency returns a copy of the node's adjacency record.
func (w *Workflow) Adjacency(id string) (Adjacency, bool) {
	a, ok := w.adjacency[id]
	if !ok {
		return Adjacency{}, false
	}
	return a.clone(), true
}

// Nodes returns copies of all nodes sorted by id.
func (w *Workflow) Nodes() []Node {
	out := make([]Node, 0, len(w.nodes))
	for _, id := range slices.Sorted(maps.Keys(w.nodes)) {
		out = append(out, *w.nodes[id])
	}
	return out
}

// Edges returns copies of all edges sorted by id.
func (w *Workflow) Edges() []Edge {
	out := make([]Edge, 0, len(w.edges))
	for _, id := range slices.Sorted(maps.Keys(w.edges)) {
		out = append(out, *w.edges[id])
	}
	return out
}

// NodeCount returns the number of nodes.
func (w *Workflow) NodeCount() int { return len(w.nodes) }

// EdgeCount returns the number of edges.
func (w *Workflow) EdgeCount() int { return len(w.edges) }

// Successors returns the ids of the targets of the node's outgoing edges,
// in edge insertion order. Returns nil for unknown nodes.
func (w *Workflow) Successors(id string) []string {
	a, ok := w.adjacency[id]
	if !ok {
		return nil
	}
	var out []string
	for _, eid := range a.Out {
		if e, ok := w.edges[eid]; ok {
			out = append(out, e.Target)
		}
	}
	return out
}

// Predecessors returns the ids of the sources of the node's incoming edges,
// in edge insertion order. Returns nil for unknown nodes.
func (w *Workflow) Predecessors(id string) []string {
	a, ok := w.adjacency[id]
	if !ok {
		return nil
	}
	var out []string
	for _, eid := range a.In {
		if e, ok := w.edges[eid]; ok {
			out = append(out, e.Source)
		}
	}
	return out
}

// FirstNodes returns the ids of all nodes without incoming edges, sorted.
func (w *Workflow) FirstNodes() []string {
	var out []string
	for id, a := range w.adjacency {
		if len(a.In) == 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// IsLastNode reports whether the node exists and has no outgoing edges.
func (w *Workflow) IsLastNode(id string) bool {
	a, ok := w.adjacency[id]
	return ok && len(a.Out) == 0
}

// HasEdge reports whether an edge source→target exists.
func (w *Workflow) HasEdge(source, target string) bool {
	a, ok := w.adjacency[source]
	if !ok {
		return false
	}
	for _, eid := range a.Out {
		if e, ok := w.edges[eid]; ok && e.Target == target {
			return true
		}
	}
	return false
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks the structural invariants and returns nil if they hold:
//
//  1. Every edge connects existing nodes and appears exactly in its source's
//     Out list and its target's In list
//  2. Every adjacency entry references an existing edge
//  3. Every grouped node appears exactly once in its group, groups have at
//     least two members and only reference nodes pointing back at them
//
// Mutations keep these invariants; Validate exists for tests and for
// diagnosing reconstructed workflows.
func (w *Workflow) Validate() error {
	for id, e := range w.edges {
		src, okSrc := w.adjacency[e.Source]
		dst, okDst := w.adjacency[e.Target]
		if !okSrc || !okDst {
			return fmt.Errorf("%w: edge %s", ErrDanglingEdge, id)
		}
		if count(src.Out, id) != 1 || count(dst.In, id) != 1 {
			return fmt.Errorf("%w: edge %s", ErrAdjacencyMismatch, id)
		}
	}
	for nid, a := range w.adjacency {
		if _, ok := w.nodes[nid]; !ok {
			return fmt.Errorf("%w: adjacency for unknown node %s", ErrAdjacencyMismatch, nid)
		}
		for _, eid := range a.In {
			if e, ok := w.edges[eid]; !ok || e.Target != nid {
				return fmt.Errorf("%w: node %s in-edge %s", ErrAdjacencyMismatch, nid, eid)
			}
		}
		for _, eid := range a.Out {
			if e, ok := w.edges[eid]; !ok || e.Source != nid {
				return fmt.Errorf("%w: node %s out-edge %s", ErrAdjacencyMismatch, nid, eid)
			}
		}
	}
	for gid, members := range w.groups {
		if len(members) < 2 {
			return fmt.Errorf("%w: group %s has %d members", ErrGroupMismatch, gid, len(members))
		}
		for _, m := range members {
			n, ok := w.nodes[m]
			if !ok || n.Group != gid || count(members, m) != 1 {
				return fmt.Errorf("%w: group %s member %s", ErrGroupMismatch, gid, m)
			}
		}
	}
	for id, n := range w.nodes {
		if _, ok := w.adjacency[id]; !ok {
			return fmt.Errorf("%w: node %s has no adjacency", ErrAdjacencyMismatch, id)
		}
		if n.Group != "" && !slices.Contains(w.groups[n.Group], id) {
			return fmt.Errorf("%w: node %s references group %s", ErrGroupMismatch, id, n.Group)
		}
	}
	return nil
}

func count(ids []string, id string) int {
	n := 0
	for _, x := range ids {
		if x == id {
			n++
		}
	}
	return n
}
