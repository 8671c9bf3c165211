package workflow

import "slices"

// =============================================================================
// Node and edge primitives
// =============================================================================

// AddNode inserts a node with a generated id and an empty adjacency record.
// A nil box starts the node at the origin with zero size.
func (w *Workflow) AddNode(p Payload, box *BoundingBox) string {
	return w.AddNodeWithID(w.newID(), p, box)
}

// AddNodeWithID inserts a node under a caller-supplied id, as needed when
// rebuilding a saved workflow. An empty id falls back to a generated one.
// Returns "" if the id is already taken.
func (w *Workflow) AddNodeWithID(id string, p Payload, box *BoundingBox) string {
	if id == "" {
		id = w.newID()
	}
	if _, exists := w.nodes[id]; exists {
		return ""
	}
	n := &Node{ID: id, Payload: p}
	if box != nil {
		n.Box = *box
	}
	w.nodes[id] = n
	w.adjacency[id] = &Adjacency{}
	return id
}

// AddEdge connects source to target under a generated id and propagates
// compatibility from the new edge. See AddEdgeWithID for the refusal rules.
func (w *Workflow) AddEdge(source, target string) string {
	return w.AddEdgeWithID(w.newID(), source, target)
}

// AddEdgeWithID connects source to target under a caller-supplied id.
//
// Returns "" without changing anything when either endpoint is missing,
// when source equals target, when the id is already in use, or when the
// edge would close a directed cycle. Otherwise the edge starts at No and a
// propagation pass runs from it.
func (w *Workflow) AddEdgeWithID(id, source, target string) string {
	if id == "" {
		id = w.newID()
	}
	src, okSrc := w.adjacency[source]
	dst, okDst := w.adjacency[target]
	if !okSrc || !okDst || source == target {
		return ""
	}
	if _, exists := w.edges[id]; exists {
		return ""
	}
	if w.reachable(target, source) {
		return ""
	}
	e := &Edge{ID: id, Source: source, Target: target, Compatible: No}
	w.edges[id] = e
	src.Out = append(src.Out, id)
	dst.In = append(dst.In, id)

	e.Compatible = w.edgeCompatibility(e)
	w.DetermineEdgeCompatibilityFromNode(target)
	return id
}

// RemoveEdge deletes the edge and its adjacency references, then refreshes
// compatibility downstream of the former target. No-op if absent.
func (w *Workflow) RemoveEdge(id string) {
	e, ok := w.edges[id]
	if !ok {
		return
	}
	w.detachEdge(e)
	w.DetermineEdgeCompatibilityFromNode(e.Target)
}

func (w *Workflow) detachEdge(e *Edge) {
	if a, ok := w.adjacency[e.Source]; ok {
		a.Out = slices.DeleteFunc(a.Out, func(x string) bool { return x == e.ID })
	}
	if a, ok := w.adjacency[e.Target]; ok {
		a.In = slices.DeleteFunc(a.In, func(x string) bool { return x == e.ID })
	}
	delete(w.edges, e.ID)
}

// RemoveNode deletes the node together with every incident edge. If the
// node was grouped, the group is re-laid out, or dissolved when it drops
// to a single member. No-op if absent.
func (w *Workflow) RemoveNode(id string) {
	a, ok := w.adjacency[id]
	if !ok {
		return
	}
	for _, eid := range slices.Clone(a.In) {
		w.RemoveEdge(eid)
	}
	for _, eid := range slices.Clone(a.Out) {
		w.RemoveEdge(eid)
	}
	n := w.nodes[id]
	delete(w.adjacency, id)
	delete(w.nodes, id)
	if n.Group != "" {
		w.leaveGroup(n.Group, id, n.Box)
	}
}

// RemoveNodeAndCloseGaps removes an ungrouped node and reconnects each of
// its predecessors to each of its successors, then re-lays out the former
// successors. Grouped nodes are removed like RemoveNode, since their
// siblings already carry the connections.
func (w *Workflow) RemoveNodeAndCloseGaps(id string) {
	n, ok := w.nodes[id]
	if !ok {
		return
	}
	if n.Group != "" {
		w.RemoveNode(id)
		return
	}
	preds := w.Predecessors(id)
	succs := w.Successors(id)
	w.RemoveNode(id)
	for _, p := range preds {
		for _, s := range succs {
			if !w.HasEdge(p, s) {
				w.AddEdge(p, s)
			}
		}
	}
	for _, s := range succs {
		w.RecalculateNodePositionsFrom(s)
	}
}

// =============================================================================
// Structural inserts
// =============================================================================

// AddNodeAfter adds a node as a new successor of anchor. Anchor's other
// connections are left alone, so a node with successors gains a branch.
// Returns "" if anchor does not exist.
func (w *Workflow) AddNodeAfter(p Payload, anchor string) string {
	return w.addNodeAt(p, anchor, true)
}

// AddNodeBefore adds a node as a new predecessor of anchor. Anchor keeps its
// other incoming connections.
// Returns "" if anchor does not exist.
func (w *Workflow) AddNodeBefore(p Payload, anchor string) string {
	return w.addNodeAt(p, anchor, false)
}

func (w *Workflow) addNodeAt(p Payload, anchor string, after bool) string {
	a, ok := w.nodes[anchor]
	if !ok {
		return ""
	}
	id := w.AddNode(p, &BoundingBox{X: a.Box.X, Width: a.Box.Width, Height: a.Box.Height})
	if after {
		w.AddEdge(anchor, id)
	} else {
		w.AddEdge(id, anchor)
	}
	w.RecalculateNodePositionsFrom(id)
	return id
}

// AddNodeBetween splices a node into an existing edge.
// Returns "" if the edge does not exist.
func (w *Workflow) AddNodeBetween(p Payload, edgeID string) string {
	e, ok := w.edges[edgeID]
	if !ok {
		return ""
	}
	source, target := e.Source, e.Target
	box := w.nodes[target].Box
	id := w.AddNode(p, &BoundingBox{X: box.X, Width: box.Width, Height: box.Height})
	w.RemoveEdge(edgeID)
	w.AddEdge(source, id)
	w.AddEdge(id, target)
	w.RecalculateNodePositionsFrom(id)
	return id
}

// AddNodeBeside inserts a node parallel to sibling: both end up in the same
// group and the new node gets a copy of each of sibling's connections.
// Returns "" if sibling does not exist.
func (w *Workflow) AddNodeBeside(p Payload, sibling string) string {
	sib, ok := w.nodes[sibling]
	if !ok {
		return ""
	}
	id := w.AddNode(p, &BoundingBox{X: sib.Box.X, Y: sib.Box.Y, Width: sib.Box.Width, Height: sib.Box.Height})
	w.joinGroup(sibling, id)
	for _, pred := range w.Predecessors(sibling) {
		w.AddEdge(pred, id)
	}
	for _, succ := range w.Successors(sibling) {
		w.AddEdge(id, succ)
	}
	w.RecalculateNodePositionsFrom(id)
	return id
}

// =============================================================================
// Updates
// =============================================================================

// UpdateNodeData replaces the node's payload and propagates compatibility
// from it. No-op if absent.
func (w *Workflow) UpdateNodeData(id string, p Payload) {
	n, ok := w.nodes[id]
	if !ok {
		return
	}
	n.Payload = p
	w.DetermineEdgeCompatibilityFromNode(id)
}

// UpdateNodePosition overwrites the node's bounding box. No-op if absent.
func (w *Workflow) UpdateNodePosition(id string, box BoundingBox) {
	if n, ok := w.nodes[id]; ok {
		n.Box = box
	}
}

// SetNodeSize records the rendered size of a node and re-lays out the
// subgraph below it. No-op if absent.
func (w *Workflow) SetNodeSize(id string, width, height float64) {
	n, ok := w.nodes[id]
	if !ok {
		return
	}
	n.Box.Width = width
	n.Box.Height = height
	w.RecalculateNodePositionsFrom(id)
}
