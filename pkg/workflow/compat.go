package workflow

// NodeCompatible reports the node's own compatibility. ok is false if the
// node does not exist.
func (w *Workflow) NodeCompatible(id string) (compatible, ok bool) {
	n, ok := w.nodes[id]
	if !ok {
		return false, false
	}
	return n.Payload.IsCompatible(), true
}

// Compatible reports whether the workflow is non-empty and every node is
// compatible on its own. Edge states do not take part.
func (w *Workflow) Compatible() bool {
	if len(w.nodes) == 0 {
		return false
	}
	for _, n := range w.nodes {
		if !n.Payload.IsCompatible() {
			return false
		}
	}
	return true
}

// edgeCompatibility derives an edge's state from its source node and the
// edges entering that source.
func (w *Workflow) edgeCompatibility(e *Edge) Compatibility {
	src, ok := w.nodes[e.Source]
	if !ok || !src.Payload.IsCompatible() {
		return No
	}
	for _, eid := range w.adjacency[e.Source].In {
		if in, ok := w.edges[eid]; ok && in.Compatible != Yes {
			return Partial
		}
	}
	return Yes
}

// DetermineEdgeCompatibilityFromNode recomputes the outgoing edges of id
// and of every node downstream of it. Nodes are processed after all their
// predecessors so each edge sees final upstream state.
func (w *Workflow) DetermineEdgeCompatibilityFromNode(id string) {
	for _, nid := range w.downstream(id) {
		w.refreshOutEdges(nid)
	}
}

func (w *Workflow) refreshOutEdges(id string) {
	for _, eid := range w.adjacency[id].Out {
		if e, ok := w.edges[eid]; ok {
			e.Compatible = w.edgeCompatibility(e)
		}
	}
}

// Report is a snapshot of the derived compatibility state.
type Report struct {
	Compatible bool                     `json:"compatible"`
	Nodes      map[string]bool          `json:"nodes"`
	Edges      map[string]Compatibility `json:"edges"`
	// Incompatible lists the ids of incompatible nodes, sorted.
	Incompatible []string `json:"incompatible,omitempty"`
}

// CompatibilityReport returns the per-node and per-edge state.
func (w *Workflow) CompatibilityReport() Report {
	r := Report{
		Compatible: w.Compatible(),
		Nodes:      make(map[string]bool, len(w.nodes)),
		Edges:      make(map[string]Compatibility, len(w.edges)),
	}
	for _, n := range w.Nodes() {
		ok := n.Payload.IsCompatible()
		r.Nodes[n.ID] = ok
		if !ok {
			r.Incompatible = append(r.Incompatible, n.ID)
		}
	}
	for id, e := range w.edges {
		r.Edges[id] = e.Compatible
	}
	return r
}
