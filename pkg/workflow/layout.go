package workflow

import "math"

// RecalculateNodePosition places a single node relative to its
// predecessors and group. Width and height are left untouched.
//
//   - y is 0 without predecessors, otherwise the lowest predecessor bottom
//     plus the spacing.
//   - A grouped node that is not the first member sits to the right of the
//     member before it.
//   - An ungrouped node with predecessors is centred under their span.
//   - Otherwise x is kept.
func (w *Workflow) RecalculateNodePosition(id string) {
	n, ok := w.nodes[id]
	if !ok {
		return
	}
	preds := w.predecessorNodes(id)

	if len(preds) == 0 {
		n.Box.Y = 0
	} else {
		bottom := math.Inf(-1)
		for _, p := range preds {
			bottom = math.Max(bottom, p.Box.Bottom())
		}
		n.Box.Y = bottom + w.spacing
	}

	if n.Group != "" {
		if prev, ok := w.previousInGroup(id); ok {
			n.Box.X = prev.Box.Right() + w.spacing
		}
		return
	}
	if len(preds) > 0 {
		minX, maxX := span(preds)
		n.Box.X = minX + ((maxX-minX)/2 - n.Box.Width/2)
	}
}

// RecalculateNodePositionsFrom lays out id and everything downstream of
// it, refreshing edge compatibility on the way. Reaching a grouped node
// re-lays out and recentres its whole group.
func (w *Workflow) RecalculateNodePositionsFrom(id string) {
	w.relayout(w.downstream(id))
}

// RecalculateAll lays out the entire workflow starting at its first nodes.
func (w *Workflow) RecalculateAll() {
	w.relayout(w.downstream(w.FirstNodes()...))
}

func (w *Workflow) relayout(order []string) {
	for _, id := range order {
		n := w.nodes[id]
		if n.Group == "" {
			w.RecalculateNodePosition(id)
		} else {
			members := w.groups[n.Group]
			centre := w.groupCentre(members)
			for _, m := range members {
				w.RecalculateNodePosition(m)
			}
			w.placeGroup(members, centre)
		}
		w.refreshOutEdges(id)
	}
}

// CenterGroup lays the members of a group out left to right, centred
// under the combined span of their predecessors. Without predecessors the
// row stays centred where the members currently are. No-op for unknown
// groups.
func (w *Workflow) CenterGroup(groupID string) {
	members, ok := w.groups[groupID]
	if !ok || len(members) == 0 {
		return
	}
	w.placeGroup(members, w.groupCentre(members))
}

// groupCentre is the middle of the members' predecessor span, or of the
// members' own span when they have no predecessors.
func (w *Workflow) groupCentre(members []string) float64 {
	var preds, own []*Node
	seen := make(map[string]bool)
	for _, m := range members {
		own = append(own, w.nodes[m])
		for _, p := range w.predecessorNodes(m) {
			if !seen[p.ID] {
				seen[p.ID] = true
				preds = append(preds, p)
			}
		}
	}
	if len(preds) == 0 {
		preds = own
	}
	minX, maxX := span(preds)
	return (minX + maxX) / 2
}

// placeGroup puts the members side by side with the row centred on centre.
func (w *Workflow) placeGroup(members []string, centre float64) {
	total := w.spacing * float64(len(members)-1)
	for _, m := range members {
		total += w.nodes[m].Box.Width
	}
	x := centre - total/2
	for _, m := range members {
		n := w.nodes[m]
		n.Box.X = x
		x += n.Box.Width + w.spacing
	}
}

func (w *Workflow) predecessorNodes(id string) []*Node {
	var out []*Node
	for _, p := range w.Predecessors(id) {
		if n, ok := w.nodes[p]; ok {
			out = append(out, n)
		}
	}
	return out
}

func span(nodes []*Node) (minX, maxX float64) {
	minX, maxX = math.Inf(1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.Box.X)
		maxX = math.Max(maxX, n.Box.Right())
	}
	return minX, maxX
}
