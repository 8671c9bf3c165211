package workflow

import (
	"maps"
	"slices"
)

// GroupOf returns the id of the group the node belongs to.
func (w *Workflow) GroupOf(id string) (string, bool) {
	n, ok := w.nodes[id]
	if !ok || n.Group == "" {
		return "", false
	}
	return n.Group, true
}

// GroupMembers returns a copy of the group's member ids in insertion order.
func (w *Workflow) GroupMembers(groupID string) []string {
	return slices.Clone(w.groups[groupID])
}

// Groups returns all group ids, sorted.
func (w *Workflow) Groups() []string {
	return slices.Sorted(maps.Keys(w.groups))
}

// joinGroup appends id to sibling's group, creating the group around
// sibling first if it has none.
func (w *Workflow) joinGroup(sibling, id string) {
	sib := w.nodes[sibling]
	if sib.Group == "" {
		sib.Group = w.newID()
		w.groups[sib.Group] = []string{sibling}
	}
	w.groups[sib.Group] = append(w.groups[sib.Group], id)
	w.nodes[id].Group = sib.Group
}

// leaveGroup drops a removed node from its group. A group left with a
// single member is dissolved and the survivor laid out on its own;
// otherwise the remaining members are re-laid out together. Both stay
// centred where the full row was, unless predecessors place them.
func (w *Workflow) leaveGroup(groupID, id string, gone BoundingBox) {
	members := slices.DeleteFunc(w.groups[groupID], func(x string) bool { return x == id })
	row := []*Node{{Box: gone}}
	for _, m := range members {
		row = append(row, w.nodes[m])
	}
	minX, maxX := span(row)
	centre := (minX + maxX) / 2

	if len(members) > 1 {
		w.groups[groupID] = members
		w.placeGroup(members, centre)
		w.RecalculateNodePositionsFrom(members[0])
		return
	}
	delete(w.groups, groupID)
	for _, m := range members {
		n := w.nodes[m]
		n.Group = ""
		n.Box.X = centre - n.Box.Width/2
		w.RecalculateNodePositionsFrom(m)
	}
}

func (w *Workflow) previousInGroup(id string) (*Node, bool) {
	n := w.nodes[id]
	members := w.groups[n.Group]
	i := slices.Index(members, id)
	if i <= 0 {
		return nil, false
	}
	return w.nodes[members[i-1]], true
}

// ParallelNodes returns the nodes that share both the predecessor set and
// the successor set of id, found by walking one edge back and one edge
// forward. The node itself is excluded; the result is sorted.
func (w *Workflow) ParallelNodes(id string) []string {
	if _, ok := w.nodes[id]; !ok {
		return nil
	}
	preds := w.Predecessors(id)
	succs := w.Successors(id)

	candidates := make(map[string]bool)
	switch {
	case len(preds) > 0:
		for _, p := range preds {
			for _, c := range w.Successors(p) {
				candidates[c] = true
			}
		}
	case len(succs) > 0:
		for _, s := range succs {
			for _, c := range w.Predecessors(s) {
				candidates[c] = true
			}
		}
	}
	delete(candidates, id)

	var out []string
	for c := range candidates {
		if sameSet(w.Predecessors(c), preds) && sameSet(w.Successors(c), succs) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

func sameSet(a, b []string) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(slices.Compact(a), slices.Compact(b))
}
