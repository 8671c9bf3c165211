package workflow

import "slices"

// reachable reports whether to can be reached from from by following
// outgoing edges. A node reaches itself.
func (w *Workflow) reachable(from, to string) bool {
	if from == to {
		return true
	}
	visited := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range w.Successors(id) {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// downstream returns start and every node reachable from it, ordered so
// that each node comes after all of its predecessors within that set.
// Nodes are visited once each regardless of how many paths lead to them.
func (w *Workflow) downstream(start ...string) []string {
	reach := make(map[string]bool)
	var stack []string
	for _, id := range start {
		if _, ok := w.nodes[id]; ok && !reach[id] {
			reach[id] = true
			stack = append(stack, id)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range w.Successors(id) {
			if !reach[next] {
				reach[next] = true
				stack = append(stack, next)
			}
		}
	}

	indegree := make(map[string]int, len(reach))
	for id := range reach {
		for _, p := range w.Predecessors(id) {
			if reach[p] {
				indegree[id]++
			}
		}
	}

	var queue []string
	for _, id := range start {
		if reach[id] && indegree[id] == 0 && !slices.Contains(queue, id) {
			queue = append(queue, id)
		}
	}
	order := make([]string, 0, len(reach))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range w.Successors(id) {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return order
}
