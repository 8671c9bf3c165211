// Package workflow is the in-memory workflow graph engine.
//
// # Overview
//
// A [Workflow] is a directed acyclic graph of components. Every node wraps a
// component [Payload]; every edge connects the output of one component to the
// input of the next. The engine answers one question: is the assembled chain
// compatible end-to-end? On the way it maintains a top-down layout and a
// content hash used to detect unsaved changes.
//
// The package is organized around five concerns that all operate on the
// same Workflow value:
//
//   - Graph store: nodes, edges and the per-node adjacency index
//   - Groups: sets of parallel sibling nodes inserted side by side
//   - Compatibility: per-node flags and per-edge tri-state propagation
//   - Layout: incremental bounding-box computation
//   - Hashing: a SHA-256 digest over the canonical graph content
//
// # Basic Usage
//
//	w := workflow.New("My setup")
//	cam := w.AddNode(workflow.Payload{Component: camera}, nil)
//	app := w.AddNodeAfter(workflow.Payload{Component: viewer}, cam)
//	fmt.Println(w.Compatible())
//
// Mutations never fail loudly. Referencing a node or edge that does not exist
// is a no-op: the workflow is left untouched and id-returning methods return
// the empty string. This keeps UI-driven edits idempotent.
//
// # Compatibility
//
// A node is compatible when its component is compatible and, if the node
// carries a minimal-version answer, that answer is positive. An edge is
// [Yes] when its source is compatible and every edge into the source is
// [Yes], [Partial] when the source is compatible but reached through a
// non-Yes edge, and [No] when the source itself is incompatible. Edge state
// is re-propagated forward after every edge insertion and payload update.
//
// # Acyclicity
//
// Edges that would close a directed cycle are refused, the same way edges to
// unknown nodes are: silently. Every traversal therefore terminates.
//
// # Concurrency
//
// Workflow instances are not safe for concurrent use. A workflow is owned by
// a single editing session; callers must synchronize access if they share it.
package workflow
