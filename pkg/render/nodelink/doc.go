// Package nodelink renders workflows as node-link diagrams with Graphviz.
//
// [ToDOT] emits DOT source for a workflow: nodes are rounded boxes filled
// green when the component is compatible and red when it is not, edges are
// coloured by their propagated compatibility, and every parallel group is
// kept on one rank. [RenderSVG] renders the DOT in-process through
// [github.com/goccy/go-graphviz].
//
//	dot := nodelink.ToDOT(w, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
package nodelink
