// Package render turns workflows into pictures.
//
// The [nodelink] subpackage emits Graphviz DOT for a workflow, with nodes
// and edges coloured by compatibility, and renders it to SVG in-process.
// [ToPDF] and [ToPNG] convert that SVG with the external rsvg-convert tool
// (from librsvg).
//
//	dot := nodelink.ToDOT(w, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/canicai/canicai/pkg/render/nodelink
package render
