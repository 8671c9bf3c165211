package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/canicai/canicai/pkg/workflow"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds type, manufacturer and minimal version to node labels.
	// When false, only the component name is shown.
	Detailed bool
}

// Colours used for compatibility states.
const (
	colorOK      = "#2e7d32"
	colorPartial = "#ef6c00"
	colorNo      = "#c62828"
	fillOK       = "#e8f5e9"
	fillNo       = "#ffebee"
)

// ToDOT converts a workflow to Graphviz DOT. Output is deterministic:
// nodes, edges and groups are written in id order.
//
// Group members and ungrouped parallel alternatives share a rank. Final
// nodes of a chain get a double border.
func ToDOT(w *workflow.Workflow, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  label=%q;\n", w.Name)
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=16, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range w.Nodes() {
		attrs := nodeAttrs(n, opts.Detailed)
		if w.IsLastNode(n.ID) && len(w.Predecessors(n.ID)) > 0 {
			attrs = append(attrs, "peripheries=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range w.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e), ", "))
	}

	for _, g := range w.Groups() {
		writeSameRank(&buf, w.GroupMembers(g))
	}
	for _, set := range parallelSets(w) {
		writeSameRank(&buf, set)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeSameRank(buf *bytes.Buffer, members []string) {
	ids := make([]string, len(members))
	for i, id := range members {
		ids[i] = strconv.Quote(id)
	}
	fmt.Fprintf(buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
}

// parallelSets returns ungrouped nodes that are alternatives of each other:
// same predecessors and same successors. Each set is sorted and listed once.
func parallelSets(w *workflow.Workflow) [][]string {
	var sets [][]string
	seen := make(map[string]bool)
	for _, n := range w.Nodes() {
		if seen[n.ID] || n.Group != "" {
			continue
		}
		set := []string{n.ID}
		for _, id := range w.ParallelNodes(n.ID) {
			if _, grouped := w.GroupOf(id); !grouped && !seen[id] {
				set = append(set, id)
			}
		}
		if len(set) < 2 {
			continue
		}
		for _, id := range set {
			seen[id] = true
		}
		sets = append(sets, set)
	}
	return sets
}

func label(n workflow.Node, detailed bool) string {
	name := n.Payload.Name
	if name == "" {
		name = n.ID
	}
	if !detailed {
		return name
	}
	parts := []string{name, "type: " + string(n.Payload.Type)}
	if n.Payload.Manufacturer != "" {
		parts = append(parts, "manufacturer: "+n.Payload.Manufacturer)
	}
	if v := n.Payload.MinimalRequiredVersion; v != "" {
		parts = append(parts, "min version: "+v)
	}
	if n.Payload.IsCustom() {
		parts = append(parts, string(n.Payload.DataType))
	}
	return strings.Join(parts, "\n")
}

func nodeAttrs(n workflow.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label(n, detailed))}
	if n.Payload.IsCompatible() {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fillOK), fmt.Sprintf("color=%q", colorOK))
	} else {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fillNo), fmt.Sprintf("color=%q", colorNo))
	}
	if n.Payload.IsCustom() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

func edgeAttrs(e workflow.Edge) []string {
	switch e.Compatible {
	case workflow.Yes:
		return []string{fmt.Sprintf("color=%q", colorOK)}
	case workflow.Partial:
		return []string{fmt.Sprintf("color=%q", colorPartial), "style=dashed"}
	default:
		return []string{fmt.Sprintf("color=%q", colorNo), "style=dotted"}
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
