// Package pkg provides the core libraries for canicai workflow editing.
//
// # Overview
//
// A canicai workflow is a directed acyclic graph of hardware and software
// components taken from a shared catalog. The pkg directory is organized
// into four areas:
//
//  1. [workflow] - The graph engine (nodes, edges, groups, compatibility,
//     layout and state hashing)
//  2. [catalog], [persist], [store] - Catalog records, the saved workflow
//     format and the storage backends behind it
//  3. [editor] - A session binding one workflow to a catalog and a store
//  4. [api], [render], [cache] - The HTTP API, diagram rendering and the
//     render cache
//
// # Architecture
//
// The typical data flow through canicai:
//
//	Saved workflow (JSON, store)
//	         ↓
//	    [persist] package (validate + convert)
//	         ↓
//	    [workflow] package (graph + compatibility + layout)
//	         ↓
//	    [render/nodelink] package (Graphviz DOT)
//	         ↓
//	    SVG/PDF/PNG output
//
// # Quick Start
//
// Load a workflow and check it against the catalog:
//
//	import (
//	    "github.com/canicai/canicai/pkg/catalog"
//	    "github.com/canicai/canicai/pkg/persist"
//	    "github.com/canicai/canicai/pkg/workflow"
//	)
//
//	src, _ := catalog.ReadFile("catalog.json")
//	saved, _ := persist.ReadFile("workflow.json")
//	w := workflow.New("")
//	if _, err := persist.FromPersisted(ctx, w, saved, src); err != nil {
//	    w.Clear()
//	}
//
//	report := w.CompatibilityReport()
//	fmt.Println(report.Compatible, w.RefreshHash())
//
// See the individual package documentation for details.
//
// [workflow]: github.com/canicai/canicai/pkg/workflow
// [catalog]: github.com/canicai/canicai/pkg/catalog
// [persist]: github.com/canicai/canicai/pkg/persist
// [store]: github.com/canicai/canicai/pkg/store
// [editor]: github.com/canicai/canicai/pkg/editor
// [api]: github.com/canicai/canicai/pkg/api
// [render]: github.com/canicai/canicai/pkg/render
// [cache]: github.com/canicai/canicai/pkg/cache
package pkg
