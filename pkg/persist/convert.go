package persist

import (
	"context"
	"fmt"

	"github.com/canicai/canicai/pkg/catalog"
	"github.com/canicai/canicai/pkg/workflow"
)

// ToPersisted flattens a workflow into its saved form. Entries are sorted
// by id so equal workflows produce equal output.
func ToPersisted(w *workflow.Workflow) *SavedWorkflow {
	out := &SavedWorkflow{
		ID:          w.ID,
		Name:        w.Name,
		Adjacencies: []AdjacencyEntry{},
		Nodes:       []NodeEntry{},
		CustomNodes: []CustomEntry{},
		Edges:       []EdgeEntry{},
	}

	for _, n := range w.Nodes() {
		adj, _ := w.Adjacency(n.ID)
		out.Adjacencies = append(out.Adjacencies, AdjacencyEntry{
			ID:   n.ID,
			Data: Adjacency{In: nonNil(adj.In), Out: nonNil(adj.Out)},
		})

		p := n.Payload
		if !p.IsCustom() {
			out.Nodes = append(out.Nodes, NodeEntry{
				ID:   n.ID,
				Data: NodeData{ComponentID: p.ID, SatisfiesMinimalVersion: p.SatisfiesMinimalVersion},
			})
			continue
		}
		out.CustomNodes = append(out.CustomNodes, CustomEntry{
			ID: n.ID,
			Data: CustomComponent{
				Name:                    p.Name,
				Type:                    p.Type,
				Compatible:              p.Compatible,
				MinimalRequiredVersion:  p.MinimalRequiredVersion,
				AdditionalInfo:          p.AdditionalInfo,
				Manufacturer:            p.Manufacturer,
				Category:                p.Category,
				DataType:                string(p.DataType),
				SatisfiesMinimalVersion: p.SatisfiesMinimalVersion,
			},
		})
	}

	for _, e := range w.Edges() {
		out.Edges = append(out.Edges, EdgeEntry{
			ID:   e.ID,
			Data: Edge{Source: e.Source, Target: e.Target},
		})
	}
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// Result describes what FromPersisted could not restore.
type Result struct {
	// Missing lists node ids whose component or category could not be
	// resolved. Those nodes are skipped.
	Missing []string
	// DroppedEdges counts edges left out because an endpoint was skipped.
	DroppedEdges int
}

// FromPersisted clears w and rebuilds it from saved.
//
// Catalog components are resolved in a single batch through f. Every node
// is inserted with its saved id before any edge, edges keep their saved
// ids, and layout runs from every first node once the graph is complete.
//
// An error from f aborts the rebuild. The workflow is then partially
// built and the caller must Clear it.
func FromPersisted(ctx context.Context, w *workflow.Workflow, saved *SavedWorkflow, f catalog.Fetcher) (Result, error) {
	w.Clear()
	w.ID = saved.ID
	w.Name = saved.Name

	var res Result

	ids := make([]string, 0, len(saved.Nodes))
	for _, n := range saved.Nodes {
		ids = append(ids, n.Data.ComponentID)
	}
	components := make(map[string]catalog.Component)
	if len(ids) > 0 {
		batch, err := f.FetchComponentsByIDs(ctx, ids)
		if err != nil {
			return res, fmt.Errorf("resolve components: %w", err)
		}
		for _, c := range batch.Components {
			components[c.ID] = c
		}
	}

	for _, n := range saved.Nodes {
		c, ok := components[n.Data.ComponentID]
		if !ok {
			res.Missing = append(res.Missing, n.ID)
			continue
		}
		w.AddNodeWithID(n.ID, workflow.Payload{
			Component:               c,
			SatisfiesMinimalVersion: n.Data.SatisfiesMinimalVersion,
		}, nil)
	}

	for _, n := range saved.CustomNodes {
		cat, err := resolveCategory(ctx, f, n.Data)
		if err != nil {
			return res, fmt.Errorf("resolve category %s: %w", n.Data.Category, err)
		}
		if cat == nil {
			res.Missing = append(res.Missing, n.ID)
			continue
		}
		w.AddNodeWithID(n.ID, customPayload(n.Data, cat.ID), nil)
	}

	for _, e := range saved.Edges {
		if w.AddEdgeWithID(e.ID, e.Data.Source, e.Data.Target) == "" {
			res.DroppedEdges++
		}
	}

	w.RecalculateAll()
	return res, nil
}

func resolveCategory(ctx context.Context, f catalog.CategoryFetcher, c CustomComponent) (*catalog.Category, error) {
	if workflow.DataType(c.DataType) == workflow.DataTypeExternalImage {
		cat := catalog.ExternalImageCategory
		return &cat, nil
	}
	return f.FetchCategoryByID(ctx, c.Category)
}

// customPayload rebuilds a custom node. The saved category id is kept so
// the reloaded node hashes like the one that was saved; categoryID only
// fills it in when the saved entry has none.
func customPayload(c CustomComponent, categoryID string) workflow.Payload {
	dt := workflow.DataType(c.DataType)
	if dt == workflow.DataTypeComponent {
		dt = workflow.DataTypeCustom
	}
	if c.Category != "" {
		categoryID = c.Category
	}
	return workflow.Payload{
		Component: catalog.Component{
			Name:                   c.Name,
			Manufacturer:           c.Manufacturer,
			Category:               categoryID,
			Type:                   c.Type,
			Compatible:             c.Compatible,
			MinimalRequiredVersion: c.MinimalRequiredVersion,
			AdditionalInfo:         c.AdditionalInfo,
		},
		DataType:                dt,
		SatisfiesMinimalVersion: c.SatisfiesMinimalVersion,
	}
}
