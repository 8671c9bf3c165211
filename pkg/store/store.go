// Package store provides storage for saved workflows.
//
// This package defines the [Store] interface with implementations for
// different backends:
//   - [Memory]: in-process storage for tests and the API in development
//   - [File]: one JSON file per workflow plus an index, for the CLI
//   - mongo, redis, postgres and badger subpackages for shared or embedded
//     deployments
//
// Workflows are stored as opaque [persist.SavedWorkflow] blobs keyed by
// id. Every backend also keeps a small index of [Summary] records so
// saved workflows can be listed without decoding them all.
//
// # Usage
//
//	st, err := store.NewFile("")  // Uses the user config dir
//	if err != nil {
//	    return err
//	}
//	saved, err := st.Load(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if saved == nil {
//	    // No workflow with that id
//	}
package store

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/canicai/canicai/pkg/persist"
)

// Store loads and saves workflows by id.
type Store interface {
	// Load returns the saved workflow, or nil, nil if there is none.
	Load(ctx context.Context, id string) (*persist.SavedWorkflow, error)
	// Save inserts or replaces the workflow under saved.ID.
	Save(ctx context.Context, saved *persist.SavedWorkflow) error
	// List returns the index of saved workflows, most recently updated first.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes a workflow. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	Close() error
}

// Summary is the index entry of a saved workflow.
type Summary struct {
	ID             string    `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	ComponentCount int       `json:"componentCount" bson:"componentCount"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SummaryOf builds the index entry for a workflow saved at t.
func SummaryOf(saved *persist.SavedWorkflow, t time.Time) Summary {
	return Summary{
		ID:             saved.ID,
		Name:           saved.Name,
		ComponentCount: saved.ComponentCount(),
		UpdatedAt:      t.UTC(),
	}
}

// SortSummaries orders summaries by update time, newest first, then by id.
func SortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
