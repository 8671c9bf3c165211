// Package persist converts workflows to and from their saved form.
//
// A [SavedWorkflow] is the flat, array-based representation stored by the
// workflow stores and exchanged over the HTTP API. Catalog components are
// saved by reference only: a node records its component id and the user's
// minimal-version answer, nothing else. User-authored nodes are embedded
// inline as custom nodes. Layout is never saved; it is recomputed on load.
//
// # Saving
//
//	saved := persist.ToPersisted(w)
//	data, err := persist.Marshal(saved)
//
// # Loading
//
// [FromPersisted] rebuilds a workflow in place. Components are resolved in
// one batch through a [catalog.Fetcher]; all nodes are inserted before any
// edge. Components that cannot be resolved are skipped and reported in
// [Result.Missing] instead of failing the load:
//
//	res, err := persist.FromPersisted(ctx, w, saved, fetcher)
//	if err != nil {
//	    w.Clear() // partially rebuilt, do not use
//	}
//
// # Validation
//
// [Validate] checks untrusted input such as API request bodies, using
// struct tags for field rules and explicit referential checks for the
// graph structure.
package persist
