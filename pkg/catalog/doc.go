// Package catalog defines the component catalog records consumed by the
// workflow engine and the collaborators that resolve them.
//
// # Records
//
// A [Component] is a single piece of hardware or software that can be placed
// into a workflow. Components belong to a [Category] and are produced by a
// manufacturer. A component is either compatible with the target system or
// not; some components additionally require a minimal version.
//
// # Collaborators
//
// The engine never talks to a database or the network itself. Instead it
// resolves records through two small interfaces:
//
//   - [ComponentFetcher]: batch lookup of components by id
//   - [CategoryFetcher]: single lookup of a category by id
//
// [Memory] implements both over in-process maps and is used by tests and by
// the CLI when a catalog file is loaded with [ReadFile]. [Cached] wraps any
// ComponentFetcher and remembers every component it has seen, so repeated
// loads of the same workflow only hit the backend once.
//
// Backends live in subpackages:
//
//   - catalog/mongo: MongoDB collections (components, categories, manufacturers)
//   - catalog/remote: HTTP client for the catalog API served by pkg/api
//
// # External Images
//
// Custom nodes of type "external-image" do not reference a real category.
// They use the reserved [ExternalImageCategory] instead.
package catalog
