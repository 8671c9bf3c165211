package catalog

import (
	"context"
	"slices"
	"strings"
)

// FunctionType describes which side of a chain a component can sit on.
type FunctionType string

const (
	TypeInput       FunctionType = "input"
	TypeOutput      FunctionType = "output"
	TypeInputOutput FunctionType = "input-output"
)

// Valid reports whether t is one of the known function types.
func (t FunctionType) Valid() bool {
	switch t {
	case TypeInput, TypeOutput, TypeInputOutput:
		return true
	}
	return false
}

// Component is a catalog record with its manufacturer and category
// populated as plain identifiers / names.
type Component struct {
	ID                     string       `json:"id" bson:"id"`
	Name                   string       `json:"name" bson:"name"`
	Manufacturer           string       `json:"manufacturer" bson:"manufacturer"`
	Category               string       `json:"category" bson:"category"`
	Type                   FunctionType `json:"type" bson:"type"`
	Compatible             bool         `json:"compatible" bson:"compatible"`
	MinimalRequiredVersion string       `json:"minimalRequiredVersion,omitempty" bson:"minimalRequiredVersion,omitempty"`
	AdditionalInfo         string       `json:"additionalInfo,omitempty" bson:"additionalInfo,omitempty"`
}

// LocalizedName holds the display name of a category in every supported language.
type LocalizedName struct {
	EN string `json:"en" bson:"en"`
	DE string `json:"de" bson:"de"`
}

// Category groups components and carries the icon used for rendering.
type Category struct {
	ID    string         `json:"id" bson:"id"`
	Name  LocalizedName  `json:"name" bson:"name"`
	Icon  string         `json:"icon" bson:"icon"`
	Types []FunctionType `json:"types,omitempty" bson:"types,omitempty"`
}

// Manufacturer produces components.
type Manufacturer struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// ExternalImageCategoryID is the reserved category id for external image nodes.
const ExternalImageCategoryID = "66743249d32d6563673e0e9b"

// ExternalImageCategory is the sentinel category used by "external-image"
// custom nodes. It is never stored in a catalog backend.
var ExternalImageCategory = Category{
	ID:    ExternalImageCategoryID,
	Icon:  "image",
	Types: []FunctionType{TypeOutput},
}

// Batch is the result of a batch component lookup. Ids that could not be
// resolved are reported in Missing rather than failing the whole lookup.
type Batch struct {
	Components []Component `json:"components"`
	Missing    []string    `json:"missing"`
}

// ComponentFetcher resolves components by id.
type ComponentFetcher interface {
	FetchComponentsByIDs(ctx context.Context, ids []string) (Batch, error)
}

// CategoryFetcher resolves a single category by id.
// Implementations return nil, nil when the category does not exist.
type CategoryFetcher interface {
	FetchCategoryByID(ctx context.Context, id string) (*Category, error)
}

// Fetcher is the union of both lookups, implemented by every backend.
type Fetcher interface {
	ComponentFetcher
	CategoryFetcher
}

// Source is a browsable catalog backend, used by the HTTP API.
type Source interface {
	Fetcher
	FetchComponentByID(ctx context.Context, id string) (*Component, error)
	Categories(ctx context.Context) ([]Category, error)
	ComponentsInCategory(ctx context.Context, categoryID string) ([]Component, error)
	Search(ctx context.Context, q Query) ([]Component, error)
}

// MinQueryLength is the shortest accepted search text.
const MinQueryLength = 3

// Query is a free-text component search. A component matches when any word
// of Text occurs in its name or its manufacturer's name, case-insensitively.
// A non-empty Types restricts results to those function types.
type Query struct {
	Text  string
	Types []FunctionType
}

// Words splits the search text into lower-cased words.
func (q Query) Words() []string {
	return strings.Fields(strings.ToLower(q.Text))
}

func (q Query) matchesType(t FunctionType) bool {
	return len(q.Types) == 0 || slices.Contains(q.Types, t)
}

// Dedupe returns ids without duplicates and empty strings, preserving order.
func Dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
