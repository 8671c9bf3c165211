package workflow

import (
	"slices"

	"github.com/canicai/canicai/pkg/catalog"
)

// DataType marks a node payload as user-authored. Catalog components leave
// it empty and are persisted by reference only.
type DataType string

const (
	// DataTypeComponent is the zero value used by catalog components.
	DataTypeComponent DataType = ""
	// DataTypeCustom marks a component described entirely by the user.
	DataTypeCustom DataType = "custom"
	// DataTypeExternalImage marks the external image pseudo-component.
	DataTypeExternalImage DataType = "external-image"
)

// Payload is the component data carried by a node.
type Payload struct {
	catalog.Component

	// DataType is empty for catalog components.
	DataType DataType

	// SatisfiesMinimalVersion records the user's answer to the component's
	// minimal-version requirement. Nil means the question was not asked.
	SatisfiesMinimalVersion *bool
}

// IsCustom reports whether the payload is user-authored rather than
// resolved from the catalog.
func (p Payload) IsCustom() bool { return p.DataType != DataTypeComponent }

// IsCompatible reports whether the component itself is compatible.
// It does not depend on the node's position in the graph.
func (p Payload) IsCompatible() bool {
	if p.SatisfiesMinimalVersion == nil {
		return p.Compatible
	}
	return p.Compatible && *p.SatisfiesMinimalVersion
}

// Bool returns a pointer to v, for SatisfiesMinimalVersion literals.
func Bool(v bool) *bool { return &v }

// BoundingBox is the rendered area of a node. Width and Height are measured
// by the renderer; X and Y are computed by the layout engine.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the y coordinate of the lower edge.
func (b BoundingBox) Bottom() float64 { return b.Y + b.Height }

// Right returns the x coordinate of the right edge.
func (b BoundingBox) Right() float64 { return b.X + b.Width }

// Compatibility is the derived tri-state of an edge.
type Compatibility string

const (
	No      Compatibility = "no"
	Partial Compatibility = "partial"
	Yes     Compatibility = "yes"
)

// Node is a positioned vertex wrapping a component payload.
type Node struct {
	ID      string
	Payload Payload
	Box     BoundingBox
	// Group is the id of the parallel group the node belongs to, if any.
	Group string
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID         string
	Source     string
	Target     string
	Compatible Compatibility
}

// Adjacency lists the ids of the edges entering and leaving a node.
type Adjacency struct {
	In  []string
	Out []string
}

func (a Adjacency) clone() Adjacency {
	return Adjacency{In: slices.Clone(a.In), Out: slices.Clone(a.Out)}
}
