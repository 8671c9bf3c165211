package persist

import (
	"errors"

	"github.com/canicai/canicai/pkg/catalog"
)

// ErrWorkflowNotFound is returned when no saved workflow exists for an id.
var ErrWorkflowNotFound = errors.New("workflow not found")

// SavedWorkflow is the persisted form of a workflow.
type SavedWorkflow struct {
	ID          string           `json:"id" bson:"_id"`
	Name        string           `json:"name" bson:"name" validate:"required"`
	Adjacencies []AdjacencyEntry `json:"adjacencies" bson:"adjacencies" validate:"required,dive"`
	Nodes       []NodeEntry      `json:"nodes" bson:"nodes" validate:"required,dive"`
	CustomNodes []CustomEntry    `json:"customNodes" bson:"customNodes" validate:"required,dive"`
	Edges       []EdgeEntry      `json:"edges" bson:"edges" validate:"required,dive"`
}

// ComponentCount returns the number of catalog and custom nodes.
func (s *SavedWorkflow) ComponentCount() int {
	return len(s.Nodes) + len(s.CustomNodes)
}

// AdjacencyEntry is the saved adjacency record of one node.
type AdjacencyEntry struct {
	ID   string    `json:"id" bson:"id" validate:"required"`
	Data Adjacency `json:"data" bson:"data"`
}

// Adjacency lists the ids of a node's incoming and outgoing edges.
type Adjacency struct {
	In  []string `json:"in" bson:"in" validate:"required,dive,required"`
	Out []string `json:"out" bson:"out" validate:"required,dive,required"`
}

// NodeEntry references a catalog component by id.
type NodeEntry struct {
	ID   string   `json:"id" bson:"id" validate:"required"`
	Data NodeData `json:"data" bson:"data"`
}

// NodeData is the saved state of a catalog node.
type NodeData struct {
	ComponentID             string `json:"componentId" bson:"componentId" validate:"required"`
	SatisfiesMinimalVersion *bool  `json:"satisfiesMinimalVersion,omitempty" bson:"satisfiesMinimalVersion,omitempty"`
}

// CustomEntry embeds a user-authored component.
type CustomEntry struct {
	ID   string          `json:"id" bson:"id" validate:"required"`
	Data CustomComponent `json:"data" bson:"data"`
}

// CustomComponent is the full payload of a custom node. Manufacturer is a
// free-text name; Category is a category id.
type CustomComponent struct {
	Name                    string               `json:"name" bson:"name" validate:"required"`
	Type                    catalog.FunctionType `json:"type" bson:"type" validate:"required,oneof=input output input-output"`
	Compatible              bool                 `json:"compatible" bson:"compatible"`
	MinimalRequiredVersion  string               `json:"minimalRequiredVersion,omitempty" bson:"minimalRequiredVersion,omitempty"`
	AdditionalInfo          string               `json:"additionalInfo,omitempty" bson:"additionalInfo,omitempty"`
	Manufacturer            string               `json:"manufacturer" bson:"manufacturer" validate:"required"`
	Category                string               `json:"category" bson:"category" validate:"required"`
	DataType                string               `json:"dataType" bson:"dataType" validate:"required,oneof=custom external-image"`
	SatisfiesMinimalVersion *bool                `json:"satisfiesMinimalVersion,omitempty" bson:"satisfiesMinimalVersion,omitempty"`
}

// EdgeEntry is a saved edge.
type EdgeEntry struct {
	ID   string `json:"id" bson:"id" validate:"required"`
	Data Edge   `json:"data" bson:"data"`
}

// Edge holds the endpoints of a saved edge.
type Edge struct {
	Source string `json:"source" bson:"source" validate:"required"`
	Target string `json:"target" bson:"target" validate:"required"`
}
