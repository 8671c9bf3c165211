package persist

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid workflow")

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks a saved workflow received from an untrusted source.
//
// Field rules come from the struct tags. On top of that the graph must be
// consistent: node ids are unique, every node has exactly one adjacency
// entry, every edge connects known nodes, and the adjacency lists match
// the edges exactly.
func Validate(s *SavedWorkflow) error {
	if s == nil {
		return fmt.Errorf("%w: empty body", ErrInvalid)
	}
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalid, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return checkReferences(s)
}

func checkReferences(s *SavedWorkflow) error {
	nodes := make(map[string]bool, s.ComponentCount())
	for _, n := range s.Nodes {
		if nodes[n.ID] {
			return fmt.Errorf("%w: duplicate node id %s", ErrInvalid, n.ID)
		}
		nodes[n.ID] = true
	}
	for _, n := range s.CustomNodes {
		if nodes[n.ID] {
			return fmt.Errorf("%w: duplicate node id %s", ErrInvalid, n.ID)
		}
		nodes[n.ID] = true
	}

	in := make(map[string][]string)
	out := make(map[string][]string)
	edges := make(map[string]bool, len(s.Edges))
	for _, e := range s.Edges {
		if edges[e.ID] {
			return fmt.Errorf("%w: duplicate edge id %s", ErrInvalid, e.ID)
		}
		edges[e.ID] = true
		if !nodes[e.Data.Source] || !nodes[e.Data.Target] {
			return fmt.Errorf("%w: edge %s references unknown node", ErrInvalid, e.ID)
		}
		out[e.Data.Source] = append(out[e.Data.Source], e.ID)
		in[e.Data.Target] = append(in[e.Data.Target], e.ID)
	}

	seen := make(map[string]bool, len(s.Adjacencies))
	for _, a := range s.Adjacencies {
		if !nodes[a.ID] {
			return fmt.Errorf("%w: adjacency for unknown node %s", ErrInvalid, a.ID)
		}
		if seen[a.ID] {
			return fmt.Errorf("%w: duplicate adjacency for node %s", ErrInvalid, a.ID)
		}
		seen[a.ID] = true
		if !sameIDs(a.Data.In, in[a.ID]) || !sameIDs(a.Data.Out, out[a.ID]) {
			return fmt.Errorf("%w: adjacency of node %s does not match edges", ErrInvalid, a.ID)
		}
	}
	if len(seen) != len(nodes) {
		return fmt.Errorf("%w: %d nodes but %d adjacency entries", ErrInvalid, len(nodes), len(seen))
	}
	return nil
}

func sameIDs(a, b []string) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
