package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
)

// CanonicalString encodes the logical content of the workflow: node
// identities, override flags, custom payloads and connectivity, followed
// by the workflow name. Layout and edge ids do not take part.
//
// Nodes are emitted depth first from the first nodes, with siblings in id
// order. A node reachable over several paths is expanded once.
func (w *Workflow) CanonicalString() string {
	var sb strings.Builder
	visited := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		sb.WriteString(contribution(w.nodes[id].Payload, id))
		succs := w.Successors(id)
		slices.Sort(succs)
		for _, s := range succs {
			visit(s)
		}
	}
	for _, id := range w.FirstNodes() {
		visit(id)
	}

	sb.WriteString(w.Name)
	return sb.String()
}

func contribution(p Payload, id string) string {
	var s string
	if p.IsCustom() {
		s = p.Name + string(p.Type) + p.Category + p.Manufacturer + strconv.FormatBool(p.Compatible)
	} else {
		s = id
	}
	if p.SatisfiesMinimalVersion != nil {
		if *p.SatisfiesMinimalVersion {
			s += "1"
		} else {
			s += "0"
		}
	}
	return s
}

// Hash returns the hex-encoded SHA-256 digest of CanonicalString.
func (w *Workflow) Hash() string {
	sum := sha256.Sum256([]byte(w.CanonicalString()))
	return hex.EncodeToString(sum[:])
}

// RefreshHash recomputes the current hash and returns it.
func (w *Workflow) RefreshHash() string {
	w.currentHash = w.Hash()
	return w.currentHash
}

// MarkSaved records the current state as the saved state.
func (w *Workflow) MarkSaved() {
	w.savedHash = w.RefreshHash()
}

// SavedHash returns the hash recorded by the last MarkSaved.
func (w *Workflow) SavedHash() string { return w.savedHash }

// CurrentHash returns the hash recorded by the last RefreshHash.
func (w *Workflow) CurrentHash() string { return w.currentHash }

// HasUnsavedChanges refreshes the current hash and compares it with the
// saved one.
func (w *Workflow) HasUnsavedChanges() bool {
	return w.RefreshHash() != w.savedHash
}
