// internal/tree/node.go
package tree

import "time"

// ExplorationNode is one snapshot in a session's exploration history, as
// returned by the server's tree endpoint. ParentID is a weak back-reference:
// it is used for lookup only and may point at an id that is not part of the
// current node set.
type ExplorationNode struct {
	ID                  string    `json:"id"`
	ParentID            string    `json:"parent_id,omitempty"`
	MutationStrategy    string    `json:"mutation_strategy"`
	MutationDescription string    `json:"mutation_description"`
	Depth               int       `json:"depth"`
	CombinedScore       *float64  `json:"combined_score,omitempty"`
	IsFavorite          bool      `json:"is_favorite"`
	CreatedAt           time.Time `json:"created_at"`
}

// LayoutNode wraps an ExplorationNode with its owned children list and the
// coordinates assigned by Layout. The forest built from one input snapshot
// exclusively owns all of its LayoutNodes.
type LayoutNode struct {
	Node     ExplorationNode
	Children []*LayoutNode
	X        float64
	Y        float64
}

// Edge is a parent->child connector implied by the children lists. Edges
// carry no state of their own; they exist for renderers that draw links.
type Edge struct {
	Parent *LayoutNode
	Child  *LayoutNode
}
