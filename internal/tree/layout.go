// internal/tree/layout.go
package tree

// Geometry holds the node box size and spacing used by Layout.
type Geometry struct {
	NodeWidth     float64
	NodeHeight    float64
	HorizontalGap float64
	VerticalGap   float64
}

// DefaultGeometry returns the dimensions the tree view renders with unless
// configured otherwise.
func DefaultGeometry() Geometry {
	return Geometry{
		NodeWidth:     100,
		NodeHeight:    120,
		HorizontalGap: 16,
		VerticalGap:   32,
	}
}

// Bounds is the bounding box of a laid-out forest, anchored at the origin.
type Bounds struct {
	Width  float64
	Height float64
}

// Layout assigns coordinates to every node reachable from roots and returns
// the overall bounding box.
//
// y is proportional to depth: roots sit at 0, each level adds
// NodeHeight+VerticalGap. x placement uses a single cursor threaded through
// the whole forest traversal, never reset per root, so leaves receive
// strictly increasing x values in visit order and root subtrees line up
// left to right without overlapping each other. A non-leaf is centered over
// the midpoint of its first and last child only; sibling subtrees of very
// different widths can overlap visually, which is a known limitation kept
// from the reference behavior.
func Layout(roots []*LayoutNode, g Geometry) Bounds {
	var b Bounds
	cursor := 0.0
	for _, root := range roots {
		cursor = layoutSubtree(root, 0, cursor, g, &b)
	}
	return b
}

// layoutSubtree places one subtree and returns the advanced cursor.
func layoutSubtree(n *LayoutNode, depth int, cursor float64, g Geometry, b *Bounds) float64 {
	n.Y = float64(depth) * (g.NodeHeight + g.VerticalGap)

	if len(n.Children) == 0 {
		n.X = cursor
		cursor += g.NodeWidth + g.HorizontalGap
	} else {
		for _, child := range n.Children {
			cursor = layoutSubtree(child, depth+1, cursor, g, b)
		}
		first := n.Children[0]
		last := n.Children[len(n.Children)-1]
		n.X = (first.X + last.X) / 2
	}

	if n.X+g.NodeWidth > b.Width {
		b.Width = n.X + g.NodeWidth
	}
	if n.Y+g.NodeHeight > b.Height {
		b.Height = n.Y + g.NodeHeight
	}
	return cursor
}

// Edges collects every parent->child pair reachable from roots, in traversal
// order.
func Edges(roots []*LayoutNode) []Edge {
	var edges []Edge
	var walk func(n *LayoutNode)
	walk = func(n *LayoutNode) {
		for _, child := range n.Children {
			edges = append(edges, Edge{Parent: n, Child: child})
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return edges
}
