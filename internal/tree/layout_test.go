package tree

import (
	"testing"
)

func testGeometry() Geometry {
	return Geometry{NodeWidth: 100, NodeHeight: 120, HorizontalGap: 16, VerticalGap: 32}
}

func findNode(roots []*LayoutNode, id string) *LayoutNode {
	var found *LayoutNode
	var walk func(n *LayoutNode)
	walk = func(n *LayoutNode) {
		if n.Node.ID == id {
			found = n
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return found
}

func TestLayoutWorkedExample(t *testing.T) {
	// a is the root, b and c its children in that order, d under b.
	nodes := []ExplorationNode{
		{ID: "a"},
		{ID: "b", ParentID: "a"},
		{ID: "c", ParentID: "a"},
		{ID: "d", ParentID: "b"},
	}
	roots := BuildForest(nodes)
	Layout(roots, testGeometry())

	wantX := map[string]float64{"d": 0, "c": 116, "b": 0, "a": 58}
	wantY := map[string]float64{"a": 0, "b": 120 + 32, "c": 120 + 32, "d": 2 * (120 + 32)}

	for id, x := range wantX {
		n := findNode(roots, id)
		if n == nil {
			t.Fatalf("Node %s missing from forest", id)
		}
		if n.X != x {
			t.Errorf("%s.X = %v, want %v", id, n.X, x)
		}
		if n.Y != wantY[id] {
			t.Errorf("%s.Y = %v, want %v", id, n.Y, wantY[id])
		}
	}
}

func TestLayoutLeafSpacing(t *testing.T) {
	nodes := []ExplorationNode{
		{ID: "r"},
		{ID: "l1", ParentID: "r"},
		{ID: "l2", ParentID: "r"},
		{ID: "l3", ParentID: "r"},
		{ID: "l4", ParentID: "r"},
	}
	roots := BuildForest(nodes)
	g := testGeometry()
	Layout(roots, g)

	step := g.NodeWidth + g.HorizontalGap
	for i, id := range []string{"l1", "l2", "l3", "l4"} {
		n := findNode(roots, id)
		want := float64(i) * step
		if n.X != want {
			t.Errorf("%s.X = %v, want %v", id, n.X, want)
		}
	}
}

func TestLayoutParentCentering(t *testing.T) {
	// The parent centers over its first and last child only; the middle
	// child does not pull the midpoint.
	nodes := []ExplorationNode{
		{ID: "p"},
		{ID: "a", ParentID: "p"},
		{ID: "b", ParentID: "p"},
		{ID: "c", ParentID: "p"},
	}
	roots := BuildForest(nodes)
	Layout(roots, testGeometry())

	first := findNode(roots, "a")
	last := findNode(roots, "c")
	parent := findNode(roots, "p")
	want := (first.X + last.X) / 2
	if parent.X != want {
		t.Errorf("p.X = %v, want %v", parent.X, want)
	}
}

func TestLayoutSharedCursorAcrossRoots(t *testing.T) {
	// The cursor is never reset between roots, so the second root's subtree
	// continues to the right of the first.
	nodes := []ExplorationNode{
		{ID: "r1"},
		{ID: "r1c", ParentID: "r1"},
		{ID: "r2"},
	}
	roots := BuildForest(nodes)
	g := testGeometry()
	Layout(roots, g)

	r1c := findNode(roots, "r1c")
	r2 := findNode(roots, "r2")
	if r1c.X != 0 {
		t.Errorf("r1c.X = %v, want 0", r1c.X)
	}
	if r2.X != g.NodeWidth+g.HorizontalGap {
		t.Errorf("r2.X = %v, want %v", r2.X, g.NodeWidth+g.HorizontalGap)
	}
	if r2.Y != 0 {
		t.Errorf("r2.Y = %v, want 0 (roots sit at depth 0)", r2.Y)
	}
}

func TestLayoutBounds(t *testing.T) {
	nodes := []ExplorationNode{
		{ID: "a"},
		{ID: "b", ParentID: "a"},
		{ID: "c", ParentID: "a"},
	}
	roots := BuildForest(nodes)
	g := testGeometry()
	bounds := Layout(roots, g)

	// Two leaves side by side, two levels deep.
	wantWidth := (g.NodeWidth + g.HorizontalGap) + g.NodeWidth
	wantHeight := (g.NodeHeight + g.VerticalGap) + g.NodeHeight
	if bounds.Width != wantWidth {
		t.Errorf("Width = %v, want %v", bounds.Width, wantWidth)
	}
	if bounds.Height != wantHeight {
		t.Errorf("Height = %v, want %v", bounds.Height, wantHeight)
	}
}

func TestLayoutEmptyForest(t *testing.T) {
	bounds := Layout(nil, testGeometry())
	if bounds.Width != 0 || bounds.Height != 0 {
		t.Errorf("Empty forest bounds = %+v, want zero", bounds)
	}
}

func TestEdges(t *testing.T) {
	nodes := []ExplorationNode{
		{ID: "a"},
		{ID: "b", ParentID: "a"},
		{ID: "c", ParentID: "a"},
		{ID: "d", ParentID: "b"},
	}
	roots := BuildForest(nodes)
	edges := Edges(roots)

	if len(edges) != 3 {
		t.Fatalf("Expected 3 edges, got %d", len(edges))
	}
	want := [][2]string{{"a", "b"}, {"b", "d"}, {"a", "c"}}
	for i, pair := range want {
		if edges[i].Parent.Node.ID != pair[0] || edges[i].Child.Node.ID != pair[1] {
			t.Errorf("Edge %d = %s->%s, want %s->%s", i,
				edges[i].Parent.Node.ID, edges[i].Child.Node.ID, pair[0], pair[1])
		}
	}
}
