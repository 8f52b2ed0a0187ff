// internal/tree/builder.go
package tree

// BuildForest converts a flat, parent-referencing node list into a forest of
// LayoutNodes. Every input node appears in the result exactly once. A node
// whose parent_id is empty, or references an id absent from the input, is
// promoted to a root; partially loaded upstream data must render, not crash.
//
// The two passes never recurse, so cyclic parent references cannot loop the
// builder. Nodes caught in a cycle all have a present parent and therefore
// end up in children lists without being reachable from any root; that input
// is a contract violation by the server and is tolerated, not detected.
func BuildForest(nodes []ExplorationNode) []*LayoutNode {
	byID := make(map[string]*LayoutNode, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &LayoutNode{Node: nodes[i]}
	}

	var roots []*LayoutNode
	for i := range nodes {
		ln := byID[nodes[i].ID]
		parentID := nodes[i].ParentID
		if parentID != "" {
			if parent, ok := byID[parentID]; ok {
				parent.Children = append(parent.Children, ln)
				continue
			}
		}
		roots = append(roots, ln)
	}

	return roots
}
