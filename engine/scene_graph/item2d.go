package scene_graph

// Item2D embeds externally rendered 2D content in the scene. Preparation only
// records its transform; the content renderer consumes it through the pass
// list. Items are moved to the front of the traversal order so their content
// can be prepared before 3D renderables reference it.
type Item2D struct {
	Node

	// ZOrder stacks items sharing a parent; higher draws later. Items under
	// different parents are ordered by their parent's camera distance instead.
	ZOrder int

	// MVP is the item's model-view-projection, derived during preparation.
	MVP [16]float32
}

// NewItem2D creates a 2D item node.
//
// Parameters:
//   - name: diagnostic identifier
//
// Returns:
//   - *Item2D: the new item node
func NewItem2D(name string) *Item2D {
	it := &Item2D{}
	it.initNode(name, NodeTypeItem2D, it)
	return it
}
