// package scene_graph contains the node tree consumed by the per-frame
// preparation pass. Nodes are plain structs: a shared Node base carries the
// transform hierarchy, and typed wrappers (Model, Light, Camera, ...) embed
// it and register themselves through a type tag, so traversal code can switch
// on the tag instead of type-asserting through interfaces.
package scene_graph

import "github.com/Carmen-Shannon/lumen-go/common"

// NodeType tags what a Node actually is. The zero value is a plain transform
// node with no renderable payload.
type NodeType uint8

const (
	// NodeTypeNode is a plain transform node.
	NodeTypeNode NodeType = iota
	// NodeTypeModel is a renderable mesh instance.
	NodeTypeModel
	// NodeTypeLight is a light source.
	NodeTypeLight
	// NodeTypeCamera is a camera.
	NodeTypeCamera
	// NodeTypeParticleSystem is a CPU particle system.
	NodeTypeParticleSystem
	// NodeTypeItem2D is an embedded 2D item.
	NodeTypeItem2D
	// NodeTypeReflectionProbe is a reflection probe volume.
	NodeTypeReflectionProbe
	// NodeTypeSkeleton is a skinning skeleton container.
	NodeTypeSkeleton
	// NodeTypeJoint is a skinning joint.
	NodeTypeJoint
	// NodeTypeLayer is a scene layer root.
	NodeTypeLayer
)

// Node is the base of every scene graph entry. Typed nodes embed it; the
// Type tag plus the variant back-pointer recover the wrapper from a bare
// *Node during traversal.
type Node struct {
	// Name identifies the node for diagnostics.
	Name string
	// Type tags the concrete node kind.
	Type NodeType

	// Parent is the owning node, nil for roots.
	Parent *Node
	// Children are the owned nodes in declaration order.
	Children []*Node

	// Position is the local translation.
	Position [3]float32
	// Rotation is the local Euler rotation in radians (applied Y, X, Z).
	Rotation [3]float32
	// Scale is the local scale, (1,1,1) by default.
	Scale [3]float32
	// LocalOpacity is this node's own opacity factor.
	LocalOpacity float32
	// Active is this node's own enabled flag.
	Active bool

	// LocalTransform is derived from Position/Rotation/Scale on update.
	LocalTransform [16]float32
	// GlobalTransform is parent global times local, derived on update.
	GlobalTransform [16]float32
	// GlobalOpacity is the product of opacities down from the root.
	GlobalOpacity float32
	// GlobalActive is the conjunction of Active down from the root.
	GlobalActive bool

	// TransformDirty is set by mutation and cleared when globals update.
	TransformDirty bool
	// ContentDirty is set when non-transform state changed since last frame.
	ContentDirty bool
	// DFSIndex is the traversal order index assigned during preparation.
	DFSIndex int

	variant any
}

// initNode wires the base fields of a freshly created node.
func (n *Node) initNode(name string, typ NodeType, variant any) {
	n.Name = name
	n.Type = typ
	n.Scale = [3]float32{1, 1, 1}
	n.LocalOpacity = 1
	n.Active = true
	n.TransformDirty = true
	n.ContentDirty = true
	n.variant = variant
	common.Identity(n.LocalTransform[:])
	common.Identity(n.GlobalTransform[:])
}

// NewNode creates a plain transform node.
//
// Parameters:
//   - name: diagnostic identifier
//
// Returns:
//   - *Node: the new node
func NewNode(name string) *Node {
	n := &Node{}
	n.initNode(name, NodeTypeNode, nil)
	return n
}

// AddChild appends a child, detaching it from any previous parent first.
//
// Parameters:
//   - c: the node to attach
func (n *Node) AddChild(c *Node) {
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	c.Parent = n
	c.TransformDirty = true
	n.Children = append(n.Children, c)
}

// RemoveChild detaches a child. No-op if c is not a child of n.
//
// Parameters:
//   - c: the node to detach
func (n *Node) RemoveChild(c *Node) {
	for i, child := range n.Children {
		if child == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.Parent = nil
			c.TransformDirty = true
			return
		}
	}
}

// SetPosition updates the local translation and marks the transform dirty.
//
// Parameters:
//   - x, y, z: the new translation
func (n *Node) SetPosition(x, y, z float32) {
	n.Position = [3]float32{x, y, z}
	n.TransformDirty = true
}

// SetRotation updates the local Euler rotation (radians) and marks the
// transform dirty.
//
// Parameters:
//   - x, y, z: rotation around each axis
func (n *Node) SetRotation(x, y, z float32) {
	n.Rotation = [3]float32{x, y, z}
	n.TransformDirty = true
}

// SetScale updates the local scale and marks the transform dirty.
//
// Parameters:
//   - x, y, z: the new scale factors
func (n *Node) SetScale(x, y, z float32) {
	n.Scale = [3]float32{x, y, z}
	n.TransformDirty = true
}

// UpdateGlobalState recomputes the derived transform, opacity and active
// state from the parent's globals. Returns whether this node's transform
// actually changed, so callers can accumulate frame dirtiness.
//
// Parameters:
//   - parentTransform: the parent's global transform, nil for roots
//   - parentOpacity: the parent's global opacity (1 for roots)
//   - parentActive: the parent's global active state (true for roots)
//
// Returns:
//   - bool: true if the global transform changed
func (n *Node) UpdateGlobalState(parentTransform []float32, parentOpacity float32, parentActive bool) bool {
	changed := n.TransformDirty
	if changed {
		common.BuildModelMatrix(n.LocalTransform[:],
			n.Position[0], n.Position[1], n.Position[2],
			n.Rotation[0], n.Rotation[1], n.Rotation[2],
			n.Scale[0], n.Scale[1], n.Scale[2])
	}
	if parentTransform != nil {
		common.Mul4(n.GlobalTransform[:], parentTransform, n.LocalTransform[:])
	} else {
		copy(n.GlobalTransform[:], n.LocalTransform[:])
	}
	n.GlobalOpacity = parentOpacity * n.LocalOpacity
	n.GlobalActive = parentActive && n.Active
	n.TransformDirty = false
	return changed
}

// GlobalPosition returns the world-space position of the node.
//
// Returns:
//   - [3]float32: the translation of the global transform
func (n *Node) GlobalPosition() [3]float32 {
	return common.GetTranslation3(n.GlobalTransform[:])
}

// GlobalDirection returns the world-space forward vector (-Z axis) of the
// node, normalized.
//
// Returns:
//   - [3]float32: the forward direction
func (n *Node) GlobalDirection() [3]float32 {
	m := n.GlobalTransform[:]
	return common.Normalize3([3]float32{-m[8], -m[9], -m[10]})
}

// AsModel returns the model wrapper, or nil if the node is not a model.
func (n *Node) AsModel() *Model {
	if n.Type == NodeTypeModel {
		return n.variant.(*Model)
	}
	return nil
}

// AsLight returns the light wrapper, or nil if the node is not a light.
func (n *Node) AsLight() *Light {
	if n.Type == NodeTypeLight {
		return n.variant.(*Light)
	}
	return nil
}

// AsCamera returns the camera wrapper, or nil if the node is not a camera.
func (n *Node) AsCamera() *Camera {
	if n.Type == NodeTypeCamera {
		return n.variant.(*Camera)
	}
	return nil
}

// AsParticleSystem returns the particle system wrapper, or nil otherwise.
func (n *Node) AsParticleSystem() *ParticleSystem {
	if n.Type == NodeTypeParticleSystem {
		return n.variant.(*ParticleSystem)
	}
	return nil
}

// AsItem2D returns the 2D item wrapper, or nil otherwise.
func (n *Node) AsItem2D() *Item2D {
	if n.Type == NodeTypeItem2D {
		return n.variant.(*Item2D)
	}
	return nil
}

// AsReflectionProbe returns the probe wrapper, or nil otherwise.
func (n *Node) AsReflectionProbe() *ReflectionProbe {
	if n.Type == NodeTypeReflectionProbe {
		return n.variant.(*ReflectionProbe)
	}
	return nil
}

// IsDescendantOf reports whether the node sits in the subtree rooted at
// ancestor. A node counts as a descendant of itself.
//
// Parameters:
//   - ancestor: the candidate subtree root
//
// Returns:
//   - bool: true if ancestor is on the parent chain (or is the node itself)
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}
