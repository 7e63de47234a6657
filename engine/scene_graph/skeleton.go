package scene_graph

import "github.com/chewxy/math32"

// Skeleton is a container node for a joint hierarchy. Models reference it and
// the preparation pass resolves it into a Skin holding per-joint matrices.
type Skeleton struct {
	Node

	// Joints are the joints of the hierarchy in bind order.
	Joints []*Joint
}

// NewSkeleton creates an empty skeleton node.
//
// Parameters:
//   - name: diagnostic identifier
//
// Returns:
//   - *Skeleton: the new skeleton node
func NewSkeleton(name string) *Skeleton {
	s := &Skeleton{}
	s.initNode(name, NodeTypeSkeleton, s)
	return s
}

// AddJoint appends a joint to the skeleton's bind order and attaches its node
// under the given parent (the skeleton itself when parent is nil).
//
// Parameters:
//   - j: the joint to add
//   - parent: the node to attach under, nil for the skeleton root
func (s *Skeleton) AddJoint(j *Joint, parent *Node) {
	j.Index = len(s.Joints)
	s.Joints = append(s.Joints, j)
	if parent == nil {
		s.AddChild(&j.Node)
	} else {
		parent.AddChild(&j.Node)
	}
}

// Joint is one bone of a skeleton.
type Joint struct {
	Node

	// Index is the joint's position in the skeleton's bind order.
	Index int
	// InverseBindPose transforms mesh space into the joint's bind space.
	InverseBindPose [16]float32
}

// NewJoint creates a joint with an identity inverse bind pose.
//
// Parameters:
//   - name: diagnostic identifier
//
// Returns:
//   - *Joint: the new joint node
func NewJoint(name string) *Joint {
	j := &Joint{}
	j.initNode(name, NodeTypeJoint, j)
	j.InverseBindPose = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	return j
}

// Skin is the resolved skinning data of one model: the per-joint matrices
// packed for the bone texture upload. Refreshed every prepared frame.
type Skin struct {
	// BoneCount is the number of joints.
	BoneCount int
	// TextureWidth is the current bone texture side length in texels.
	TextureWidth int
	// BoneData is the packed matrix data (joint matrix plus normal matrix
	// per bone, 8 RGBA32F texels each).
	BoneData []float32
}

// BoneTextureWidth returns the side length of the square RGBA32F texture
// needed to hold boneCount bone entries of 8 texels each.
//
// Parameters:
//   - boneCount: the number of bones
//
// Returns:
//   - int: the texture side length in texels
func BoneTextureWidth(boneCount int) int {
	if boneCount <= 0 {
		return 0
	}
	return int(math32.Ceil(math32.Sqrt(float32(boneCount * 4 * 2))))
}

// Resize reallocates the packed data for a bone count, returning whether the
// texture dimensions changed (the GPU texture only needs recreating then).
//
// Parameters:
//   - boneCount: the number of bones
//
// Returns:
//   - bool: true if TextureWidth changed
func (s *Skin) Resize(boneCount int) bool {
	width := BoneTextureWidth(boneCount)
	changed := width != s.TextureWidth
	s.BoneCount = boneCount
	if changed {
		s.TextureWidth = width
		s.BoneData = make([]float32, width*width*4)
	}
	return changed
}
