// package mesh contains plain structs describing renderable geometry. Meshes
// are produced by asset tooling or built procedurally and consumed by the
// buffer manager and the per-frame preparation pass; nothing here touches the
// GPU directly.
package mesh

import (
	"github.com/Carmen-Shannon/lumen-go/common"
)

// VertexAttribute is a bitmask of the vertex inputs a mesh provides. The
// shader variant key records this mask so that generated shaders only declare
// inputs the geometry can feed.
type VertexAttribute uint16

const (
	// AttrPosition marks the position input.
	AttrPosition VertexAttribute = 1 << iota
	// AttrNormal marks the normal input.
	AttrNormal
	// AttrUV0 marks the first texture coordinate set.
	AttrUV0
	// AttrUV1 marks the second texture coordinate set.
	AttrUV1
	// AttrLightmapUV marks the baked lightmap coordinate set.
	AttrLightmapUV
	// AttrTangent marks the tangent input.
	AttrTangent
	// AttrBinormal marks the binormal input.
	AttrBinormal
	// AttrColor marks the per-vertex color input.
	AttrColor
	// AttrJoint marks the skinning joint index input.
	AttrJoint
	// AttrWeight marks the skinning joint weight input.
	AttrWeight
)

// Has reports whether the mask includes all bits of attr.
//
// Parameters:
//   - attr: the attribute bits to test
//
// Returns:
//   - bool: true if every bit of attr is set
func (v VertexAttribute) Has(attr VertexAttribute) bool {
	return v&attr == attr
}

// Lod is one level-of-detail range of a subset. Levels are stored nearest
// first; Distance is the world-space threshold at which the next coarser
// level takes over.
type Lod struct {
	// Count is the number of indices in this level.
	Count uint32
	// Offset is the first index of this level in the mesh index data.
	Offset uint32
	// Distance is the threshold distance for switching past this level.
	Distance float32
}

// Subset is a contiguous index range of a mesh drawn with a single material.
type Subset struct {
	// Name identifies the subset for diagnostics.
	Name string
	// Bounds is the local-space bounding box of the subset's geometry.
	Bounds common.Bounds3
	// Count is the number of indices in the subset at full detail.
	Count uint32
	// Offset is the first index of the subset in the mesh index data.
	Offset uint32
	// Lods holds optional coarser levels, nearest first.
	Lods []Lod
}

// LodCount returns the number of selectable detail levels including the full
// detail level 0.
//
// Returns:
//   - int: the level count
func (s *Subset) LodCount() int {
	return len(s.Lods) + 1
}

// RangeForLod returns the index count and offset for a detail level.
// Level 0 is full detail; levels beyond the available coarser levels clamp to
// the coarsest.
//
// Parameters:
//   - lod: the detail level to resolve
//
// Returns:
//   - uint32: the index count
//   - uint32: the index offset
func (s *Subset) RangeForLod(lod int) (uint32, uint32) {
	if lod <= 0 || len(s.Lods) == 0 {
		return s.Count, s.Offset
	}
	if lod > len(s.Lods) {
		lod = len(s.Lods)
	}
	l := s.Lods[lod-1]
	return l.Count, l.Offset
}

// Mesh is geometry shared by any number of models. Vertex and index data are
// kept in their interleaved upload layout so the buffer manager can hand them
// to the GPU without repacking.
type Mesh struct {
	// Name identifies the mesh for diagnostics and cache keys.
	Name string
	// Attributes is the set of vertex inputs present in VertexData.
	Attributes VertexAttribute
	// VertexStride is the byte stride of one interleaved vertex.
	VertexStride uint32
	// VertexData is the interleaved vertex buffer contents.
	VertexData []byte
	// IndexData is the index buffer contents (uint32 indices).
	IndexData []byte
	// Subsets are the material-draw ranges of the mesh.
	Subsets []Subset
}

// Bounds returns the union of all subset bounds in mesh local space.
//
// Returns:
//   - common.Bounds3: the enclosing box, empty if the mesh has no subsets
func (m *Mesh) Bounds() common.Bounds3 {
	out := common.EmptyBounds3()
	for i := range m.Subsets {
		out.IncludeBounds(m.Subsets[i].Bounds)
	}
	return out
}
