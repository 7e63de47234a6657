package mesh

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/chewxy/math32"
)

// maxBVHLeafTriangles bounds how many triangles one leaf holds before the
// builder splits it.
const maxBVHLeafTriangles = 4

// BVHNode is one node of a mesh's triangle hierarchy. Leaves reference a
// contiguous run of the BVH's reordered triangle list; interior nodes
// reference their children by index.
type BVHNode struct {
	// Bounds encloses every triangle under the node.
	Bounds common.Bounds3
	// Left and Right are child node indices, -1 on a leaf.
	Left, Right int32
	// FirstTriangle and TriangleCount address the leaf's run in Triangles.
	// Zero count on interior nodes.
	FirstTriangle, TriangleCount int32
}

// IsLeaf reports whether the node holds triangles instead of children.
//
// Returns:
//   - bool: true for a leaf node
func (n *BVHNode) IsLeaf() bool {
	return n.Left < 0
}

// BVH is a spatial index over a mesh's triangles, built once per mesh and
// used to accelerate picking queries. It references the mesh's geometry by
// triangle index only and holds no GPU state.
type BVH struct {
	// Nodes is the hierarchy in build order; index 0 is the root.
	Nodes []BVHNode
	// Triangles maps leaf runs to triangle indices into the mesh index data
	// (triangle i covers indices [3i, 3i+3)).
	Triangles []uint32
}

// bvhTriangle is the builder's working record for one triangle.
type bvhTriangle struct {
	index  uint32
	bounds common.Bounds3
	center [3]float32
}

// BuildBVH constructs the triangle hierarchy for a mesh. Positions are read
// from the head of each interleaved vertex. Meshes without position data,
// index data or complete triangles yield nil; that is a soft skip, not an
// error, matching the lazy build-on-demand contract.
//
// Parameters:
//   - m: the mesh to index
//
// Returns:
//   - *BVH: the hierarchy, nil when the mesh has no indexable geometry
func BuildBVH(m *Mesh) *BVH {
	if m == nil || !m.Attributes.Has(AttrPosition) || m.VertexStride < 12 {
		return nil
	}
	triangleCount := len(m.IndexData) / 4 / 3
	if triangleCount == 0 {
		return nil
	}

	tris := make([]bvhTriangle, 0, triangleCount)
	for t := 0; t < triangleCount; t++ {
		bounds := common.EmptyBounds3()
		ok := true
		for v := 0; v < 3; v++ {
			idx := binary.LittleEndian.Uint32(m.IndexData[(t*3+v)*4:])
			p, inRange := vertexPosition(m, idx)
			if !inRange {
				ok = false
				break
			}
			bounds.IncludePoint(p)
		}
		if !ok {
			continue
		}
		tris = append(tris, bvhTriangle{
			index:  uint32(t),
			bounds: bounds,
			center: bounds.Center(),
		})
	}
	if len(tris) == 0 {
		return nil
	}

	b := &BVH{
		Nodes:     make([]BVHNode, 0, 2*len(tris)),
		Triangles: make([]uint32, len(tris)),
	}
	b.buildNode(tris, 0)
	for i, tri := range tris {
		b.Triangles[i] = tri.index
	}
	return b
}

// buildNode appends the node covering tris and recurses by median split on
// the widest centroid axis. first is the run offset of tris in the final
// triangle order.
func (b *BVH) buildNode(tris []bvhTriangle, first int32) int32 {
	bounds := common.EmptyBounds3()
	centroids := common.EmptyBounds3()
	for i := range tris {
		bounds.IncludeBounds(tris[i].bounds)
		centroids.IncludePoint(tris[i].center)
	}

	self := int32(len(b.Nodes))
	b.Nodes = append(b.Nodes, BVHNode{Bounds: bounds, Left: -1, Right: -1})

	extents := centroids.Extents()
	axis := 0
	if extents[1] > extents[axis] {
		axis = 1
	}
	if extents[2] > extents[axis] {
		axis = 2
	}

	// Degenerate centroid spread cannot split; keep the run as one leaf.
	if len(tris) <= maxBVHLeafTriangles || extents[axis] <= 0 {
		b.Nodes[self].FirstTriangle = first
		b.Nodes[self].TriangleCount = int32(len(tris))
		return self
	}

	sort.Slice(tris, func(i, j int) bool {
		return tris[i].center[axis] < tris[j].center[axis]
	})
	mid := len(tris) / 2

	left := b.buildNode(tris[:mid], first)
	right := b.buildNode(tris[mid:], first+int32(mid))
	b.Nodes[self].Left = left
	b.Nodes[self].Right = right
	return self
}

// Bounds returns the box enclosing the whole mesh, empty for a nil hierarchy.
//
// Returns:
//   - common.Bounds3: the root bounds
func (b *BVH) Bounds() common.Bounds3 {
	if b == nil || len(b.Nodes) == 0 {
		return common.EmptyBounds3()
	}
	return b.Nodes[0].Bounds
}

// TrianglesAlongRay walks the hierarchy and collects the triangle indices of
// every leaf whose bounds the ray passes through. The caller narrows the
// candidates with exact triangle intersection; the hierarchy only prunes.
//
// Parameters:
//   - origin: the ray origin in mesh local space
//   - direction: the ray direction, need not be normalized
//
// Returns:
//   - []uint32: candidate triangle indices into the mesh index data
func (b *BVH) TrianglesAlongRay(origin, direction [3]float32) []uint32 {
	if b == nil || len(b.Nodes) == 0 {
		return nil
	}

	var invDir [3]float32
	for i := 0; i < 3; i++ {
		invDir[i] = 1 / direction[i]
	}

	var out []uint32
	stack := []int32{0}
	for len(stack) > 0 {
		node := &b.Nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if !rayIntersectsBounds(origin, invDir, node.Bounds) {
			continue
		}
		if node.IsLeaf() {
			out = append(out, b.Triangles[node.FirstTriangle:node.FirstTriangle+node.TriangleCount]...)
			continue
		}
		stack = append(stack, node.Left, node.Right)
	}
	return out
}

// rayIntersectsBounds is the slab test against an axis-aligned box. Zero
// direction components divide to infinities, which the min/max comparisons
// handle.
func rayIntersectsBounds(origin, invDir [3]float32, b common.Bounds3) bool {
	tMin := float32(math.Inf(-1))
	tMax := float32(math.Inf(1))
	for i := 0; i < 3; i++ {
		t0 := (b.Min[i] - origin[i]) * invDir[i]
		t1 := (b.Max[i] - origin[i]) * invDir[i]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math32.Max(tMin, t0)
		tMax = math32.Min(tMax, t1)
		if tMin > tMax {
			return false
		}
	}
	return tMax >= 0
}

// vertexPosition reads the position of one vertex from the interleaved data.
func vertexPosition(m *Mesh, index uint32) ([3]float32, bool) {
	offset := int(index) * int(m.VertexStride)
	if offset+12 > len(m.VertexData) {
		return [3]float32{}, false
	}
	var p [3]float32
	for i := 0; i < 3; i++ {
		p[i] = math.Float32frombits(binary.LittleEndian.Uint32(m.VertexData[offset+i*4:]))
	}
	return p, true
}
