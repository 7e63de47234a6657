package mesh

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packVertices interleaves position-only vertices into upload layout.
func packVertices(positions ...[3]float32) []byte {
	out := make([]byte, 0, len(positions)*12)
	for _, p := range positions {
		for i := 0; i < 3; i++ {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(p[i]))
		}
	}
	return out
}

func packIndices(indices ...uint32) []byte {
	out := make([]byte, 0, len(indices)*4)
	for _, idx := range indices {
		out = binary.LittleEndian.AppendUint32(out, idx)
	}
	return out
}

// twoQuadMesh holds two unit quads: one around the origin, one 100 units up
// the X axis. Four triangles total.
func twoQuadMesh() *Mesh {
	return &Mesh{
		Name:         "quads",
		Attributes:   AttrPosition,
		VertexStride: 12,
		VertexData: packVertices(
			[3]float32{-1, -1, 0}, [3]float32{1, -1, 0}, [3]float32{1, 1, 0}, [3]float32{-1, 1, 0},
			[3]float32{99, -1, 0}, [3]float32{101, -1, 0}, [3]float32{101, 1, 0}, [3]float32{99, 1, 0},
		),
		IndexData: packIndices(
			0, 1, 2, 0, 2, 3,
			4, 5, 6, 4, 6, 7,
		),
	}
}

func TestBuildBVHCoversAllTriangles(t *testing.T) {
	bvh := BuildBVH(twoQuadMesh())
	require.NotNil(t, bvh)
	require.NotEmpty(t, bvh.Nodes)

	// Every triangle lands in exactly one leaf run.
	assert.Len(t, bvh.Triangles, 4)
	seen := map[uint32]bool{}
	for _, tri := range bvh.Triangles {
		assert.False(t, seen[tri])
		seen[tri] = true
	}

	root := bvh.Bounds()
	assert.Equal(t, float32(-1), root.Min[0])
	assert.Equal(t, float32(101), root.Max[0])
}

func TestBVHRayQueryPrunesFarGeometry(t *testing.T) {
	bvh := BuildBVH(twoQuadMesh())
	require.NotNil(t, bvh)

	// A ray through the origin quad must return its triangles and skip the
	// far quad entirely.
	hits := bvh.TrianglesAlongRay([3]float32{0, 0, 10}, [3]float32{0, 0, -1})
	require.NotEmpty(t, hits)
	for _, tri := range hits {
		assert.Less(t, tri, uint32(2), "far quad triangles must be pruned")
	}

	// A ray pointing away from everything hits nothing.
	assert.Empty(t, bvh.TrianglesAlongRay([3]float32{0, 0, 10}, [3]float32{0, 0, 1}))
}

func TestBuildBVHSoftSkipsNonIndexableMeshes(t *testing.T) {
	assert.Nil(t, BuildBVH(nil))
	assert.Nil(t, BuildBVH(&Mesh{Attributes: AttrNormal}))
	// Positions but no indices.
	assert.Nil(t, BuildBVH(&Mesh{
		Attributes:   AttrPosition,
		VertexStride: 12,
		VertexData:   packVertices([3]float32{0, 0, 0}),
	}))
}
