package scene_graph

import (
	"testing"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalTransformComposition(t *testing.T) {
	root := NewNode("root")
	root.SetPosition(10, 0, 0)
	child := NewNode("child")
	child.SetPosition(0, 5, 0)
	root.AddChild(child)

	root.UpdateGlobalState(nil, 1, true)
	child.UpdateGlobalState(root.GlobalTransform[:], root.GlobalOpacity, root.GlobalActive)

	assert.Equal(t, [3]float32{10, 0, 0}, root.GlobalPosition())
	assert.Equal(t, [3]float32{10, 5, 0}, child.GlobalPosition())
}

func TestGlobalOpacityAndActivePropagate(t *testing.T) {
	root := NewNode("root")
	root.LocalOpacity = 0.5
	child := NewNode("child")
	child.LocalOpacity = 0.5
	child.Active = false
	root.AddChild(child)

	root.UpdateGlobalState(nil, 1, true)
	child.UpdateGlobalState(root.GlobalTransform[:], root.GlobalOpacity, root.GlobalActive)

	assert.InDelta(t, 0.25, child.GlobalOpacity, 1e-6)
	assert.False(t, child.GlobalActive)
	assert.True(t, root.GlobalActive)
}

func TestUpdateGlobalStateReportsChange(t *testing.T) {
	n := NewNode("n")
	assert.True(t, n.UpdateGlobalState(nil, 1, true))
	assert.False(t, n.UpdateGlobalState(nil, 1, true))
	n.SetPosition(1, 2, 3)
	assert.True(t, n.UpdateGlobalState(nil, 1, true))
}

func TestTaggedVariantAccessors(t *testing.T) {
	model := NewModel("m", nil)
	light := NewLight("l", LightPoint)
	cam := NewCamera("c")

	var nodes []*Node
	nodes = append(nodes, &model.Node, &light.Node, &cam.Node, NewNode("plain"))

	require.Same(t, model, nodes[0].AsModel())
	assert.Nil(t, nodes[0].AsLight())
	require.Same(t, light, nodes[1].AsLight())
	require.Same(t, cam, nodes[2].AsCamera())
	assert.Nil(t, nodes[3].AsModel())
	assert.Nil(t, nodes[3].AsCamera())
}

func TestReparentingDetaches(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	a.AddChild(c)
	b.AddChild(c)

	assert.Empty(t, a.Children)
	require.Len(t, b.Children, 1)
	assert.Same(t, b, c.Parent)
}

func TestIsDescendantOf(t *testing.T) {
	root := NewNode("root")
	mid := NewNode("mid")
	leaf := NewNode("leaf")
	root.AddChild(mid)
	mid.AddChild(leaf)

	assert.True(t, leaf.IsDescendantOf(root))
	assert.True(t, leaf.IsDescendantOf(leaf))
	assert.False(t, root.IsDescendantOf(leaf))
	assert.False(t, leaf.IsDescendantOf(NewNode("other")))
}

func TestCameraSignedDistanceToBounds(t *testing.T) {
	cam := NewCamera("cam")
	// Looking down -Z from the origin (default orientation).
	cam.UpdateGlobalState(nil, 1, true)

	inFront := common.CenterExtents([3]float32{0, 0, -50}, [3]float32{5, 5, 5})
	behind := common.CenterExtents([3]float32{0, 0, 50}, [3]float32{5, 5, 5})
	straddle := common.CenterExtents([3]float32{0, 0, 0}, [3]float32{5, 5, 5})

	assert.InDelta(t, 45, cam.SignedDistanceToBounds(inFront), 1e-3)
	// Fully behind boxes report the distance to their nearest corner as a
	// positive value, mirroring the in-front case.
	assert.InDelta(t, 45, cam.SignedDistanceToBounds(behind), 1e-3)
	assert.Equal(t, float32(0), cam.SignedDistanceToBounds(straddle))

	cam.Projection = ProjectionOrthographic
	assert.Equal(t, float32(1), cam.SignedDistanceToBounds(inFront))
}

func TestCameraCalculateGlobalVariables(t *testing.T) {
	cam := NewCamera("cam", WithClipPlanes(1, 100))
	cam.SetPosition(0, 0, 10)
	cam.UpdateGlobalState(nil, 1, true)

	require.True(t, cam.CalculateGlobalVariables(800, 600))
	assert.False(t, cam.CalculateGlobalVariables(0, 600))

	// The origin sits in front of the camera and inside the frustum.
	box := common.CenterExtents([3]float32{0, 0, 0}, [3]float32{1, 1, 1})
	assert.True(t, cam.Frustum.Intersects(box))
	far := common.CenterExtents([3]float32{0, 0, -500}, [3]float32{1, 1, 1})
	assert.False(t, cam.Frustum.Intersects(far))
}

func TestBoneTextureWidth(t *testing.T) {
	assert.Equal(t, 0, BoneTextureWidth(0))
	// 1 bone: ceil(sqrt(8)) = 3
	assert.Equal(t, 3, BoneTextureWidth(1))
	// 64 bones: ceil(sqrt(512)) = 23
	assert.Equal(t, 23, BoneTextureWidth(64))
}

func TestSkinResizeOnlyOnWidthChange(t *testing.T) {
	var s Skin
	assert.True(t, s.Resize(16))
	w := s.TextureWidth
	// Same count keeps the texture.
	assert.False(t, s.Resize(16))
	assert.Equal(t, w, s.TextureWidth)
	// Growing the count reallocates.
	assert.True(t, s.Resize(256))
	assert.Len(t, s.BoneData, s.TextureWidth*s.TextureWidth*4)
}

func TestClampedMorphWeights(t *testing.T) {
	m := NewModel("m", nil)
	m.MorphWeights = []float32{-0.5, 0.25, 1.5, 0, 1, 0.5, 0.75, 0.1, 0.9, 0.9}
	w := m.ClampedMorphWeights()
	require.Len(t, w, MaxMorphTargets)
	assert.Equal(t, float32(0), w[0])
	assert.Equal(t, float32(0.25), w[1])
	assert.Equal(t, float32(1), w[2])
}
