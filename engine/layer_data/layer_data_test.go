package layer_data

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/material"
	"github.com/Carmen-Shannon/lumen-go/engine/mesh"
	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testViewportWidth  = 800
	testViewportHeight = 600
)

func unitCubeMesh(name string) *mesh.Mesh {
	return &mesh.Mesh{
		Name:       name,
		Attributes: mesh.AttrPosition | mesh.AttrNormal | mesh.AttrUV0,
		Subsets: []mesh.Subset{
			{
				Name:   "subset0",
				Bounds: common.CenterExtents([3]float32{}, [3]float32{1, 1, 1}),
				Count:  36,
			},
		},
	}
}

// triangleMesh carries real vertex and index data for one unit triangle, for
// tests that exercise the picking index.
func triangleMesh(name string) *mesh.Mesh {
	positions := [][3]float32{{-1, -1, 0}, {1, -1, 0}, {0, 1, 0}}
	verts := make([]byte, 0, len(positions)*12)
	for _, p := range positions {
		for i := 0; i < 3; i++ {
			verts = binary.LittleEndian.AppendUint32(verts, math.Float32bits(p[i]))
		}
	}
	indices := make([]byte, 0, 12)
	for _, idx := range []uint32{0, 1, 2} {
		indices = binary.LittleEndian.AppendUint32(indices, idx)
	}
	return &mesh.Mesh{
		Name:         name,
		Attributes:   mesh.AttrPosition,
		VertexStride: 12,
		VertexData:   verts,
		IndexData:    indices,
		Subsets: []mesh.Subset{
			{
				Name:   "subset0",
				Bounds: common.CenterExtents([3]float32{0, 0, 0}, [3]float32{1, 1, 1}),
				Count:  3,
			},
		},
	}
}

func newTestModel(name string, z float32) *scene_graph.Model {
	m := scene_graph.NewModel(name, unitCubeMesh(name+" mesh"))
	m.Materials = []*material.DefaultMaterial{material.NewDefaultMaterial(name + " material")}
	m.SetPosition(0, 0, z)
	return m
}

// newTestScene builds a layer with a camera at the origin looking down -Z and
// a single cube model 100 units in front of it.
func newTestScene() (*scene_graph.Layer, *scene_graph.Camera, *scene_graph.Model) {
	layer := scene_graph.NewLayer("layer")
	cam := scene_graph.NewCamera("camera")
	layer.AddChild(&cam.Node)
	model := newTestModel("cube", -100)
	layer.AddChild(&model.Node)
	return layer, cam, model
}

func prepare(t *testing.T, ld LayerData) PreparationResult {
	t.Helper()
	ld.ResetForFrame()
	return ld.PrepareForRender(testViewportWidth, testViewportHeight)
}

func TestPrepareIdempotentUntilReset(t *testing.T) {
	layer, _, _ := newTestScene()
	ld := NewLayerData(layer)

	res := prepare(t, ld)
	assert.False(t, res.NothingToRender)
	require.Len(t, ld.OpaqueRenderables(), 1)

	// A second prepare without a reset must not re-run preparation, even when
	// the scene changed underneath it.
	second := newTestModel("cube2", -50)
	layer.AddChild(&second.Node)
	again := ld.PrepareForRender(testViewportWidth, testViewportHeight)
	assert.Equal(t, res, again)
	assert.Len(t, ld.OpaqueRenderables(), 1)

	res = prepare(t, ld)
	assert.False(t, res.NothingToRender)
	assert.Len(t, ld.OpaqueRenderables(), 2)
}

func TestDegenerateViewport(t *testing.T) {
	layer, _, _ := newTestScene()
	ld := NewLayerData(layer)

	ld.ResetForFrame()
	res := ld.PrepareForRender(1, testViewportHeight)
	assert.True(t, res.NothingToRender)
	assert.Empty(t, ld.OpaqueRenderables())
}

func TestNoActiveCamera(t *testing.T) {
	layer := scene_graph.NewLayer("layer")
	layer.AddChild(&newTestModel("cube", -100).Node)
	ld := NewLayerData(layer)

	res := prepare(t, ld)
	assert.True(t, res.NothingToRender)
	assert.Nil(t, ld.Camera())
}

func TestCameraSelection(t *testing.T) {
	layer, first, _ := newTestScene()
	second := scene_graph.NewCamera("second")
	layer.AddChild(&second.Node)

	ld := NewLayerData(layer)
	prepare(t, ld)
	assert.Same(t, first, ld.Camera(), "first active camera in traversal order wins")

	layer.ExplicitCamera = second
	prepare(t, ld)
	assert.Same(t, second, ld.Camera(), "active explicit camera overrides traversal order")

	// An inactive explicit camera falls back to traversal order.
	second.Active = false
	prepare(t, ld)
	assert.Same(t, first, ld.Camera())
}

func TestSupersampledTextureSize(t *testing.T) {
	layer, _, _ := newTestScene()
	layer.SSAAEnabled = true
	layer.SSAAMultiplier = 1.5
	ld := NewLayerData(layer)

	res := prepare(t, ld)
	assert.Equal(t, uint32(1200), res.TextureWidth)
	assert.Equal(t, uint32(900), res.TextureHeight)
}

func TestOpacityClassification(t *testing.T) {
	layer, _, model := newTestScene()
	ld := NewLayerData(layer)
	mat := model.Materials[0]

	// Nearly invisible renderables are dropped entirely.
	mat.Opacity = 0.005
	prepare(t, ld)
	assert.Empty(t, ld.OpaqueRenderables())
	assert.Empty(t, ld.TransparentRenderables())

	// Nearly opaque snaps to fully opaque.
	mat.Opacity = 0.995
	prepare(t, ld)
	opaque := ld.OpaqueRenderables()
	require.Len(t, opaque, 1)
	assert.Equal(t, float32(1), opaque[0].Obj.Opacity)
	assert.False(t, opaque[0].Obj.Flags.Has(FlagHasTransparency))

	// Anything in between blends.
	mat.Opacity = 0.5
	prepare(t, ld)
	assert.Empty(t, ld.OpaqueRenderables())
	transparent := ld.TransparentRenderables()
	require.Len(t, transparent, 1)
	assert.Equal(t, float32(0.5), transparent[0].Obj.Opacity)
	assert.True(t, transparent[0].Obj.Flags.Has(FlagHasTransparency))
}

func TestAlphaBlendMaterialIsTransparent(t *testing.T) {
	layer, _, model := newTestScene()
	model.Materials[0].AlphaMode = material.AlphaBlend
	ld := NewLayerData(layer)

	prepare(t, ld)
	assert.Empty(t, ld.OpaqueRenderables())
	assert.Len(t, ld.TransparentRenderables(), 1)
}

func TestScreenTextureBucket(t *testing.T) {
	layer, _, model := newTestScene()
	model.Materials[0].BlendMode = material.BlendScreen
	ld := NewLayerData(layer)

	prepare(t, ld)
	assert.Empty(t, ld.OpaqueRenderables())
	assert.Empty(t, ld.TransparentRenderables())
	screen := ld.ScreenTextureRenderables()
	require.Len(t, screen, 1)
	assert.True(t, screen[0].Obj.Flags.Has(FlagRequiresScreenTexture))
}

func TestLightCapReverseOrder(t *testing.T) {
	layer, _, _ := newTestScene()
	lights := make([]*scene_graph.Light, 17)
	for i := range lights {
		lights[i] = scene_graph.NewLight(fmt.Sprintf("light%d", i), scene_graph.LightDirectional)
		layer.AddChild(&lights[i].Node)
	}
	ld := NewLayerData(layer)

	prepare(t, ld)
	global := ld.GlobalLights()
	require.Len(t, global, MaxLightCount)
	// Reverse declaration order: the most recently declared lights win.
	assert.Same(t, lights[16], global[0].Light)
	assert.Same(t, lights[2], global[MaxLightCount-1].Light)
}

func TestReducedLightCapOnSmallUniformRange(t *testing.T) {
	layer, _, _ := newTestScene()
	for i := 0; i < 10; i++ {
		l := scene_graph.NewLight(fmt.Sprintf("light%d", i), scene_graph.LightPoint)
		layer.AddChild(&l.Node)
	}
	ld := NewLayerData(layer, WithMaxUniformBufferRange(2048))

	prepare(t, ld)
	assert.Len(t, ld.GlobalLights(), ReducedMaxLightCount)
}

func TestInactiveLightsSkipped(t *testing.T) {
	layer, _, _ := newTestScene()
	on := scene_graph.NewLight("on", scene_graph.LightDirectional)
	off := scene_graph.NewLight("off", scene_graph.LightDirectional)
	off.Active = false
	layer.AddChild(&on.Node)
	layer.AddChild(&off.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	global := ld.GlobalLights()
	require.Len(t, global, 1)
	assert.Same(t, on, global[0].Light)
}

func TestShadowMapCap(t *testing.T) {
	layer, _, _ := newTestScene()
	for i := 0; i < 10; i++ {
		l := scene_graph.NewLight(fmt.Sprintf("caster%d", i), scene_graph.LightDirectional, scene_graph.WithShadows(10))
		layer.AddChild(&l.Node)
	}
	ld := NewLayerData(layer)

	prepare(t, ld)
	assert.Len(t, ld.ShadowMapManager().Entries(), MaxShadowMapCount)

	shadowed := 0
	for _, sl := range ld.GlobalLights() {
		if sl.Shadows {
			shadowed++
		}
	}
	assert.Equal(t, MaxShadowMapCount, shadowed)
}

func TestLightScoping(t *testing.T) {
	layer, _, _ := newTestScene()

	group := scene_graph.NewNode("group")
	layer.AddChild(group)
	inside := newTestModel("inside", -100)
	group.AddChild(&inside.Node)
	outside := newTestModel("outside", -100)
	layer.AddChild(&outside.Node)

	global := scene_graph.NewLight("global", scene_graph.LightDirectional)
	scoped := scene_graph.NewLight("scoped", scene_graph.LightPoint, scene_graph.WithScope(group))
	layer.AddChild(&global.Node)
	layer.AddChild(&scoped.Node)

	ld := NewLayerData(layer)
	prepare(t, ld)

	byName := map[string]*RenderableObject{}
	for _, h := range ld.OpaqueRenderables() {
		byName[h.Obj.ModelContext.Model.Name] = h.Obj
	}
	require.Contains(t, byName, "inside")
	require.Contains(t, byName, "outside")

	assert.Len(t, byName["inside"].Lights, 2, "scoped light applies inside its subtree")
	assert.Len(t, byName["outside"].Lights, 1, "scoped light filtered out elsewhere")
	// The original cube from newTestScene sits outside the scope too.
	assert.Len(t, byName["cube"].Lights, 1)

	// The global table itself excludes the scoped light, and nodes outside
	// the scope alias it instead of copying.
	globalList := ld.GlobalLights()
	require.Len(t, globalList, 1)
	assert.Same(t, global, globalList[0].Light)
	assert.Same(t, &globalList[0], &byName["outside"].Lights[0])
}

func TestUnscopedLightListAliasesGlobal(t *testing.T) {
	layer, _, _ := newTestScene()
	l := scene_graph.NewLight("sun", scene_graph.LightDirectional)
	layer.AddChild(&l.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	opaque := ld.OpaqueRenderables()
	require.Len(t, opaque, 1)
	global := ld.GlobalLights()
	require.NotEmpty(t, global)
	assert.Same(t, &global[0], &opaque[0].Obj.Lights[0], "no scoped lights means the global table is shared, not copied")
}

func TestLevelOfDetailSelection(t *testing.T) {
	layer, cam, model := newTestScene()
	model.Mesh.Subsets[0].Lods = []mesh.Lod{
		{Distance: 0.05},
		{Distance: 0.1},
		{Distance: 10},
	}
	ld := NewLayerData(layer)

	// Camera plane distance ~99, multiplier 2*tan(30deg)/600: the first two
	// levels pass the coverage test, the third does not.
	prepare(t, ld)
	opaque := ld.OpaqueRenderables()
	require.Len(t, opaque, 1)
	assert.Equal(t, 2, opaque[0].Obj.LevelOfDetail)

	// A large bias shrinks every detail distance, selecting the coarsest
	// level.
	model.LodBias = 1000
	prepare(t, ld)
	assert.Equal(t, 3, ld.OpaqueRenderables()[0].Obj.LevelOfDetail)

	// A camera inside the bounds always renders full detail. Culling is off
	// because the box straddles the near plane.
	model.LodBias = 1
	cam.SetPosition(0, 0, -100)
	cam.FrustumCulling = false
	prepare(t, ld)
	assert.Equal(t, 0, ld.OpaqueRenderables()[0].Obj.LevelOfDetail)
}

func TestBucketSortOrders(t *testing.T) {
	layer, _, model := newTestScene()
	near := newTestModel("near", -50)
	far := newTestModel("far", -200)
	layer.AddChild(&near.Node)
	layer.AddChild(&far.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	opaque := ld.OpaqueRenderables()
	require.Len(t, opaque, 3)
	assert.Equal(t, "near", opaque[0].Obj.ModelContext.Model.Name)
	assert.Equal(t, "far", opaque[2].Obj.ModelContext.Model.Name)

	// The same scene with blending materials sorts the other way.
	for _, m := range []*scene_graph.Model{model, near, far} {
		m.Materials[0].Opacity = 0.5
	}
	prepare(t, ld)
	transparent := ld.TransparentRenderables()
	require.Len(t, transparent, 3)
	assert.Equal(t, "far", transparent[0].Obj.ModelContext.Model.Name)
	assert.Equal(t, "near", transparent[2].Obj.ModelContext.Model.Name)
}

func TestFrustumCullingDropsOffscreen(t *testing.T) {
	layer, cam, _ := newTestScene()
	behind := newTestModel("behind", 100)
	layer.AddChild(&behind.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	opaque := ld.OpaqueRenderables()
	require.Len(t, opaque, 1)
	assert.Equal(t, "cube", opaque[0].Obj.ModelContext.Model.Name)

	// Disabling culling keeps everything.
	cam.FrustumCulling = false
	prepare(t, ld)
	assert.Len(t, ld.OpaqueRenderables(), 2)
}

func TestDepthWritePartition(t *testing.T) {
	layer, _, model := newTestScene()
	prePassModel := newTestModel("prepass", -80)
	prePassModel.Materials[0].DepthDrawMode = material.DepthDrawOpaquePrePass
	layer.AddChild(&prePassModel.Node)
	neverModel := newTestModel("never", -60)
	neverModel.Materials[0].DepthDrawMode = material.DepthDrawNever
	layer.AddChild(&neverModel.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	require.Len(t, ld.DepthWriteRenderables(), 1)
	assert.Same(t, model.Materials[0], ld.DepthWriteRenderables()[0].Obj.Material)
	require.Len(t, ld.PrePassRenderables(), 1)
	assert.Same(t, prePassModel.Materials[0], ld.PrePassRenderables()[0].Obj.Material)

	// Disabling the prepass empties only the prepass list.
	layer.DepthPrePassDisabled = true
	prepare(t, ld)
	assert.Len(t, ld.DepthWriteRenderables(), 1)
	assert.Empty(t, ld.PrePassRenderables())

	// Disabling depth testing empties both.
	layer.DepthTestDisabled = true
	prepare(t, ld)
	assert.Empty(t, ld.DepthWriteRenderables())
	assert.Empty(t, ld.PrePassRenderables())
}

func TestPassAssemblyOrder(t *testing.T) {
	layer, _, _ := newTestScene()
	layer.AOStrength = 1

	caster := scene_graph.NewLight("caster", scene_graph.LightDirectional, scene_graph.WithShadows(10))
	layer.AddChild(&caster.Node)

	prePassModel := newTestModel("prepass", -80)
	prePassModel.Materials[0].DepthDrawMode = material.DepthDrawOpaquePrePass
	layer.AddChild(&prePassModel.Node)

	screenModel := newTestModel("screen", -60)
	screenModel.Materials[0].BlendMode = material.BlendMultiply
	layer.AddChild(&screenModel.Node)

	ld := NewLayerData(layer)
	prepare(t, ld)

	var types []PassType
	for _, p := range ld.Passes() {
		types = append(types, p.Type)
	}
	assert.Equal(t, []PassType{PassDepth, PassSSAO, PassShadow, PassReflection, PassZPrePass, PassScreenTexture, PassMain}, types)
}

func TestMinimalPassList(t *testing.T) {
	layer, _, _ := newTestScene()
	ld := NewLayerData(layer)

	prepare(t, ld)
	passes := ld.Passes()
	require.Len(t, passes, 3)
	// Reflection and z-prepass run every frame, even with nothing to feed
	// them.
	assert.Equal(t, PassReflection, passes[0].Type)
	assert.Empty(t, passes[0].ReflectionEntries)
	assert.Equal(t, PassZPrePass, passes[1].Type)
	assert.Equal(t, PassMain, passes[2].Type)
}

func TestReflectionProbeNearestWins(t *testing.T) {
	layer, _, _ := newTestScene()

	nearProbe := scene_graph.NewReflectionProbe("near")
	nearProbe.SetPosition(0, 0, -100)
	layer.AddChild(&nearProbe.Node)

	farProbe := scene_graph.NewReflectionProbe("far")
	farProbe.SetPosition(0, 0, -130)
	layer.AddChild(&farProbe.Node)

	ld := NewLayerData(layer)
	prepare(t, ld)

	opaque := ld.OpaqueRenderables()
	require.Len(t, opaque, 1)
	// Both default 100 unit boxes contain the cube's center; the probe whose
	// box center is closer wins.
	assert.Same(t, nearProbe, opaque[0].Obj.ReflectionProbe)

	assert.NotNil(t, ld.ReflectionMapManager().EntryForProbe(nearProbe))
	assert.Nil(t, ld.ReflectionMapManager().EntryForProbe(farProbe), "unreferenced probes get no entry")
}

func TestProbeIgnoredWhenNotContaining(t *testing.T) {
	layer, _, _ := newTestScene()
	probe := scene_graph.NewReflectionProbe("elsewhere")
	probe.SetPosition(500, 0, 0)
	layer.AddChild(&probe.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	opaque := ld.OpaqueRenderables()
	require.Len(t, opaque, 1)
	assert.Nil(t, opaque[0].Obj.ReflectionProbe)
	assert.Empty(t, ld.ReflectionMapManager().Entries())
}

func TestProgressiveAAJittersProjection(t *testing.T) {
	plainLayer, _, _ := newTestScene()
	plain := NewLayerData(plainLayer)
	prepare(t, plain)
	plainMVP := plain.OpaqueRenderables()[0].Obj.ModelContext.MVP

	jitteredLayer, _, _ := newTestScene()
	jitteredLayer.AAMode = scene_graph.AAProgressive
	jittered := NewLayerData(jitteredLayer)
	prepare(t, jittered)
	jitteredMVP := jittered.OpaqueRenderables()[0].Obj.ModelContext.MVP

	assert.NotEqual(t, plainMVP, jitteredMVP)

	// The jitter is a clip-space translation: only the x and y rows move.
	assert.Equal(t, plainMVP[2], jitteredMVP[2])
	assert.Equal(t, plainMVP[3], jitteredMVP[3])
	assert.Equal(t, plainMVP[14], jitteredMVP[14])
	assert.Equal(t, plainMVP[15], jitteredMVP[15])
}

func TestTemporalAAStrengthZeroIsNoJitter(t *testing.T) {
	plainLayer, _, _ := newTestScene()
	plain := NewLayerData(plainLayer)
	prepare(t, plain)

	temporalLayer, _, _ := newTestScene()
	temporalLayer.AAMode = scene_graph.AATemporal
	temporalLayer.TemporalAAStrength = 0
	temporal := NewLayerData(temporalLayer)
	prepare(t, temporal)

	assert.Equal(t,
		plain.OpaqueRenderables()[0].Obj.ModelContext.MVP,
		temporal.OpaqueRenderables()[0].Obj.ModelContext.MVP)
}

func TestItem2DsPreparedFrontFirst(t *testing.T) {
	layer, _, _ := newTestScene()
	first := scene_graph.NewItem2D("first")
	second := scene_graph.NewItem2D("second")
	layer.AddChild(&first.Node)
	layer.AddChild(&second.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	items := ld.Item2Ds()
	require.Len(t, items, 2)
	// Later traversal entries are inserted at the front.
	assert.Same(t, second, items[0].Item)
	assert.Same(t, first, items[1].Item)
}

func TestParticleSystemIsTransparent(t *testing.T) {
	layer, _, _ := newTestScene()
	ps := scene_graph.NewParticleSystem("sparks")
	ps.ParticleCount = 128
	ps.SetPosition(0, 0, -100)
	layer.AddChild(&ps.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	transparent := ld.TransparentRenderables()
	require.Len(t, transparent, 1)
	obj := transparent[0].Obj
	assert.Equal(t, RenderableParticles, obj.Type)
	assert.Same(t, ps, obj.ParticleSystem)
	assert.Equal(t, material.DepthDrawNever, obj.DepthWriteMode)
}

func TestInactiveSubtreeProducesNothing(t *testing.T) {
	layer, _, _ := newTestScene()
	group := scene_graph.NewNode("group")
	group.Active = false
	layer.AddChild(group)
	hidden := newTestModel("hidden", -100)
	group.AddChild(&hidden.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	opaque := ld.OpaqueRenderables()
	require.Len(t, opaque, 1)
	assert.Equal(t, "cube", opaque[0].Obj.ModelContext.Model.Name)
}

func TestBakedLightingModelsCollected(t *testing.T) {
	layer, _, model := newTestScene()
	model.UsedInBakedLighting = true
	ld := NewLayerData(layer)

	prepare(t, ld)
	baked := ld.BakedLightingModels()
	require.Len(t, baked, 1)
	assert.Same(t, model, baked[0])
}

func TestDirtyNodeCounting(t *testing.T) {
	layer, _, model := newTestScene()
	ld := NewLayerData(layer)

	res := prepare(t, ld)
	assert.Greater(t, res.DirtyNodes, 0, "first frame derives every transform")

	res = prepare(t, ld)
	assert.Zero(t, res.DirtyNodes, "nothing moved")

	model.SetPosition(0, 5, -100)
	res = prepare(t, ld)
	assert.Equal(t, 1, res.DirtyNodes)
}

func TestResetClearsFrameState(t *testing.T) {
	layer, _, _ := newTestScene()
	l := scene_graph.NewLight("sun", scene_graph.LightDirectional)
	layer.AddChild(&l.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	require.NotEmpty(t, ld.OpaqueRenderables())
	require.NotEmpty(t, ld.GlobalLights())
	require.NotEmpty(t, ld.Passes())

	ld.ResetForFrame()
	assert.Empty(t, ld.GlobalLights())
	assert.Empty(t, ld.Passes())
	assert.Empty(t, ld.DepthWriteRenderables())
	assert.Nil(t, ld.Camera())
}

func TestBakedLightExcludedFromShadows(t *testing.T) {
	layer, _, _ := newTestScene()
	baked := scene_graph.NewLight("baked", scene_graph.LightDirectional,
		scene_graph.WithShadows(10), scene_graph.WithBakeMode(scene_graph.BakeModeAll))
	dynamic := scene_graph.NewLight("dynamic", scene_graph.LightDirectional,
		scene_graph.WithShadows(10))
	layer.AddChild(&baked.Node)
	layer.AddChild(&dynamic.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	global := ld.GlobalLights()
	require.Len(t, global, 2, "baked lights still light the scene")

	// A fully baked light's shadowing lives in the lightmaps; only the
	// dynamic caster gets a shadow map.
	entries := ld.ShadowMapManager().Entries()
	require.Len(t, entries, 1)
	for _, sl := range global {
		if sl.Light == baked {
			assert.False(t, sl.Shadows)
		} else {
			assert.True(t, sl.Shadows)
		}
	}
}

func TestProbeAssignedByBoundsOverlap(t *testing.T) {
	layer, _, _ := newTestScene()
	probe := scene_graph.NewReflectionProbe("edge")
	// The default 100 unit box spans x in [0.5, 100.5]: it clips the cube's
	// bounds without containing its center.
	probe.SetPosition(50.5, 0, -100)
	layer.AddChild(&probe.Node)
	ld := NewLayerData(layer)

	prepare(t, ld)
	opaque := ld.OpaqueRenderables()
	require.Len(t, opaque, 1)
	assert.Same(t, probe, opaque[0].Obj.ReflectionProbe)
	assert.NotNil(t, ld.ReflectionMapManager().EntryForProbe(probe))
}

func TestItem2DSortByParentDistanceThenZOrder(t *testing.T) {
	layer, _, _ := newTestScene()

	nearGroup := scene_graph.NewNode("near group")
	nearGroup.SetPosition(0, 0, -50)
	farGroup := scene_graph.NewNode("far group")
	farGroup.SetPosition(0, 0, -200)
	layer.AddChild(nearGroup)
	layer.AddChild(farGroup)

	nearTop := scene_graph.NewItem2D("near top")
	nearTop.ZOrder = 2
	nearBottom := scene_graph.NewItem2D("near bottom")
	nearBottom.ZOrder = 1
	nearGroup.AddChild(&nearTop.Node)
	nearGroup.AddChild(&nearBottom.Node)

	farTop := scene_graph.NewItem2D("far top")
	farTop.ZOrder = 2
	farBottom := scene_graph.NewItem2D("far bottom")
	farBottom.ZOrder = 1
	farGroup.AddChild(&farTop.Node)
	farGroup.AddChild(&farBottom.Node)

	ld := NewLayerData(layer)
	prepare(t, ld)

	items := ld.Item2Ds()
	require.Len(t, items, 4)
	// Farther parents draw first; within one parent the lower z-order draws
	// first.
	assert.Same(t, farBottom, items[0].Item)
	assert.Same(t, farTop, items[1].Item)
	assert.Same(t, nearBottom, items[2].Item)
	assert.Same(t, nearTop, items[3].Item)
	assert.Greater(t, items[0].ParentDistance, items[2].ParentDistance)
}

func TestMorphWeightsWired(t *testing.T) {
	layer, _, model := newTestScene()
	model.MorphWeights = []float32{1.5, -0.2, 0.5}
	ld := NewLayerData(layer)

	prepare(t, ld)
	opaque := ld.OpaqueRenderables()
	require.Len(t, opaque, 1)
	obj := opaque[0].Obj
	assert.True(t, obj.Flags.Has(FlagMorphed))
	assert.Equal(t, []float32{1, 0, 0.5}, obj.ModelContext.MorphWeights)
}

func TestPickableModelBuildsSpatialIndex(t *testing.T) {
	layer, _, _ := newTestScene()
	picked := scene_graph.NewModel("picked", triangleMesh("picked mesh"))
	picked.Materials = []*material.DefaultMaterial{material.NewDefaultMaterial("picked material")}
	picked.SetPosition(0, 0, -100)
	picked.Pickable = true
	layer.AddChild(&picked.Node)

	ld := NewLayerData(layer)
	prepare(t, ld)

	byName := map[string]*RenderableObject{}
	for _, h := range ld.OpaqueRenderables() {
		byName[h.Obj.ModelContext.Model.Name] = h.Obj
	}
	require.Contains(t, byName, "picked")
	require.Contains(t, byName, "cube")

	bvh := byName["picked"].ModelContext.BVH
	require.NotNil(t, bvh)
	assert.Len(t, bvh.Triangles, 1)
	assert.Nil(t, byName["cube"].ModelContext.BVH, "models not opted in get no index")

	// The index survives the frame reset and is reused, not rebuilt.
	prepare(t, ld)
	for _, h := range ld.OpaqueRenderables() {
		if h.Obj.ModelContext.Model == picked {
			assert.Same(t, bvh, h.Obj.ModelContext.BVH)
		}
	}
}

func TestLayerWidePickingIndexesEveryModel(t *testing.T) {
	layer := scene_graph.NewLayer("layer")
	layer.PickingEnabled = true
	cam := scene_graph.NewCamera("camera")
	layer.AddChild(&cam.Node)
	model := scene_graph.NewModel("tri", triangleMesh("tri mesh"))
	model.Materials = []*material.DefaultMaterial{material.NewDefaultMaterial("tri material")}
	model.SetPosition(0, 0, -100)
	layer.AddChild(&model.Node)

	ld := NewLayerData(layer)
	prepare(t, ld)

	opaque := ld.OpaqueRenderables()
	require.Len(t, opaque, 1)
	assert.NotNil(t, opaque[0].Obj.ModelContext.BVH)
}
