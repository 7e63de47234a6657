package layer_data

import (
	"sort"
	"sync"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/buffer_manager"
	"github.com/Carmen-Shannon/lumen-go/engine/mesh"
	"github.com/Carmen-Shannon/lumen-go/engine/reflection_map"
	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
	"github.com/Carmen-Shannon/lumen-go/engine/shader_key"
	"github.com/Carmen-Shannon/lumen-go/engine/shadow_map"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// MaxLightCount is the most lights one frame can carry.
	MaxLightCount = 15
	// ReducedMaxLightCount replaces MaxLightCount on devices whose uniform
	// buffer range cannot fit the full light table.
	ReducedMaxLightCount = 5
	// ReducedMaxLightThresholdBytes is the uniform range below which the
	// reduced cap applies.
	ReducedMaxLightThresholdBytes = 4096
	// MaxShadowMapCount is the most shadow casting lights per frame.
	MaxShadowMapCount = 8
	// MaxLightsPerNode is the scoped light list capacity per renderable.
	MaxLightsPerNode = 16
	// MinimumRenderOpacity is the threshold below which a renderable is
	// completely transparent; opacities within the same distance of 1 snap
	// to fully opaque.
	MinimumRenderOpacity = 0.01
	// MinViewportSize is the smallest viewport dimension that still renders.
	MinViewportSize = 2
)

// progressiveAAOffsets are the sub-pixel jitter positions accumulated over
// successive still frames.
var progressiveAAOffsets = [8][2]float32{
	{-0.170840, -0.553840},
	{0.162960, -0.319340},
	{0.360260, -0.245840},
	{-0.561340, -0.149540},
	{0.249460, 0.453460},
	{-0.336340, 0.378260},
	{0.340000, 0.166260},
	{0.235760, 0.527760},
}

// cacheState tracks a lazily sorted bucket: unset before first access,
// building while the sort runs (reentry is a bug), valid afterwards until the
// next reset.
type cacheState uint8

const (
	cacheUnset cacheState = iota
	cacheBuilding
	cacheValid
)

// PreparationResult summarizes what PrepareForRender produced.
type PreparationResult struct {
	// NothingToRender is set when the viewport is degenerate or no camera is
	// active; the renderer should skip the frame.
	NothingToRender bool
	// TextureWidth and TextureHeight are the render target dimensions,
	// including the supersampling multiplier when active.
	TextureWidth, TextureHeight uint32
	// DirtyNodes counts nodes whose transform changed this frame.
	DirtyNodes int
}

// LayerData prepares one layer for rendering and owns its frame-scoped
// state. Typical frame: ResetForFrame, mutate the scene, PrepareForRender,
// read the sorted lists and pass list, render, repeat.
type LayerData interface {
	// PrepareForRender derives the frame's renderable lists, light tables,
	// probe assignments and pass list from the scene graph. Calling it again
	// before ResetForFrame is a no-op returning the same result.
	//
	// Parameters:
	//   - viewportWidth: output width in pixels
	//   - viewportHeight: output height in pixels
	//
	// Returns:
	//   - PreparationResult: what the frame produced
	PrepareForRender(viewportWidth, viewportHeight float32) PreparationResult

	// ResetForFrame clears every per-frame list, cache and pool so the next
	// PrepareForRender starts clean.
	ResetForFrame()

	// Camera returns the camera the frame was prepared through, nil when no
	// active camera was found.
	//
	// Returns:
	//   - *scene_graph.Camera: the frame camera
	Camera() *scene_graph.Camera

	// GlobalLights returns the frame's light table in final order. When any
	// light is scoped to a subtree, the table holds only the unscoped lights;
	// scoped lights reach their subtree through the per-node lists.
	//
	// Returns:
	//   - []ShaderLight: the lights
	GlobalLights() []ShaderLight

	// OpaqueRenderables returns the culled opaque bucket sorted front to
	// back. Built on first access and cached until reset.
	//
	// Returns:
	//   - []RenderableHandle: the sorted handles
	OpaqueRenderables() []RenderableHandle

	// TransparentRenderables returns the culled transparent bucket sorted
	// back to front. Built on first access and cached until reset.
	//
	// Returns:
	//   - []RenderableHandle: the sorted handles
	TransparentRenderables() []RenderableHandle

	// ScreenTextureRenderables returns the culled screen reading bucket
	// sorted back to front. Built on first access and cached until reset.
	//
	// Returns:
	//   - []RenderableHandle: the sorted handles
	ScreenTextureRenderables() []RenderableHandle

	// DepthWriteRenderables returns the opaque renderables that write depth
	// in the main pass. Populated by PrepareForRender.
	//
	// Returns:
	//   - []RenderableHandle: the handles
	DepthWriteRenderables() []RenderableHandle

	// PrePassRenderables returns the renderables that write depth in the
	// z-prepass. Populated by PrepareForRender.
	//
	// Returns:
	//   - []RenderableHandle: the handles
	PrePassRenderables() []RenderableHandle

	// Item2Ds returns the embedded 2D items collected this frame, ordered by
	// their parent's camera distance farthest first, then by z-order within
	// one parent.
	//
	// Returns:
	//   - []Item2DEntry: the items
	Item2Ds() []Item2DEntry

	// BakedLightingModels returns the models participating in baked lighting
	// this frame.
	//
	// Returns:
	//   - []*scene_graph.Model: the models
	BakedLightingModels() []*scene_graph.Model

	// Passes returns the frame's pass list in execution order.
	//
	// Returns:
	//   - []Pass: the passes
	Passes() []Pass

	// ShadowMapManager returns the layer's shadow map manager.
	//
	// Returns:
	//   - shadow_map.ShadowMapManager: the manager
	ShadowMapManager() shadow_map.ShadowMapManager

	// ReflectionMapManager returns the layer's reflection map manager.
	//
	// Returns:
	//   - reflection_map.ReflectionMapManager: the manager
	ReflectionMapManager() reflection_map.ReflectionMapManager

	// Release frees the GPU state owned by the layer data (shadow maps,
	// reflection maps, bone textures).
	Release()
}

type layerData struct {
	mu sync.Mutex

	layer   *scene_graph.Layer
	bufMan  buffer_manager.BufferManager
	shadows shadow_map.ShadowMapManager
	refls   reflection_map.ReflectionMapManager

	// maxUniformRange caps the light table size; small ranges trigger the
	// reduced light cap.
	maxUniformRange uint64

	prepared   bool
	lastResult PreparationResult
	frameIndex int

	// Frame camera state.
	camera          *scene_graph.Camera
	cameraPosition  [3]float32
	cameraDirection [3]float32
	lodMultiplier   float32

	// Node collection, rebuilt by traversal each frame.
	renderableNodes []*scene_graph.Node
	cameras         []*scene_graph.Camera
	lights          []*scene_graph.Light
	probes          []*scene_graph.ReflectionProbe
	item2Ds         []Item2DEntry
	dirtyNodes      int

	// Light tables. frameLights holds every retained light; globalLights is
	// the per-node default view over it, excluding scoped lights when any are
	// present (it then points at unscopedLights).
	frameLights         []ShaderLight
	unscopedLights      []ShaderLight
	globalLights        []ShaderLight
	globalLightFlags    []shader_key.LightFlags
	scopedLightsPresent bool

	// Unsorted buckets filled during preparation.
	opaqueObjects        []RenderableHandle
	transparentObjects   []RenderableHandle
	screenTextureObjects []RenderableHandle

	// Lazily sorted views over the buckets.
	renderedOpaque        []RenderableHandle
	renderedTransparent   []RenderableHandle
	renderedScreenTexture []RenderableHandle
	opaqueState           cacheState
	transparentState      cacheState
	screenTextureState    cacheState

	// Depth write partitions, rebuilt by PrepareForRender.
	renderedDepthWrite []RenderableHandle
	renderedPrePass    []RenderableHandle

	modelContexts       []*ModelContext
	bakedLightingModels []*scene_graph.Model
	passes              []Pass

	// Resolved environment probe for the frame, nil when absent or failed.
	iblProbeLoaded bool

	// Frame pools.
	objPool   common.Pool[RenderableObject]
	ctxPool   common.Pool[ModelContext]
	imgPool   common.Pool[RenderableImage]
	lightPool common.Pool[[MaxLightsPerNode]ShaderLight]

	// Persistent per-model GPU state.
	boneTextures map[*scene_graph.Model]*buffer_manager.BoneTexture

	// Picking indexes built without a buffer manager, kept across frames.
	meshBVHs map[*mesh.Mesh]*mesh.BVH

	// Overflow warnings fire once per layer data instance.
	tooManyLightsWarned  bool
	tooManyShadowsWarned bool
	probeFailWarned      bool
}

var _ LayerData = &layerData{}

// NewLayerData creates the frame preparation state for a layer.
//
// Parameters:
//   - layer: the layer to prepare, must not be nil
//   - options: optional configuration
//
// Returns:
//   - LayerData: the new layer data
func NewLayerData(layer *scene_graph.Layer, options ...LayerDataBuilderOption) LayerData {
	if layer == nil {
		panic("layer_data: NewLayerData requires a layer")
	}
	ld := &layerData{
		layer:           layer,
		maxUniformRange: 65536,
		boneTextures:    make(map[*scene_graph.Model]*buffer_manager.BoneTexture),
		meshBVHs:        make(map[*mesh.Mesh]*mesh.BVH),
	}
	for _, option := range options {
		option(ld)
	}
	if ld.shadows == nil {
		ld.shadows = shadow_map.NewShadowMapManager(ld.device())
	}
	if ld.refls == nil {
		ld.refls = reflection_map.NewReflectionMapManager(ld.device())
	}
	return ld
}

func (ld *layerData) device() *wgpu.Device {
	if ld.bufMan == nil {
		return nil
	}
	return ld.bufMan.Device()
}

func (ld *layerData) Camera() *scene_graph.Camera {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.camera
}

func (ld *layerData) GlobalLights() []ShaderLight {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.globalLights
}

func (ld *layerData) Item2Ds() []Item2DEntry {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.item2Ds
}

func (ld *layerData) BakedLightingModels() []*scene_graph.Model {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.bakedLightingModels
}

func (ld *layerData) Passes() []Pass {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.passes
}

func (ld *layerData) ShadowMapManager() shadow_map.ShadowMapManager {
	return ld.shadows
}

func (ld *layerData) ReflectionMapManager() reflection_map.ReflectionMapManager {
	return ld.refls
}

func (ld *layerData) DepthWriteRenderables() []RenderableHandle {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.renderedDepthWrite
}

func (ld *layerData) PrePassRenderables() []RenderableHandle {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.renderedPrePass
}

func (ld *layerData) OpaqueRenderables() []RenderableHandle {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.sortedOpaqueLocked()
}

func (ld *layerData) TransparentRenderables() []RenderableHandle {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.sortedTransparentLocked()
}

func (ld *layerData) ScreenTextureRenderables() []RenderableHandle {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.sortedScreenTextureLocked()
}

func (ld *layerData) sortedOpaqueLocked() []RenderableHandle {
	switch ld.opaqueState {
	case cacheValid:
		return ld.renderedOpaque
	case cacheBuilding:
		panic("layer_data: reentrant opaque bucket access during sort")
	}
	ld.opaqueState = cacheBuilding
	ld.renderedOpaque = ld.buildSortedBucket(ld.renderedOpaque, ld.opaqueObjects, false)
	ld.opaqueState = cacheValid
	return ld.renderedOpaque
}

func (ld *layerData) sortedTransparentLocked() []RenderableHandle {
	switch ld.transparentState {
	case cacheValid:
		return ld.renderedTransparent
	case cacheBuilding:
		panic("layer_data: reentrant transparent bucket access during sort")
	}
	ld.transparentState = cacheBuilding
	ld.renderedTransparent = ld.buildSortedBucket(ld.renderedTransparent, ld.transparentObjects, true)
	ld.transparentState = cacheValid
	return ld.renderedTransparent
}

func (ld *layerData) sortedScreenTextureLocked() []RenderableHandle {
	switch ld.screenTextureState {
	case cacheValid:
		return ld.renderedScreenTexture
	case cacheBuilding:
		panic("layer_data: reentrant screen texture bucket access during sort")
	}
	ld.screenTextureState = cacheBuilding
	ld.renderedScreenTexture = ld.buildSortedBucket(ld.renderedScreenTexture, ld.screenTextureObjects, true)
	ld.screenTextureState = cacheValid
	return ld.renderedScreenTexture
}

// buildSortedBucket culls a bucket against the frame camera and sorts the
// survivors by camera distance into dst's backing array.
func (ld *layerData) buildSortedBucket(dst, src []RenderableHandle, backToFront bool) []RenderableHandle {
	dst = dst[:0]
	dst = append(dst, src...)

	if ld.camera != nil && ld.camera.FrustumCulling {
		frustum := &ld.camera.Frustum
		n := 0
		// Index swap partition; order is restored by the sort below.
		back := len(dst) - 1
		for n <= back {
			if frustum.Intersects(dst[n].Obj.GlobalBounds) {
				n++
				continue
			}
			dst[n], dst[back] = dst[back], dst[n]
			back--
		}
		dst = dst[:n]
	}

	sort.SliceStable(dst, func(i, j int) bool {
		if backToFront {
			return dst[i].CameraDistance > dst[j].CameraDistance
		}
		return dst[i].CameraDistance < dst[j].CameraDistance
	})
	return dst
}

func (ld *layerData) ResetForFrame() {
	ld.mu.Lock()
	defer ld.mu.Unlock()

	ld.prepared = false
	ld.frameIndex++

	ld.camera = nil
	ld.lodMultiplier = 0

	ld.renderableNodes = ld.renderableNodes[:0]
	ld.cameras = ld.cameras[:0]
	ld.lights = ld.lights[:0]
	ld.probes = ld.probes[:0]
	ld.item2Ds = ld.item2Ds[:0]
	ld.dirtyNodes = 0

	ld.frameLights = ld.frameLights[:0]
	ld.unscopedLights = ld.unscopedLights[:0]
	ld.globalLights = nil
	ld.globalLightFlags = ld.globalLightFlags[:0]
	ld.scopedLightsPresent = false

	ld.opaqueObjects = ld.opaqueObjects[:0]
	ld.transparentObjects = ld.transparentObjects[:0]
	ld.screenTextureObjects = ld.screenTextureObjects[:0]

	ld.renderedOpaque = ld.renderedOpaque[:0]
	ld.renderedTransparent = ld.renderedTransparent[:0]
	ld.renderedScreenTexture = ld.renderedScreenTexture[:0]
	ld.opaqueState = cacheUnset
	ld.transparentState = cacheUnset
	ld.screenTextureState = cacheUnset

	ld.renderedDepthWrite = ld.renderedDepthWrite[:0]
	ld.renderedPrePass = ld.renderedPrePass[:0]

	ld.modelContexts = ld.modelContexts[:0]
	ld.bakedLightingModels = ld.bakedLightingModels[:0]
	ld.passes = ld.passes[:0]
	ld.iblProbeLoaded = false

	ld.objPool.Reset()
	ld.ctxPool.Reset()
	ld.imgPool.Reset()
	ld.lightPool.Reset()
}

func (ld *layerData) Release() {
	ld.mu.Lock()
	defer ld.mu.Unlock()

	ld.shadows.Release()
	ld.refls.Release()
	for model, bt := range ld.boneTextures {
		if bt.Handle != nil {
			bt.Handle.Destroy()
		}
		delete(ld.boneTextures, model)
	}
}
