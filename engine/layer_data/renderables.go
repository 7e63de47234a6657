// package layer_data is the per-frame working state of one rendered layer:
// the renderable lists, light tables, probe assignments and pass list that
// PrepareForRender derives from the scene graph. All of it is frame-scoped
// and rebuilt from pooled memory; ResetForFrame returns the layer to a clean
// slate without releasing anything.
package layer_data

import (
	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/buffer_manager"
	"github.com/Carmen-Shannon/lumen-go/engine/material"
	"github.com/Carmen-Shannon/lumen-go/engine/mesh"
	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
	"github.com/Carmen-Shannon/lumen-go/engine/shader_key"
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderableType tags what a renderable object draws.
type RenderableType uint8

const (
	// RenderableSubset draws one mesh subset of a model.
	RenderableSubset RenderableType = iota
	// RenderableParticles draws a particle system.
	RenderableParticles
)

// RenderableFlags is a bitmask of per-renderable properties derived during
// preparation.
type RenderableFlags uint16

const (
	// FlagHasTransparency marks the renderable for the transparent pass.
	FlagHasTransparency RenderableFlags = 1 << iota
	// FlagCompletelyTransparent marks a renderable whose clamped opacity hit
	// zero; it is prepared but never drawn.
	FlagCompletelyTransparent
	// FlagCastsShadows includes the renderable in shadow passes.
	FlagCastsShadows
	// FlagReceivesShadows lets shadow maps darken the renderable.
	FlagReceivesShadows
	// FlagReceivesReflections lets reflection probes light the renderable.
	FlagReceivesReflections
	// FlagCastsReflections includes the renderable in probe capture passes.
	FlagCastsReflections
	// FlagRequiresScreenTexture routes the renderable to the screen texture
	// bucket; its blending reads the backbuffer.
	FlagRequiresScreenTexture
	// FlagMorphed marks a renderable whose model carries active morph target
	// weights this frame.
	FlagMorphed
)

// Has reports whether all bits of f are set.
//
// Parameters:
//   - f: the flag bits to test
//
// Returns:
//   - bool: true if every bit of f is set
func (r RenderableFlags) Has(f RenderableFlags) bool {
	return r&f == f
}

// ShaderLight is one light resolved for shading: the light plus the
// per-frame state shaders need.
type ShaderLight struct {
	// Light is the source light node.
	Light *scene_graph.Light
	// Shadows is set when the light got a shadow map this frame.
	Shadows bool
	// Direction is the world-space light direction this frame.
	Direction [3]float32
}

// ModelContext is the per-frame state shared by all subset renderables of one
// model.
type ModelContext struct {
	// Model is the source node.
	Model *scene_graph.Model
	// GlobalTransform is the model's world transform this frame.
	GlobalTransform [16]float32
	// MVP is the model-view-projection, jittered in place when antialiasing
	// is active.
	MVP [16]float32
	// NormalMatrix is the inverse-transpose world transform for normals.
	NormalMatrix [16]float32
	// BoneTexture is the skinning texture, nil for unskinned models.
	BoneTexture *buffer_manager.BoneTexture
	// InstanceBuffer is the instance data, nil for non-instanced models.
	InstanceBuffer *wgpu.Buffer
	// InstanceCount is the number of instances to draw.
	InstanceCount int
	// MorphWeights are the clamped blend weights uploaded for morphing, empty
	// for unmorphed models.
	MorphWeights []float32
	// BVH is the mesh spatial index for picking, built only for pickable
	// models.
	BVH *mesh.BVH
}

// RenderableImage is one enabled material image in the renderable's linked
// image chain, walked in slot order by uniform upload and shader generation.
type RenderableImage struct {
	// Slot is the material input this image feeds.
	Slot material.ImageSlot
	// Image is the material image.
	Image *material.Image
	// Next is the next enabled image, nil at the end of the chain.
	Next *RenderableImage
}

// RenderableObject is one draw produced by preparation. Objects live in
// frame-pooled memory and die at ResetForFrame.
type RenderableObject struct {
	// Type tags what the object draws.
	Type RenderableType
	// Flags are the derived per-renderable properties.
	Flags RenderableFlags
	// ShaderKey selects the shader variant.
	ShaderKey shader_key.Key
	// WorldCenter is the world-space bounds center used for sorting.
	WorldCenter [3]float32
	// GlobalBounds is the world-space bounding box used for culling.
	GlobalBounds common.Bounds3
	// Opacity is the clamped combined opacity.
	Opacity float32
	// DepthBias is added to the camera distance when sorting.
	DepthBias float32

	// ModelContext is the owning model's frame state (subset renderables).
	ModelContext *ModelContext
	// Subset is the drawn mesh subset (subset renderables).
	Subset *mesh.Subset
	// SubsetIndex is the subset's index in the mesh.
	SubsetIndex int
	// LevelOfDetail is the selected detail level for the subset.
	LevelOfDetail int
	// Material is the shading material (subset renderables).
	Material *material.DefaultMaterial
	// FirstImage heads the enabled image chain, nil when untextured.
	FirstImage *RenderableImage
	// Lights are the lights shading this renderable. Unscoped renderables
	// alias the layer's global light list.
	Lights []ShaderLight
	// DepthWriteMode is the material's depth write behavior.
	DepthWriteMode material.DepthDrawMode

	// ReflectionProbe is the assigned probe, nil when none contains the
	// renderable.
	ReflectionProbe *scene_graph.ReflectionProbe

	// ParticleSystem is the source system (particle renderables).
	ParticleSystem *scene_graph.ParticleSystem
}

// RenderableHandle pairs a renderable with its signed camera distance; the
// handle lists are what gets culled and sorted, not the objects.
type RenderableHandle struct {
	// Obj is the renderable.
	Obj *RenderableObject
	// CameraDistance is the signed distance along the camera forward axis
	// plus the renderable's depth bias.
	CameraDistance float32
}

// Item2DEntry records one embedded 2D item for the frame.
type Item2DEntry struct {
	// Item is the 2D item node.
	Item *scene_graph.Item2D
	// ParentDistance is the item's parent position projected onto the camera
	// forward axis, used to order items under different parents.
	ParentDistance float32
}
