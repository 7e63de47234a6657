package layer_data

import (
	"log"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/instancing"
	"github.com/Carmen-Shannon/lumen-go/engine/material"
	"github.com/Carmen-Shannon/lumen-go/engine/mesh"
	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
	"github.com/Carmen-Shannon/lumen-go/engine/shader_key"
	"github.com/chewxy/math32"
)

// prepareModel turns one model node into subset renderables: derives the
// frame matrices, refreshes skinning and instancing state, selects a detail
// level per subset and classifies each resulting renderable into a bucket.
func (ld *layerData) prepareModel(model *scene_graph.Model) {
	if !model.GlobalActive || model.Mesh == nil || len(model.Mesh.Subsets) == 0 {
		return
	}

	if model.UsedInBakedLighting {
		ld.bakedLightingModels = append(ld.bakedLightingModels, model)
	}

	ctx := ld.ctxPool.Get()
	ctx.Model = model
	copy(ctx.GlobalTransform[:], model.GlobalTransform[:])
	common.Mul4(ctx.MVP[:], ld.camera.ViewProjection[:], model.GlobalTransform[:])
	computeNormalMatrix(ctx.NormalMatrix[:], model.GlobalTransform[:])
	if len(model.MorphWeights) > 0 {
		ctx.MorphWeights = model.ClampedMorphWeights()
	}
	ld.modelContexts = append(ld.modelContexts, ctx)

	ld.refreshSkin(model, ctx)
	ld.resolveMeshBVH(model, ctx)
	ld.loadModelResources(model, ctx)

	scale := common.GetScale3(model.GlobalTransform[:])
	modelScale := math32.Max(scale[0], math32.Max(scale[1], scale[2]))

	lights := ld.lightListForNode(&model.Node)

	for i := range model.Mesh.Subsets {
		subset := &model.Mesh.Subsets[i]
		mat := model.MaterialForSubset(i)
		if mat == nil {
			continue
		}

		worldBounds := subset.Bounds.Transformed(model.GlobalTransform[:])
		lod := ld.selectLevelOfDetail(subset, worldBounds, modelScale, model.LodBias)

		obj := ld.prepareMaterialRenderable(model, ctx, mat, lights)
		obj.Subset = subset
		obj.SubsetIndex = i
		obj.LevelOfDetail = lod
		obj.GlobalBounds = worldBounds
		obj.WorldCenter = worldBounds.Center()
		obj.DepthBias = model.DepthBias

		ld.classify(obj)
	}
}

// selectLevelOfDetail walks a subset's coarser levels while they still cover
// less than the threshold at the bounds' camera plane distance. Level 0 is
// full detail; the chosen level is one past the last level that passed.
func (ld *layerData) selectLevelOfDetail(subset *mesh.Subset, worldBounds common.Bounds3, modelScale, lodBias float32) int {
	if len(subset.Lods) == 0 || lodBias <= 0 {
		return 0
	}
	distanceThreshold := ld.camera.SignedDistanceToBounds(worldBounds)
	if distanceThreshold <= 0 {
		// The camera plane cuts (or sits past) the bounds; always render
		// full detail.
		return 0
	}

	currentLod := -1
	for i := range subset.Lods {
		subsetDistance := subset.Lods[i].Distance * modelScale / lodBias
		coverage := subsetDistance / (distanceThreshold * ld.lodMultiplier)
		if coverage > 1 {
			break
		}
		currentLod = i
	}
	return currentLod + 1
}

// prepareMaterialRenderable builds the renderable object shared state for one
// subset: clamped opacity, derived flags, the enabled image chain and the
// shader variant key.
func (ld *layerData) prepareMaterialRenderable(model *scene_graph.Model, ctx *ModelContext, mat *material.DefaultMaterial, lights []ShaderLight) *RenderableObject {
	obj := ld.objPool.Get()
	obj.Type = RenderableSubset
	obj.ModelContext = ctx
	obj.Material = mat
	obj.Lights = lights
	obj.DepthWriteMode = mat.DepthDrawMode

	opacity := model.GlobalOpacity * mat.Opacity
	if opacity < MinimumRenderOpacity {
		opacity = 0
		obj.Flags |= FlagCompletelyTransparent | FlagHasTransparency
	} else if opacity > 1-MinimumRenderOpacity {
		opacity = 1
	}
	obj.Opacity = opacity
	if opacity < 1 || mat.HasTransparency() {
		obj.Flags |= FlagHasTransparency
	}

	if model.CastsShadows {
		obj.Flags |= FlagCastsShadows
	}
	if model.ReceivesShadows {
		obj.Flags |= FlagReceivesShadows
	}
	if model.ReceivesReflections {
		obj.Flags |= FlagReceivesReflections
	}
	if model.CastsReflections {
		obj.Flags |= FlagCastsReflections
	}
	if mat.BlendMode == material.BlendScreen || mat.BlendMode == material.BlendMultiply {
		// Advanced blending reads the backbuffer.
		obj.Flags |= FlagRequiresScreenTexture
	}
	if len(ctx.MorphWeights) > 0 {
		obj.Flags |= FlagMorphed
	}

	obj.FirstImage = ld.buildImageChain(mat)

	attrs := model.Mesh.Attributes
	obj.ShaderKey = shader_key.Build(mat, shader_key.Features{
		Attributes: attrs,
		IBLProbe:   ld.iblProbeLoaded,
		Lights:     ld.keyFlagsFor(lights),
	})
	mat.Dirty = false
	return obj
}

// buildImageChain links the material's enabled images in slot order from the
// frame pool.
func (ld *layerData) buildImageChain(mat *material.DefaultMaterial) *RenderableImage {
	var head, tail *RenderableImage
	for slot := material.ImageSlot(0); slot < material.ImageSlotCount; slot++ {
		img := mat.Maps[slot]
		if !img.Enabled() {
			continue
		}
		entry := ld.imgPool.Get()
		entry.Slot = slot
		entry.Image = img
		if tail == nil {
			head = entry
		} else {
			tail.Next = entry
		}
		tail = entry
	}
	return head
}

// classify appends a renderable to its bucket with its signed camera
// distance. Completely transparent renderables are prepared but never
// bucketed, so they are never drawn.
func (ld *layerData) classify(obj *RenderableObject) {
	if obj.Flags.Has(FlagCompletelyTransparent) {
		return
	}
	handle := RenderableHandle{
		Obj:            obj,
		CameraDistance: common.Dot3(common.Sub3(obj.WorldCenter, ld.cameraPosition), ld.cameraDirection) + obj.DepthBias,
	}
	switch {
	case obj.Flags.Has(FlagRequiresScreenTexture):
		ld.screenTextureObjects = append(ld.screenTextureObjects, handle)
	case obj.Flags.Has(FlagHasTransparency):
		ld.transparentObjects = append(ld.transparentObjects, handle)
	default:
		ld.opaqueObjects = append(ld.opaqueObjects, handle)
	}
}

// refreshSkin repacks the model's bone data from the current joint global
// transforms and uploads it, recreating the bone texture only when its
// dimensions changed.
func (ld *layerData) refreshSkin(model *scene_graph.Model, ctx *ModelContext) {
	skeleton := model.Skeleton
	if skeleton == nil || len(skeleton.Joints) == 0 {
		return
	}
	if model.Skin == nil {
		model.Skin = &scene_graph.Skin{}
	}
	model.Skin.Resize(len(skeleton.Joints))

	var invModel [16]float32
	if !common.Invert4(invModel[:], model.GlobalTransform[:]) {
		common.Identity(invModel[:])
	}

	var jointMat, tmp, normalMat [16]float32
	for _, joint := range skeleton.Joints {
		// Bone matrix: model space -> joint space -> world -> model space.
		common.Mul4(tmp[:], joint.GlobalTransform[:], joint.InverseBindPose[:])
		common.Mul4(jointMat[:], invModel[:], tmp[:])
		computeNormalMatrix(normalMat[:], jointMat[:])

		base := joint.Index * 32
		if base+32 <= len(model.Skin.BoneData) {
			copy(model.Skin.BoneData[base:base+16], jointMat[:])
			copy(model.Skin.BoneData[base+16:base+32], normalMat[:])
		}
	}

	if ld.bufMan != nil {
		bt, err := ld.bufMan.EnsureBoneTexture(model.Skin, ld.boneTextures[model])
		if err != nil {
			log.Printf("[LayerData] bone texture for model %q failed: %v", model.Name, err)
			return
		}
		ld.boneTextures[model] = bt
		ctx.BoneTexture = bt
	}
}

// resolveMeshBVH lazily builds the picking index for a pickable model's mesh.
// The index is cached through the buffer manager when one is present,
// otherwise locally, so later frames reuse the same build.
func (ld *layerData) resolveMeshBVH(model *scene_graph.Model, ctx *ModelContext) {
	if !model.Pickable && !ld.layer.PickingEnabled {
		return
	}
	if model.GlobalOpacity <= 0 {
		return
	}

	if ld.bufMan != nil {
		bvh, err := ld.bufMan.LoadMeshBVH(model.Mesh)
		if err != nil {
			log.Printf("[LayerData] picking index for mesh %q failed: %v", model.Mesh.Name, err)
			return
		}
		ctx.BVH = bvh
		return
	}

	bvh, ok := ld.meshBVHs[model.Mesh]
	if !ok {
		bvh = mesh.BuildBVH(model.Mesh)
		if bvh != nil {
			ld.meshBVHs[model.Mesh] = bvh
		}
	}
	ctx.BVH = bvh
}

// loadModelResources brings the model's GPU dependencies up to date: mesh
// buffers, material textures and the instance buffer.
func (ld *layerData) loadModelResources(model *scene_graph.Model, ctx *ModelContext) {
	if model.Instancing != nil {
		ctx.InstanceCount = model.Instancing.Count()
	}
	if ld.bufMan == nil {
		return
	}

	if _, err := ld.bufMan.LoadMesh(model.Mesh); err != nil {
		log.Printf("[LayerData] mesh %q failed to load: %v", model.Mesh.Name, err)
	}

	var textures []*material.Texture
	for _, mat := range model.Materials {
		if mat == nil {
			continue
		}
		for slot := material.ImageSlot(0); slot < material.ImageSlotCount; slot++ {
			img := mat.Maps[slot]
			if img.Enabled() && img.Texture.View == nil && img.Texture.Source != nil {
				textures = append(textures, img.Texture)
			}
		}
	}
	if len(textures) > 0 {
		if err := ld.bufMan.LoadTextures(textures); err != nil {
			log.Printf("[LayerData] textures for model %q failed to load: %v", model.Name, err)
		}
	}

	if model.Instancing != nil && model.Instancing.Count() > 0 {
		buf, err := instancing.BuildBuffer(
			ld.bufMan.Device(), ld.bufMan.Queue(), model.Instancing, model,
			model.GlobalTransform[:], ld.cameraPosition, ld.cameraDirection,
			instancing.LodRange{Min: model.InstancingLodMin, Max: model.InstancingLodMax},
		)
		if err != nil {
			log.Printf("[LayerData] instance buffer for model %q failed: %v", model.Name, err)
		} else {
			ctx.InstanceBuffer = buf
		}
	}
}

// prepareParticles turns a particle system node into a transparent
// renderable covering its simulated bounds.
func (ld *layerData) prepareParticles(ps *scene_graph.ParticleSystem) {
	if !ps.GlobalActive || ps.ParticleCount == 0 {
		return
	}

	ctx := ld.ctxPool.Get()
	ctx.Model = nil
	copy(ctx.GlobalTransform[:], ps.GlobalTransform[:])
	common.Mul4(ctx.MVP[:], ld.camera.ViewProjection[:], ps.GlobalTransform[:])
	computeNormalMatrix(ctx.NormalMatrix[:], ps.GlobalTransform[:])
	ld.modelContexts = append(ld.modelContexts, ctx)

	obj := ld.objPool.Get()
	obj.Type = RenderableParticles
	obj.ParticleSystem = ps
	obj.ModelContext = ctx
	obj.Lights = ld.lightListForNode(&ps.Node)
	obj.DepthWriteMode = material.DepthDrawNever

	opacity := ps.GlobalOpacity
	if opacity < MinimumRenderOpacity {
		opacity = 0
		obj.Flags |= FlagCompletelyTransparent
	} else if opacity > 1-MinimumRenderOpacity {
		opacity = 1
	}
	obj.Opacity = opacity
	// Particles always blend.
	obj.Flags |= FlagHasTransparency
	if ps.BlendMode == material.BlendScreen || ps.BlendMode == material.BlendMultiply {
		obj.Flags |= FlagRequiresScreenTexture
	}

	bounds := ps.LocalBounds
	if bounds.IsEmpty() {
		bounds = common.CenterExtents([3]float32{}, [3]float32{1, 1, 1})
	}
	obj.GlobalBounds = bounds.Transformed(ps.GlobalTransform[:])
	obj.WorldCenter = obj.GlobalBounds.Center()

	ld.classify(obj)
}

// computeNormalMatrix writes the inverse transpose of a transform, falling
// back to the transform itself when it is singular.
func computeNormalMatrix(out, m []float32) {
	var inv [16]float32
	if !common.Invert4(inv[:], m) {
		copy(out, m)
		return
	}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[col*4+row] = inv[row*4+col]
		}
	}
}
