package layer_data

import (
	"log"
	"sort"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/material"
	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
)

func (ld *layerData) PrepareForRender(viewportWidth, viewportHeight float32) PreparationResult {
	ld.mu.Lock()
	defer ld.mu.Unlock()

	if ld.prepared {
		return ld.lastResult
	}
	if len(ld.renderedDepthWrite) != 0 || len(ld.renderedPrePass) != 0 {
		panic("layer_data: depth write lists not empty at preparation start, missing ResetForFrame")
	}
	ld.prepared = true

	var res PreparationResult
	if viewportWidth < MinViewportSize || viewportHeight < MinViewportSize {
		res.NothingToRender = true
		ld.lastResult = res
		return res
	}

	texWidth, texHeight := viewportWidth, viewportHeight
	if ld.layer.SSAAEnabled && ld.layer.SSAAMultiplier > 1 {
		texWidth *= ld.layer.SSAAMultiplier
		texHeight *= ld.layer.SSAAMultiplier
	}
	res.TextureWidth = uint32(texWidth + 0.5)
	res.TextureHeight = uint32(texHeight + 0.5)

	ld.resolveLightProbe()
	ld.collectNodes()
	ld.selectCamera(viewportWidth, viewportHeight)
	if ld.camera == nil {
		res.NothingToRender = true
		ld.lastResult = res
		return res
	}

	ld.prepareLights()

	for _, n := range ld.renderableNodes {
		switch n.Type {
		case scene_graph.NodeTypeModel:
			ld.prepareModel(n.AsModel())
		case scene_graph.NodeTypeParticleSystem:
			ld.prepareParticles(n.AsParticleSystem())
		}
	}
	ld.prepareItem2Ds()

	ld.assignReflectionProbes()
	ld.buildDepthWriteLists()
	ld.assemblePasses()
	ld.applyAntialiasingJitter(viewportWidth, viewportHeight)

	res.DirtyNodes = ld.dirtyNodes
	ld.lastResult = res
	return res
}

// resolveLightProbe loads the layer's environment map; a failed load disables
// image based lighting for the frame instead of failing preparation.
func (ld *layerData) resolveLightProbe() {
	probe := ld.layer.LightProbe
	if probe == nil {
		ld.iblProbeLoaded = false
		return
	}
	if ld.bufMan == nil || probe.View != nil {
		ld.iblProbeLoaded = true
		return
	}
	if err := ld.bufMan.LoadTexture(probe); err != nil {
		if !ld.probeFailWarned {
			log.Printf("[LayerData] light probe %q failed to load, image based lighting disabled: %v", probe.Name, err)
			ld.probeFailWarned = true
		}
		ld.iblProbeLoaded = false
		return
	}
	ld.iblProbeLoaded = true
}

// collectNodes walks the layer depth first, refreshing derived node state and
// gathering the frame's cameras, lights, probes and renderable nodes. 2D
// items go to the front of their list so their content is prepared before 3D
// renderables that may sample it.
func (ld *layerData) collectNodes() {
	dfsIndex := 0
	var walk func(n *scene_graph.Node, parent *scene_graph.Node)
	walk = func(n, parent *scene_graph.Node) {
		n.DFSIndex = dfsIndex
		dfsIndex++

		var parentTransform []float32
		parentOpacity := float32(1)
		parentActive := true
		if parent != nil {
			parentTransform = parent.GlobalTransform[:]
			parentOpacity = parent.GlobalOpacity
			parentActive = parent.GlobalActive
		}
		if n.UpdateGlobalState(parentTransform, parentOpacity, parentActive) {
			ld.dirtyNodes++
		}

		switch n.Type {
		case scene_graph.NodeTypeModel, scene_graph.NodeTypeParticleSystem:
			ld.renderableNodes = append(ld.renderableNodes, n)
		case scene_graph.NodeTypeCamera:
			ld.cameras = append(ld.cameras, n.AsCamera())
		case scene_graph.NodeTypeLight:
			ld.lights = append(ld.lights, n.AsLight())
		case scene_graph.NodeTypeReflectionProbe:
			ld.probes = append(ld.probes, n.AsReflectionProbe())
		case scene_graph.NodeTypeItem2D:
			ld.item2Ds = append(ld.item2Ds, Item2DEntry{})
			copy(ld.item2Ds[1:], ld.item2Ds)
			ld.item2Ds[0] = Item2DEntry{Item: n.AsItem2D()}
		}

		for _, c := range n.Children {
			walk(c, n)
		}
	}
	walk(&ld.layer.Node, ld.layer.Parent)
}

// selectCamera picks the frame camera: the layer's explicit camera when it is
// active, otherwise the first active camera in traversal order.
func (ld *layerData) selectCamera(viewportWidth, viewportHeight float32) {
	if explicit := ld.layer.ExplicitCamera; explicit != nil && explicit.GlobalActive {
		ld.camera = explicit
	} else {
		for _, cam := range ld.cameras {
			if cam.GlobalActive {
				ld.camera = cam
				break
			}
		}
	}
	if ld.camera == nil {
		return
	}
	if !ld.camera.CalculateGlobalVariables(viewportWidth, viewportHeight) {
		ld.camera = nil
		return
	}
	ld.cameraPosition = ld.camera.GlobalPosition()
	ld.cameraDirection = ld.camera.GlobalDirection()
	ld.lodMultiplier = ld.camera.LevelOfDetailMultiplier(viewportHeight)
}

// buildDepthWriteLists partitions the sorted buckets by depth write mode:
// opaque renderables writing depth in the main pass versus renderables that
// requested a dedicated z-prepass.
func (ld *layerData) buildDepthWriteLists() {
	if ld.layer.DepthTestDisabled {
		return
	}
	for _, h := range ld.sortedOpaqueLocked() {
		switch h.Obj.DepthWriteMode {
		case material.DepthDrawAlways, material.DepthDrawOpaqueOnly:
			ld.renderedDepthWrite = append(ld.renderedDepthWrite, h)
		case material.DepthDrawOpaquePrePass:
			if !ld.layer.DepthPrePassDisabled {
				ld.renderedPrePass = append(ld.renderedPrePass, h)
			}
		}
	}
	if ld.layer.DepthPrePassDisabled {
		return
	}
	for _, h := range ld.sortedTransparentLocked() {
		if h.Obj.DepthWriteMode == material.DepthDrawOpaquePrePass {
			ld.renderedPrePass = append(ld.renderedPrePass, h)
		}
	}
}

// assemblePasses builds the frame's pass list in execution order. The
// reflection and z-prepass passes are scheduled every frame even with no
// entries, so the render side can maintain probe atlases and depth targets
// without re-deriving the frame state; the remaining conditional passes only
// run when their inputs exist.
func (ld *layerData) assemblePasses() {
	ssao := ld.layer.AOStrength > 0 && !ld.layer.DepthTestDisabled
	if ssao {
		ld.passes = append(ld.passes, Pass{Type: PassDepth})
		ld.passes = append(ld.passes, Pass{Type: PassSSAO})
	}
	if entries := ld.shadows.Entries(); len(entries) > 0 {
		ld.passes = append(ld.passes, Pass{Type: PassShadow, ShadowEntries: entries})
	}
	ld.passes = append(ld.passes, Pass{Type: PassReflection, ReflectionEntries: ld.refls.Entries()})
	ld.passes = append(ld.passes, Pass{Type: PassZPrePass})
	if len(ld.sortedScreenTextureLocked()) > 0 {
		ld.passes = append(ld.passes, Pass{Type: PassScreenTexture})
	}
	ld.passes = append(ld.passes, Pass{Type: PassMain})
}

// applyAntialiasingJitter nudges every cached model-view-projection by the
// frame's sub-pixel offset. Mutating the cached matrices keeps the jitter out
// of the camera state, so bucket sorting and culling stay stable.
func (ld *layerData) applyAntialiasingJitter(viewportWidth, viewportHeight float32) {
	if ld.layer.AAMode == scene_graph.AANone {
		return
	}

	samples := len(progressiveAAOffsets)
	if ld.layer.AAMode == scene_graph.AAProgressive && ld.layer.AAQuality > 0 && ld.layer.AAQuality < samples {
		samples = ld.layer.AAQuality
	}
	offset := progressiveAAOffsets[ld.frameIndex%samples]

	scale := float32(1)
	if ld.layer.AAMode == scene_graph.AATemporal {
		scale = ld.layer.TemporalAAStrength
	}
	ox := offset[0] * scale * 2 / viewportWidth
	oy := offset[1] * scale * 2 / viewportHeight

	for _, ctx := range ld.modelContexts {
		jitterMVP(ctx.MVP[:], ox, oy)
	}
	for _, e := range ld.item2Ds {
		if e.Item != nil {
			jitterMVP(e.Item.MVP[:], ox, oy)
		}
	}
}

// jitterMVP adds the clip-space offset to a model-view-projection in place:
// x' = x + ox*w, y' = y + oy*w.
func jitterMVP(m []float32, ox, oy float32) {
	m[0] += ox * m[3]
	m[4] += ox * m[7]
	m[8] += ox * m[11]
	m[12] += ox * m[15]
	m[1] += oy * m[3]
	m[5] += oy * m[7]
	m[9] += oy * m[11]
	m[13] += oy * m[15]
}

// prepareItem2Ds derives each collected 2D item's model-view-projection and
// orders the entries in two stable stages: by the owning parent's distance
// along the camera forward axis, farthest first, then by z-order within one
// parent. Ties on both keys keep their collection order.
func (ld *layerData) prepareItem2Ds() {
	for i := range ld.item2Ds {
		e := &ld.item2Ds[i]
		common.Mul4(e.Item.MVP[:], ld.camera.ViewProjection[:], e.Item.GlobalTransform[:])

		anchor := &e.Item.Node
		if e.Item.Parent != nil {
			anchor = e.Item.Parent
		}
		e.ParentDistance = common.Dot3(common.Sub3(anchor.GlobalPosition(), ld.cameraPosition), ld.cameraDirection)
	}

	sort.SliceStable(ld.item2Ds, func(i, j int) bool {
		return ld.item2Ds[i].ParentDistance > ld.item2Ds[j].ParentDistance
	})
	for start := 0; start < len(ld.item2Ds); {
		end := start + 1
		for end < len(ld.item2Ds) && ld.item2Ds[end].Item.Parent == ld.item2Ds[start].Item.Parent {
			end++
		}
		run := ld.item2Ds[start:end]
		sort.SliceStable(run, func(i, j int) bool {
			return run[i].Item.ZOrder < run[j].Item.ZOrder
		})
		start = end
	}
}
