package scene_graph

import (
	"github.com/Carmen-Shannon/lumen-go/engine/instancing"
	"github.com/Carmen-Shannon/lumen-go/engine/material"
	"github.com/Carmen-Shannon/lumen-go/engine/mesh"
)

// MaxMorphTargets is the number of morph target weights carried per model.
const MaxMorphTargets = 8

// MorphNormalTargets is how many of the leading morph targets may carry
// normals.
const MorphNormalTargets = 4

// MorphTangentTargets is how many of the leading morph targets may carry
// tangents and binormals.
const MorphTangentTargets = 2

// Model is a renderable mesh instance node. One renderable is produced per
// mesh subset during preparation; Materials pair with subsets by index, and
// the last material repeats when the mesh has more subsets than materials.
type Model struct {
	Node

	// Mesh is the geometry, shared between models.
	Mesh *mesh.Mesh
	// Materials pair with mesh subsets by index.
	Materials []*material.DefaultMaterial

	// Skeleton drives skinning when set.
	Skeleton *Skeleton
	// Skin holds the resolved joint data when skinning.
	Skin *Skin
	// MorphWeights are blend weights; entries past MaxMorphTargets are
	// ignored.
	MorphWeights []float32

	// Instancing replaces the single node transform with a table of per
	// instance transforms when set.
	Instancing *instancing.Table
	// InstancingLodMin and InstancingLodMax bound the camera distance range
	// in which instances stay visible; a negative max means unbounded.
	InstancingLodMin, InstancingLodMax float32

	// CastsShadows includes the model in shadow map passes.
	CastsShadows bool
	// ReceivesShadows lets shadow maps darken the model.
	ReceivesShadows bool
	// CastsReflections includes the model in reflection probe passes.
	CastsReflections bool
	// ReceivesReflections lets reflection probes light the model.
	ReceivesReflections bool

	// DepthBias is added to the camera distance when sorting renderables.
	DepthBias float32
	// LodBias scales detail distances; values above 1 prefer finer levels.
	LodBias float32

	// Pickable opts the model into picking, building a spatial index over its
	// mesh during preparation even when layer-wide picking is off.
	Pickable bool

	// UsedInBakedLighting marks the model as a lightmap contributor.
	UsedInBakedLighting bool
	// Lightmapped marks the model as sampling a baked lightmap.
	Lightmapped bool
}

// NewModel creates a model node around a mesh.
//
// Parameters:
//   - name: diagnostic identifier
//   - m: the geometry, may be nil and assigned later
//
// Returns:
//   - *Model: the new model node
func NewModel(name string, m *mesh.Mesh) *Model {
	model := &Model{
		Mesh:                m,
		ReceivesShadows:     true,
		CastsShadows:        true,
		ReceivesReflections: true,
		LodBias:             1,
		InstancingLodMax:    -1,
	}
	model.initNode(name, NodeTypeModel, model)
	return model
}

// MaterialForSubset returns the material paired with a subset index, reusing
// the last material when there are fewer materials than subsets.
//
// Parameters:
//   - index: the subset index
//
// Returns:
//   - *material.DefaultMaterial: the paired material, nil if the model has none
func (m *Model) MaterialForSubset(index int) *material.DefaultMaterial {
	if len(m.Materials) == 0 {
		return nil
	}
	if index >= len(m.Materials) {
		index = len(m.Materials) - 1
	}
	return m.Materials[index]
}

// ClampedMorphWeights returns the morph weights limited to MaxMorphTargets
// entries, clamped to [0, 1].
//
// Returns:
//   - []float32: the clamped weights (a copy)
func (m *Model) ClampedMorphWeights() []float32 {
	count := len(m.MorphWeights)
	if count > MaxMorphTargets {
		count = MaxMorphTargets
	}
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		w := m.MorphWeights[i]
		if w < 0 {
			w = 0
		} else if w > 1 {
			w = 1
		}
		out[i] = w
	}
	return out
}
