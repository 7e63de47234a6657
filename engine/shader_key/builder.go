package shader_key

import (
	"github.com/Carmen-Shannon/lumen-go/engine/material"
	"github.com/Carmen-Shannon/lumen-go/engine/mesh"
)

// Features carries the per-frame inputs to key construction that do not live
// on the material: the mesh input mask and the resolved light list.
type Features struct {
	// Attributes is the vertex input mask of the geometry being shaded.
	Attributes mesh.VertexAttribute
	// IBLProbe is set when an environment probe contributes lighting.
	IBLProbe bool
	// Lights are the per-light flags in final light list order. Entries past
	// KeyMaxLights are ignored.
	Lights []LightFlags
}

// Build packs a material plus frame features into a variant key. Image slots
// are recorded only when their image is enabled, and single-channel slots get
// their channel selector resolved through the texture format fallback.
//
// Parameters:
//   - mat: the material being shaded
//   - feat: the frame features
//
// Returns:
//   - Key: the packed variant key
func Build(mat *material.DefaultMaterial, feat Features) Key {
	var k Key

	attrs := feat.Attributes
	// Skinning needs joint indices and weights together; a mesh carrying only
	// one of them cannot be skinned, so neither bit reaches the key.
	if !attrs.Has(mesh.AttrJoint | mesh.AttrWeight) {
		attrs &^= mesh.AttrJoint | mesh.AttrWeight
	}

	lit := mat.Lighting == material.FragmentLighting
	k.SetLightingEnabled(lit && len(feat.Lights) > 0)
	k.SetIBLProbeEnabled(lit && feat.IBLProbe)
	k.SetSpecularEnabled(mat.SpecularEnabled)
	k.SetFresnelEnabled(mat.FresnelEnabled)
	k.SetVertexColorsEnabled(mat.VertexColorsEnabled && attrs.Has(mesh.AttrColor))
	k.SetSpecularModel(mat.SpecularModel)
	k.SetVertexAttributes(attrs)
	k.SetAlphaMode(mat.AlphaMode)

	for slot := material.ImageSlot(0); slot < material.ImageSlotCount; slot++ {
		img := mat.Maps[slot]
		if !img.Enabled() {
			continue
		}
		k.SetImageEnabled(slot, true)
		if slot >= material.FirstSingleChannelSlot && slot <= material.SlotTranslucency {
			k.SetTextureChannel(slot, mat.ResolvedChannel(slot))
		}
	}

	count := len(feat.Lights)
	if count > KeyMaxLights {
		count = KeyMaxLights
	}
	if lit {
		k.SetLightCount(count)
		for i := 0; i < count; i++ {
			k.SetLightAt(i, feat.Lights[i])
		}
	}

	return k
}
