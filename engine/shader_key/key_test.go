package shader_key

import (
	"testing"

	"github.com/Carmen-Shannon/lumen-go/engine/material"
	"github.com/Carmen-Shannon/lumen-go/engine/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsAreIsolated(t *testing.T) {
	var k Key

	k.SetLightingEnabled(true)
	k.SetSpecularModel(material.SpecularKGGX)
	k.SetVertexAttributes(mesh.AttrPosition | mesh.AttrNormal | mesh.AttrUV0)
	k.SetAlphaMode(material.AlphaMask)
	k.SetImageEnabled(material.SlotBaseColor, true)
	k.SetImageEnabled(material.SlotRoughness, true)
	k.SetTextureChannel(material.SlotRoughness, material.ChannelG)
	k.SetLightCount(3)
	k.SetLightAt(2, LightFlags{PointOrSpot: true, Spot: true, Shadow: true})

	assert.True(t, k.LightingEnabled())
	assert.False(t, k.IBLProbeEnabled())
	assert.Equal(t, material.SpecularKGGX, k.SpecularModel())
	assert.Equal(t, mesh.AttrPosition|mesh.AttrNormal|mesh.AttrUV0, k.VertexAttributes())
	assert.Equal(t, material.AlphaMask, k.AlphaMode())
	assert.True(t, k.ImageEnabled(material.SlotBaseColor))
	assert.True(t, k.ImageEnabled(material.SlotRoughness))
	assert.False(t, k.ImageEnabled(material.SlotNormal))
	assert.Equal(t, material.ChannelG, k.TextureChannel(material.SlotRoughness))
	assert.Equal(t, material.ChannelR, k.TextureChannel(material.SlotOpacity))
	assert.Equal(t, 3, k.LightCount())
	assert.Equal(t, LightFlags{PointOrSpot: true, Spot: true, Shadow: true}, k.LightAt(2))
	assert.Equal(t, LightFlags{}, k.LightAt(0))

	// Clearing one field leaves the others intact.
	k.SetImageEnabled(material.SlotRoughness, false)
	assert.False(t, k.ImageEnabled(material.SlotRoughness))
	assert.True(t, k.ImageEnabled(material.SlotBaseColor))
	assert.Equal(t, 3, k.LightCount())
}

func TestWordSpanningFields(t *testing.T) {
	// The channel selectors straddle the 32-bit word boundary; exercise every
	// selector with every value.
	for slot := material.FirstSingleChannelSlot; slot <= material.SlotTranslucency; slot++ {
		for ch := material.ChannelR; ch <= material.ChannelA; ch++ {
			var k Key
			k.SetTextureChannel(slot, ch)
			assert.Equal(t, ch, k.TextureChannel(slot))
			// No bleed into neighbors.
			for other := material.FirstSingleChannelSlot; other <= material.SlotTranslucency; other++ {
				if other != slot {
					assert.Equal(t, material.ChannelR, k.TextureChannel(other))
				}
			}
		}
	}
}

func TestLessIsStrictWeakOrdering(t *testing.T) {
	keys := make([]Key, 0, 8)

	var a Key
	keys = append(keys, a)

	var b Key
	b.SetLightingEnabled(true)
	keys = append(keys, b)

	var c Key
	c.SetLightingEnabled(true)
	c.SetLightCount(2)
	keys = append(keys, c)

	var d Key
	d.SetAlphaMode(material.AlphaBlend)
	keys = append(keys, d)

	var e Key
	e.SetImageEnabled(material.SlotTranslucency, true)
	e.SetLightAt(14, LightFlags{Shadow: true})
	keys = append(keys, e)

	for i := range keys {
		ki := keys[i]
		assert.False(t, ki.Less(&ki), "irreflexive")
		for j := range keys {
			kj := keys[j]
			if ki == kj {
				assert.False(t, ki.Less(&kj))
				assert.False(t, kj.Less(&ki))
				continue
			}
			// Exactly one direction orders first.
			assert.NotEqual(t, ki.Less(&kj), kj.Less(&ki), "trichotomy for %v vs %v", ki, kj)
		}
	}

	// Priority: lighting dominates later fields.
	var litPlain, unlitBusy Key
	litPlain.SetLightingEnabled(true)
	unlitBusy.SetAlphaMode(material.AlphaBlend)
	unlitBusy.SetImageEnabled(material.SlotBaseColor, true)
	unlitBusy.SetLightCount(5)
	assert.True(t, unlitBusy.Less(&litPlain))
}

func TestBuildFromMaterial(t *testing.T) {
	mat := material.NewDefaultMaterial("test")
	mat.SpecularEnabled = true
	mat.VertexColorsEnabled = true
	mat.SetMap(material.SlotBaseColor, material.NewImage(&material.Texture{Format: material.FormatRGBA8}))
	mat.SetMap(material.SlotOpacity, material.NewImage(&material.Texture{Format: material.FormatR8}))
	mat.Channels[material.SlotOpacity] = material.ChannelA

	feat := Features{
		Attributes: mesh.AttrPosition | mesh.AttrNormal | mesh.AttrColor,
		IBLProbe:   true,
		Lights: []LightFlags{
			{},
			{PointOrSpot: true, Shadow: true},
		},
	}
	k := Build(mat, feat)

	assert.True(t, k.LightingEnabled())
	assert.True(t, k.IBLProbeEnabled())
	assert.True(t, k.SpecularEnabled())
	assert.True(t, k.VertexColorsEnabled())
	assert.True(t, k.ImageEnabled(material.SlotBaseColor))
	assert.True(t, k.ImageEnabled(material.SlotOpacity))
	// R8 has no alpha, so the requested alpha channel falls back to red.
	assert.Equal(t, material.ChannelR, k.TextureChannel(material.SlotOpacity))
	require.Equal(t, 2, k.LightCount())
	assert.Equal(t, LightFlags{PointOrSpot: true, Shadow: true}, k.LightAt(1))
}

func TestBuildUnlitMaterialIgnoresLights(t *testing.T) {
	mat := material.NewDefaultMaterial("unlit")
	mat.Lighting = material.NoLighting

	k := Build(mat, Features{Lights: []LightFlags{{}, {}}})
	assert.False(t, k.LightingEnabled())
	assert.Equal(t, 0, k.LightCount())
}

func TestBuildCapsLightCount(t *testing.T) {
	mat := material.NewDefaultMaterial("lit")
	lights := make([]LightFlags, KeyMaxLights+4)
	k := Build(mat, Features{Lights: lights})
	assert.Equal(t, KeyMaxLights, k.LightCount())
}

func TestSkinningAttributesRequireBoth(t *testing.T) {
	mat := material.NewDefaultMaterial("skinned")

	both := Build(mat, Features{Attributes: mesh.AttrPosition | mesh.AttrJoint | mesh.AttrWeight})
	assert.True(t, both.VertexAttributes().Has(mesh.AttrJoint|mesh.AttrWeight))

	// A joint stream without weights (or the reverse) cannot drive skinning.
	jointOnly := Build(mat, Features{Attributes: mesh.AttrPosition | mesh.AttrJoint})
	assert.Equal(t, mesh.AttrPosition, jointOnly.VertexAttributes())
	weightOnly := Build(mat, Features{Attributes: mesh.AttrPosition | mesh.AttrWeight})
	assert.Equal(t, mesh.AttrPosition, weightOnly.VertexAttributes())
}

func TestLightmapUVAttributeSurvivesPacking(t *testing.T) {
	var k Key
	k.SetVertexAttributes(mesh.AttrPosition | mesh.AttrLightmapUV)
	assert.Equal(t, mesh.AttrPosition|mesh.AttrLightmapUV, k.VertexAttributes())
	assert.Equal(t, material.AlphaDefault, k.AlphaMode())
}

func TestVertexColorsRequireAttribute(t *testing.T) {
	mat := material.NewDefaultMaterial("vc")
	mat.VertexColorsEnabled = true
	k := Build(mat, Features{Attributes: mesh.AttrPosition})
	assert.False(t, k.VertexColorsEnabled())
}

func TestStringListsSetFields(t *testing.T) {
	var k Key
	k.SetLightingEnabled(true)
	k.SetLightCount(2)
	s := k.String()
	assert.Contains(t, s, "lighting=1")
	assert.Contains(t, s, "lightCount=2")
	assert.NotContains(t, s, "fresnel")
}
