// package shader_key packs the state that selects a generated shader variant
// into a fixed-width bitfield. Two renderables with equal keys can share a
// pipeline; the key's ordering groups compatible renderables together when
// render lists are sorted.
package shader_key

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/lumen-go/engine/material"
	"github.com/Carmen-Shannon/lumen-go/engine/mesh"
)

// KeyMaxLights is the number of per-light flag groups the key can store.
const KeyMaxLights = 15

// Bit layout of the key. Fields are packed in ordering priority: when keys
// are compared, earlier fields dominate. Widths and offsets are fixed so keys
// are stable across runs and usable as map keys.
const (
	bitLighting     = 0
	bitIBLProbe     = 1
	bitSpecular     = 2
	bitFresnel      = 3
	bitVertexColors = 4

	offSpecularModel   = 5 // width 2
	widthSpecularModel = 2

	offVertexAttrs   = 7 // one bit per mesh.VertexAttribute
	widthVertexAttrs = 10

	offAlphaMode   = offVertexAttrs + widthVertexAttrs // width 2
	widthAlphaMode = 2

	offImageMaps = offAlphaMode + widthAlphaMode // width material.ImageSlotCount, one bit per slot

	offChannels   = offImageMaps + int(material.ImageSlotCount) // 2 bits per single-channel slot
	widthChannel  = 2
	offLightCount = offChannels + widthChannel*material.SingleChannelSlotCount

	widthLightCount = 4

	offLightFlags     = offLightCount + widthLightCount // 3 bits per light
	widthPerLight     = 3
	lightBitIsPoint   = 0
	lightBitIsSpot    = 1
	lightBitHasShadow = 2

	keyBitCount = offLightFlags + widthPerLight*KeyMaxLights
)

// Key is the packed shader variant descriptor. The zero value describes an
// unlit, untextured variant with no lights.
type Key [(keyBitCount + 31) / 32]uint32

func (k *Key) getBits(offset, width int) uint32 {
	word := offset / 32
	shift := offset % 32
	v := uint64(k[word]) >> shift
	if shift+width > 32 && word+1 < len(k) {
		v |= uint64(k[word+1]) << (32 - shift)
	}
	return uint32(v) & uint32(1<<width-1)
}

func (k *Key) setBits(offset, width int, value uint32) {
	word := offset / 32
	shift := offset % 32
	mask := uint64(1<<width - 1)
	v := uint64(value) & mask

	k[word] = k[word]&^uint32(mask<<shift) | uint32(v<<shift)&0xFFFFFFFF
	if shift+width > 32 && word+1 < len(k) {
		rem := 32 - shift
		k[word+1] = k[word+1]&^uint32(mask>>rem) | uint32(v>>rem)
	}
}

func (k *Key) getBool(bit int) bool {
	return k.getBits(bit, 1) != 0
}

func (k *Key) setBool(bit int, v bool) {
	if v {
		k.setBits(bit, 1, 1)
	} else {
		k.setBits(bit, 1, 0)
	}
}

// LightingEnabled reports whether the variant evaluates scene lights.
func (k *Key) LightingEnabled() bool { return k.getBool(bitLighting) }

// SetLightingEnabled sets whether the variant evaluates scene lights.
func (k *Key) SetLightingEnabled(v bool) { k.setBool(bitLighting, v) }

// IBLProbeEnabled reports whether image-based lighting is sampled.
func (k *Key) IBLProbeEnabled() bool { return k.getBool(bitIBLProbe) }

// SetIBLProbeEnabled sets whether image-based lighting is sampled.
func (k *Key) SetIBLProbeEnabled(v bool) { k.setBool(bitIBLProbe, v) }

// SpecularEnabled reports whether the specular term is evaluated.
func (k *Key) SpecularEnabled() bool { return k.getBool(bitSpecular) }

// SetSpecularEnabled sets whether the specular term is evaluated.
func (k *Key) SetSpecularEnabled(v bool) { k.setBool(bitSpecular, v) }

// FresnelEnabled reports whether Fresnel scaling is applied.
func (k *Key) FresnelEnabled() bool { return k.getBool(bitFresnel) }

// SetFresnelEnabled sets whether Fresnel scaling is applied.
func (k *Key) SetFresnelEnabled(v bool) { k.setBool(bitFresnel, v) }

// VertexColorsEnabled reports whether per-vertex colors modulate shading.
func (k *Key) VertexColorsEnabled() bool { return k.getBool(bitVertexColors) }

// SetVertexColorsEnabled sets whether per-vertex colors modulate shading.
func (k *Key) SetVertexColorsEnabled(v bool) { k.setBool(bitVertexColors, v) }

// SpecularModel returns the packed specular equation selector.
func (k *Key) SpecularModel() material.SpecularModel {
	return material.SpecularModel(k.getBits(offSpecularModel, widthSpecularModel))
}

// SetSpecularModel packs the specular equation selector.
func (k *Key) SetSpecularModel(m material.SpecularModel) {
	k.setBits(offSpecularModel, widthSpecularModel, uint32(m))
}

// VertexAttributes returns the packed mesh input mask.
func (k *Key) VertexAttributes() mesh.VertexAttribute {
	return mesh.VertexAttribute(k.getBits(offVertexAttrs, widthVertexAttrs))
}

// SetVertexAttributes packs the mesh input mask.
func (k *Key) SetVertexAttributes(attrs mesh.VertexAttribute) {
	k.setBits(offVertexAttrs, widthVertexAttrs, uint32(attrs))
}

// AlphaMode returns the packed alpha interpretation.
func (k *Key) AlphaMode() material.AlphaMode {
	return material.AlphaMode(k.getBits(offAlphaMode, widthAlphaMode))
}

// SetAlphaMode packs the alpha interpretation.
func (k *Key) SetAlphaMode(m material.AlphaMode) {
	k.setBits(offAlphaMode, widthAlphaMode, uint32(m))
}

// ImageEnabled reports whether a material image slot is active.
func (k *Key) ImageEnabled(slot material.ImageSlot) bool {
	return k.getBool(offImageMaps + int(slot))
}

// SetImageEnabled sets whether a material image slot is active.
func (k *Key) SetImageEnabled(slot material.ImageSlot, v bool) {
	k.setBool(offImageMaps+int(slot), v)
}

// TextureChannel returns the sampled component for a single-channel slot.
// Panics if the slot has no channel selector.
func (k *Key) TextureChannel(slot material.ImageSlot) material.Channel {
	return material.Channel(k.getBits(channelOffset(slot), widthChannel))
}

// SetTextureChannel packs the sampled component for a single-channel slot.
// Panics if the slot has no channel selector.
func (k *Key) SetTextureChannel(slot material.ImageSlot, ch material.Channel) {
	k.setBits(channelOffset(slot), widthChannel, uint32(ch))
}

func channelOffset(slot material.ImageSlot) int {
	idx := int(slot - material.FirstSingleChannelSlot)
	if idx < 0 || idx >= material.SingleChannelSlotCount {
		panic(fmt.Sprintf("shader_key: slot %d has no channel selector", slot))
	}
	return offChannels + idx*widthChannel
}

// LightCount returns the packed light count.
func (k *Key) LightCount() int {
	return int(k.getBits(offLightCount, widthLightCount))
}

// SetLightCount packs the light count. Panics if count exceeds KeyMaxLights.
func (k *Key) SetLightCount(count int) {
	if count < 0 || count > KeyMaxLights {
		panic(fmt.Sprintf("shader_key: light count %d out of range", count))
	}
	k.setBits(offLightCount, widthLightCount, uint32(count))
}

// LightFlags describes one light's contribution to the variant.
type LightFlags struct {
	// PointOrSpot is set for positional lights.
	PointOrSpot bool
	// Spot is set for spot lights (implies PointOrSpot).
	Spot bool
	// Shadow is set when the light casts shadows.
	Shadow bool
}

// LightAt returns the flags packed for light index i.
// Panics if i is out of range.
func (k *Key) LightAt(i int) LightFlags {
	bits := k.getBits(lightOffset(i), widthPerLight)
	return LightFlags{
		PointOrSpot: bits&(1<<lightBitIsPoint) != 0,
		Spot:        bits&(1<<lightBitIsSpot) != 0,
		Shadow:      bits&(1<<lightBitHasShadow) != 0,
	}
}

// SetLightAt packs the flags for light index i.
// Panics if i is out of range.
func (k *Key) SetLightAt(i int, f LightFlags) {
	var bits uint32
	if f.PointOrSpot {
		bits |= 1 << lightBitIsPoint
	}
	if f.Spot {
		bits |= 1 << lightBitIsSpot
	}
	if f.Shadow {
		bits |= 1 << lightBitHasShadow
	}
	k.setBits(lightOffset(i), widthPerLight, bits)
}

func lightOffset(i int) int {
	if i < 0 || i >= KeyMaxLights {
		panic(fmt.Sprintf("shader_key: light index %d out of range", i))
	}
	return offLightFlags + i*widthPerLight
}

// keyField is one comparable field of the key in ordering priority.
type keyField struct {
	name   string
	offset int
	width  int
}

var keyFields = buildKeyFields()

func buildKeyFields() []keyField {
	fields := []keyField{
		{"lighting", bitLighting, 1},
		{"ibl", bitIBLProbe, 1},
		{"specular", bitSpecular, 1},
		{"fresnel", bitFresnel, 1},
		{"vertexColors", bitVertexColors, 1},
		{"specularModel", offSpecularModel, widthSpecularModel},
		{"vertexAttrs", offVertexAttrs, widthVertexAttrs},
		{"alphaMode", offAlphaMode, widthAlphaMode},
	}
	for slot := material.ImageSlot(0); slot < material.ImageSlotCount; slot++ {
		fields = append(fields, keyField{fmt.Sprintf("image%d", slot), offImageMaps + int(slot), 1})
	}
	for i := 0; i < material.SingleChannelSlotCount; i++ {
		fields = append(fields, keyField{fmt.Sprintf("channel%d", i), offChannels + i*widthChannel, widthChannel})
	}
	fields = append(fields, keyField{"lightCount", offLightCount, widthLightCount})
	for i := 0; i < KeyMaxLights; i++ {
		fields = append(fields, keyField{fmt.Sprintf("light%d", i), offLightFlags + i*widthPerLight, widthPerLight})
	}
	return fields
}

// Less orders keys by comparing fields in priority order. The result is a
// strict weak ordering: for any two keys exactly one of a.Less(b), b.Less(a)
// or a == b holds.
//
// Parameters:
//   - o: the key to compare against
//
// Returns:
//   - bool: true if this key orders before o
func (k *Key) Less(o *Key) bool {
	for i := range keyFields {
		f := &keyFields[i]
		a := k.getBits(f.offset, f.width)
		b := o.getBits(f.offset, f.width)
		if a != b {
			return a < b
		}
	}
	return false
}

// String dumps the non-zero fields for diagnostics.
//
// Returns:
//   - string: a readable field dump
func (k *Key) String() string {
	var sb strings.Builder
	sb.WriteString("Key{")
	first := true
	for i := range keyFields {
		f := &keyFields[i]
		v := k.getBits(f.offset, f.width)
		if v == 0 {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%s=%d", f.name, v)
	}
	sb.WriteString("}")
	return sb.String()
}
