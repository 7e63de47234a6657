package material

// Lighting selects how a material responds to scene lights.
type Lighting uint8

const (
	// NoLighting renders the material unlit.
	NoLighting Lighting = iota
	// FragmentLighting evaluates lights per fragment.
	FragmentLighting
)

// BlendMode selects the framebuffer blend operation. Anything other than
// SourceOver forces the material into the transparent pass.
type BlendMode uint8

const (
	// BlendSourceOver is standard alpha blending.
	BlendSourceOver BlendMode = iota
	// BlendScreen brightens the destination.
	BlendScreen
	// BlendMultiply darkens the destination.
	BlendMultiply
)

// AlphaMode selects how the base color alpha is interpreted.
type AlphaMode uint8

const (
	// AlphaDefault leaves the decision to the rest of the material state.
	AlphaDefault AlphaMode = iota
	// AlphaMask discards fragments below the cutoff.
	AlphaMask
	// AlphaBlend blends fragments by their alpha.
	AlphaBlend
	// AlphaOpaque ignores alpha entirely.
	AlphaOpaque
)

// SpecularModel selects the specular lighting equation.
type SpecularModel uint8

const (
	// SpecularDefault is the standard Blinn-Phong style term.
	SpecularDefault SpecularModel = iota
	// SpecularKGGX is the GGX microfacet term.
	SpecularKGGX
)

// DepthDrawMode selects when a material writes depth.
type DepthDrawMode uint8

const (
	// DepthDrawOpaqueOnly writes depth only when the renderable lands in the
	// opaque pass.
	DepthDrawOpaqueOnly DepthDrawMode = iota
	// DepthDrawAlways writes depth in the main pass regardless of pass.
	DepthDrawAlways
	// DepthDrawNever never writes depth.
	DepthDrawNever
	// DepthDrawOpaquePrePass writes depth in a separate z-prepass.
	DepthDrawOpaquePrePass
)

// ImageSlot names one texture input of a material. The slot order is fixed
// because the shader variant key packs per-slot bits by this index.
type ImageSlot int

const (
	// SlotBaseColor is the albedo input.
	SlotBaseColor ImageSlot = iota
	// SlotNormal is the tangent-space normal map.
	SlotNormal
	// SlotSpecular is the specular reflectivity map.
	SlotSpecular
	// SlotEmissive is the self-illumination map.
	SlotEmissive
	// SlotBump is the height-derived bump map.
	SlotBump
	// SlotOpacity is the single-channel opacity map.
	SlotOpacity
	// SlotRoughness is the single-channel roughness map.
	SlotRoughness
	// SlotMetalness is the single-channel metalness map.
	SlotMetalness
	// SlotOcclusion is the single-channel ambient occlusion map.
	SlotOcclusion
	// SlotHeight is the single-channel parallax height map.
	SlotHeight
	// SlotTranslucency is the single-channel translucency map.
	SlotTranslucency
	// ImageSlotCount is the number of slots.
	ImageSlotCount
)

// FirstSingleChannelSlot is the first slot whose image is sampled as a single
// component; every slot from here through SlotTranslucency carries a channel
// selector in the variant key.
const FirstSingleChannelSlot = SlotOpacity

// SingleChannelSlotCount is the number of single-channel slots.
const SingleChannelSlotCount = int(SlotTranslucency-FirstSingleChannelSlot) + 1

// DefaultMaterial is the standard surface description. Plain struct; the
// preparation pass reads it every frame, so mutations take effect on the next
// prepared frame.
type DefaultMaterial struct {
	// Name identifies the material for diagnostics.
	Name string
	// Lighting selects lit versus unlit shading.
	Lighting Lighting
	// BlendMode selects the framebuffer blend operation.
	BlendMode BlendMode
	// AlphaMode selects base color alpha interpretation.
	AlphaMode AlphaMode
	// AlphaCutoff is the mask threshold used when AlphaMode is AlphaMask.
	AlphaCutoff float32
	// SpecularModel selects the specular equation.
	SpecularModel SpecularModel
	// DepthDrawMode selects when the material writes depth.
	DepthDrawMode DepthDrawMode
	// SpecularEnabled turns the specular term on.
	SpecularEnabled bool
	// FresnelEnabled turns Fresnel scaling of the specular term on.
	FresnelEnabled bool
	// VertexColorsEnabled multiplies shading by per-vertex colors.
	VertexColorsEnabled bool
	// BaseColor is the constant albedo factor (RGBA).
	BaseColor [4]float32
	// EmissiveFactor scales the emissive contribution.
	EmissiveFactor [3]float32
	// Opacity is the constant opacity factor, multiplied with node opacity.
	Opacity float32
	// IOR is the index of refraction used by the Fresnel term.
	IOR float32
	// Maps are the texture inputs by slot; nil entries are unused.
	Maps [ImageSlotCount]*Image
	// Channels selects the sampled component for single-channel slots,
	// indexed by slot. Entries outside the single-channel range are ignored.
	Channels [ImageSlotCount]Channel
	// Dirty is set on mutation and cleared by the preparation pass.
	Dirty bool
}

// NewDefaultMaterial creates a material with opaque white defaults.
//
// Parameters:
//   - name: diagnostic identifier
//
// Returns:
//   - *DefaultMaterial: the new material
func NewDefaultMaterial(name string) *DefaultMaterial {
	return &DefaultMaterial{
		Name:        name,
		Lighting:    FragmentLighting,
		BaseColor:   [4]float32{1, 1, 1, 1},
		Opacity:     1,
		IOR:         1.45,
		AlphaCutoff: 0.5,
		Dirty:       true,
	}
}

// Map returns the image in a slot, nil when unused.
//
// Parameters:
//   - slot: the slot to read
//
// Returns:
//   - *Image: the image, or nil
func (m *DefaultMaterial) Map(slot ImageSlot) *Image {
	return m.Maps[slot]
}

// SetMap assigns an image to a slot and marks the material dirty.
//
// Parameters:
//   - slot: the slot to assign
//   - img: the image, or nil to clear the slot
func (m *DefaultMaterial) SetMap(slot ImageSlot, img *Image) {
	m.Maps[slot] = img
	m.Dirty = true
}

// HasTransparency reports whether the material requires blending regardless
// of object opacity: a non-standard blend mode, an opacity map, or explicit
// alpha blending all force the transparent pass.
//
// Returns:
//   - bool: true if the material cannot render opaque
func (m *DefaultMaterial) HasTransparency() bool {
	return m.BlendMode != BlendSourceOver ||
		m.Maps[SlotOpacity].Enabled() ||
		m.AlphaMode == AlphaBlend
}

// ResolvedChannel returns the component shaders should sample for a
// single-channel slot, applying the red fallback when the slot's texture
// format lacks the requested component.
//
// Parameters:
//   - slot: the single-channel slot to resolve
//
// Returns:
//   - Channel: the component to sample
func (m *DefaultMaterial) ResolvedChannel(slot ImageSlot) Channel {
	return m.Maps[slot].ResolveChannel(m.Channels[slot])
}
