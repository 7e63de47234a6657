package material

import "github.com/Carmen-Shannon/lumen-go/common"

// Image is one texture slot of a material: a texture reference plus the UV
// mapping applied when sampling it. A nil Image means the slot is unused.
type Image struct {
	// Texture is the sampled texture; an image with a nil texture is treated
	// as disabled.
	Texture *Texture
	// UVTransform maps mesh UVs into the image, column-major. Identity when
	// untouched by SetUVTransform.
	UVTransform [16]float32
	// HasTransform is set when UVTransform differs from identity.
	HasTransform bool
	// IndexUV selects which UV channel the image samples (0 or 1).
	IndexUV int
	// FlipV mirrors the V coordinate at sample time.
	FlipV bool
}

// NewImage creates an image sampling the given texture with an identity UV
// transform.
//
// Parameters:
//   - tex: the texture to sample
//
// Returns:
//   - *Image: the new image
func NewImage(tex *Texture) *Image {
	img := &Image{Texture: tex}
	common.Identity(img.UVTransform[:])
	return img
}

// Enabled reports whether the image contributes to shading. Images without a
// texture are skipped during preparation and excluded from the variant key.
//
// Returns:
//   - bool: true if the image has a texture
func (img *Image) Enabled() bool {
	return img != nil && img.Texture != nil
}

// SetUVTransform builds the UV mapping from scale, pivot and rotation, in
// that application order.
//
// Parameters:
//   - scaleU, scaleV: UV scale factors
//   - pivotU, pivotV: UV translation
//   - rotation: rotation in radians around the UV origin
func (img *Image) SetUVTransform(scaleU, scaleV, pivotU, pivotV, rotation float32) {
	var rot, scale [16]float32
	common.Identity(scale[:])
	scale[0] = scaleU
	scale[5] = scaleV
	common.BuildModelMatrix(rot[:], pivotU, pivotV, 0, 0, 0, rotation, 1, 1, 1)
	common.Mul4(img.UVTransform[:], rot[:], scale[:])
	img.HasTransform = scaleU != 1 || scaleV != 1 || pivotU != 0 || pivotV != 0 || rotation != 0
}

// ResolveChannel returns the component to sample for a single-channel input,
// falling back to red when the backing texture's format does not store the
// requested component.
//
// Parameters:
//   - requested: the component the material asks for
//
// Returns:
//   - Channel: the component shaders should sample
func (img *Image) ResolveChannel(requested Channel) Channel {
	if img == nil || img.Texture == nil {
		return requested
	}
	if !img.Texture.Format.HasChannel(requested) {
		return ChannelR
	}
	return requested
}
