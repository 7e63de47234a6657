// package material contains the surface description consumed by the shader
// variant key and the per-frame preparation pass: materials, the images they
// sample, and the textures backing those images.
package material

import (
	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Channel selects one component of a texture for single-channel material
// inputs such as roughness or opacity.
type Channel uint8

const (
	// ChannelR selects the red component.
	ChannelR Channel = iota
	// ChannelG selects the green component.
	ChannelG
	// ChannelB selects the blue component.
	ChannelB
	// ChannelA selects the alpha component.
	ChannelA
)

// TextureFormat describes the pixel layout of a texture. Only the formats the
// preparation pass needs to reason about are listed; the zero value is RGBA8.
type TextureFormat uint8

const (
	// FormatRGBA8 is 8-bit RGBA.
	FormatRGBA8 TextureFormat = iota
	// FormatRGBA16F is 16-bit float RGBA.
	FormatRGBA16F
	// FormatRGBA32F is 32-bit float RGBA.
	FormatRGBA32F
	// FormatRGB8 is 8-bit RGB with no alpha.
	FormatRGB8
	// FormatRG8 is 8-bit red-green.
	FormatRG8
	// FormatR8 is single-channel 8-bit red.
	FormatR8
	// FormatR16F is single-channel 16-bit float red.
	FormatR16F
	// FormatR32F is single-channel 32-bit float red.
	FormatR32F
	// FormatRedOrAlpha8 is a legacy single-channel format where the one
	// component is addressed as red on modern APIs.
	FormatRedOrAlpha8
)

// HasChannel reports whether the format stores the given component. Sampling
// a missing component is undefined in generated shaders, so callers fall back
// to red when this returns false.
//
// Parameters:
//   - ch: the component to query
//
// Returns:
//   - bool: true if the format stores the component
func (f TextureFormat) HasChannel(ch Channel) bool {
	switch f {
	case FormatR8, FormatR16F, FormatR32F, FormatRedOrAlpha8:
		return ch == ChannelR
	case FormatRG8:
		return ch == ChannelR || ch == ChannelG
	case FormatRGB8:
		return ch != ChannelA
	default:
		return true
	}
}

// Texture is a GPU-resident image referenced by material images. The View is
// nil until the buffer manager has uploaded the source data.
type Texture struct {
	// Name identifies the texture for diagnostics and cache keys.
	Name string
	// Format is the pixel layout, used for channel fallback decisions.
	Format TextureFormat
	// Width and Height are the dimensions in pixels.
	Width, Height uint32
	// Source is the pending pixel data, nil once uploaded.
	Source *common.TextureSource
	// Handle is the GPU texture, nil until uploaded.
	Handle *wgpu.Texture
	// View is the GPU texture view, nil until uploaded.
	View *wgpu.TextureView
}
