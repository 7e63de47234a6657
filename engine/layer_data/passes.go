package layer_data

import (
	"github.com/Carmen-Shannon/lumen-go/engine/reflection_map"
	"github.com/Carmen-Shannon/lumen-go/engine/shadow_map"
)

// PassType names one stage of the frame in execution order.
type PassType uint8

const (
	// PassDepth renders the scene depth for later passes to sample.
	PassDepth PassType = iota
	// PassSSAO computes screen-space ambient occlusion from the depth pass.
	PassSSAO
	// PassShadow renders every shadow map.
	PassShadow
	// PassReflection captures reflection probe cubemaps.
	PassReflection
	// PassZPrePass pre-writes depth for materials that requested it.
	PassZPrePass
	// PassScreenTexture renders the opaque scene into a texture that screen
	// reading materials sample.
	PassScreenTexture
	// PassMain renders the layer's color output.
	PassMain
)

// String returns the pass name for diagnostics.
func (t PassType) String() string {
	switch t {
	case PassDepth:
		return "depth"
	case PassSSAO:
		return "ssao"
	case PassShadow:
		return "shadow"
	case PassReflection:
		return "reflection"
	case PassZPrePass:
		return "z-prepass"
	case PassScreenTexture:
		return "screen-texture"
	case PassMain:
		return "main"
	default:
		return "unknown"
	}
}

// Pass is one scheduled stage of the frame. The renderer executes the pass
// list in order; preparation only includes passes whose inputs exist.
type Pass struct {
	// Type is the stage.
	Type PassType
	// ShadowEntries are the maps a shadow pass renders.
	ShadowEntries []*shadow_map.Entry
	// ReflectionEntries are the cubemaps a reflection pass captures.
	ReflectionEntries []*reflection_map.Entry
}
