package scene_graph

import "github.com/Carmen-Shannon/lumen-go/engine/material"

// AntialiasingMode selects the layer's antialiasing strategy.
type AntialiasingMode uint8

const (
	// AANone disables antialiasing.
	AANone AntialiasingMode = iota
	// AAProgressive accumulates jittered frames while the scene is still.
	AAProgressive
	// AATemporal blends a jittered history every frame.
	AATemporal
)

// Layer is the root node of a renderable scene. It carries the environment
// and post-processing configuration the preparation pass reads; the per-frame
// working state lives in the layer data, not here.
type Layer struct {
	Node

	// ExplicitCamera renders the layer through this camera when it is active;
	// nil or inactive falls back to the first active camera in traversal
	// order.
	ExplicitCamera *Camera

	// AAMode selects the antialiasing strategy.
	AAMode AntialiasingMode
	// AAQuality is the jitter sample count for progressive antialiasing
	// (2, 4 or 8).
	AAQuality int
	// TemporalAAStrength scales the temporal jitter offsets.
	TemporalAAStrength float32

	// LightProbe is the environment map for image-based lighting.
	LightProbe *material.Texture
	// ProbeExposure scales the probe contribution.
	ProbeExposure float32
	// ProbeHorizon darkens lighting from below the probe horizon.
	ProbeHorizon float32

	// AOStrength enables screen-space ambient occlusion when above zero.
	AOStrength float32
	// AODistance is the occlusion sampling radius.
	AODistance float32
	// AOSoftness blurs the occlusion result.
	AOSoftness float32
	// AOSampleRate is the occlusion sample quality.
	AOSampleRate int
	// AODither offsets occlusion samples per pixel.
	AODither bool

	// PickingEnabled treats every model in the layer as pickable, so each
	// gets a mesh spatial index during preparation.
	PickingEnabled bool

	// DepthTestDisabled turns off depth testing for the layer.
	DepthTestDisabled bool
	// DepthPrePassDisabled skips the z-prepass even when renderables request
	// one.
	DepthPrePassDisabled bool

	// SSAAEnabled renders the layer supersampled.
	SSAAEnabled bool
	// SSAAMultiplier is the supersampling factor applied to texture
	// dimensions.
	SSAAMultiplier float32
}

// NewLayer creates a layer with rendering defaults.
//
// Parameters:
//   - name: diagnostic identifier
//
// Returns:
//   - *Layer: the new layer node
func NewLayer(name string) *Layer {
	l := &Layer{
		AAQuality:          4,
		TemporalAAStrength: 0.3,
		ProbeExposure:      1,
		AODistance:         5,
		AOSampleRate:       2,
		SSAAMultiplier:     1.5,
	}
	l.initNode(name, NodeTypeLayer, l)
	return l
}
