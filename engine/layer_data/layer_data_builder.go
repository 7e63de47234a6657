package layer_data

import (
	"github.com/Carmen-Shannon/lumen-go/engine/buffer_manager"
	"github.com/Carmen-Shannon/lumen-go/engine/reflection_map"
	"github.com/Carmen-Shannon/lumen-go/engine/shadow_map"
)

// LayerDataBuilderOption is a function that configures a LayerData instance
// during construction.
type LayerDataBuilderOption func(*layerData)

// WithBufferManager is an option builder that attaches a buffer manager for
// GPU resource loading. Without one the layer prepares headless: all lists
// and keys are derived but no GPU resources are touched.
//
// Parameters:
//   - bm: the buffer manager
//
// Returns:
//   - LayerDataBuilderOption: a function that applies the buffer manager option
func WithBufferManager(bm buffer_manager.BufferManager) LayerDataBuilderOption {
	return func(ld *layerData) {
		ld.bufMan = bm
	}
}

// WithMaxUniformBufferRange is an option builder that sets the device's
// minimum guaranteed uniform buffer range in bytes. Ranges below the reduced
// light threshold lower the per-frame light cap.
//
// Parameters:
//   - bytes: the uniform buffer range
//
// Returns:
//   - LayerDataBuilderOption: a function that applies the range option
func WithMaxUniformBufferRange(bytes uint64) LayerDataBuilderOption {
	return func(ld *layerData) {
		ld.maxUniformRange = bytes
	}
}

// WithShadowMapManager is an option builder that supplies a shadow map
// manager, overriding the default one.
//
// Parameters:
//   - m: the shadow map manager
//
// Returns:
//   - LayerDataBuilderOption: a function that applies the manager option
func WithShadowMapManager(m shadow_map.ShadowMapManager) LayerDataBuilderOption {
	return func(ld *layerData) {
		ld.shadows = m
	}
}

// WithReflectionMapManager is an option builder that supplies a reflection
// map manager, overriding the default one.
//
// Parameters:
//   - m: the reflection map manager
//
// Returns:
//   - LayerDataBuilderOption: a function that applies the manager option
func WithReflectionMapManager(m reflection_map.ReflectionMapManager) LayerDataBuilderOption {
	return func(ld *layerData) {
		ld.refls = m
	}
}
