package engine

import (
	"time"

	"github.com/Carmen-Shannon/lumen-go/engine/layer_data"
	"github.com/Carmen-Shannon/lumen-go/engine/light_mapper"
	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
	"github.com/Carmen-Shannon/lumen-go/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the
// engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets a custom configured window for the engine to use rather
// than running headless.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithViewport sets the headless frame dimensions used when no window is
// attached.
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithViewport(width, height int) EngineBuilderOption {
	return func(e *engine) {
		e.viewportWidth = width
		e.viewportHeight = height
	}
}

// WithLayer registers a layer at the given z-index key during engine
// construction. Layers are prepared in ascending key order each frame.
//
// Parameters:
//   - key: the z-index determining preparation order (lower first)
//   - l: the layer to register
//   - options: layer data configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLayer(key int, l *scene_graph.Layer, options ...layer_data.LayerDataBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.layers[key] = &layerEntry{
			layer: l,
			data:  layer_data.NewLayerData(l, options...),
		}
	}
}

// WithFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the frame loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Second / time.Duration(fps)
	}
}

// WithLightMapper sets a custom light mapper, overriding the default one
// built from the process arguments and environment.
//
// Parameters:
//   - lm: the light mapper
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLightMapper(lm light_mapper.LightMapper) EngineBuilderOption {
	return func(e *engine) {
		e.mapper = lm
	}
}
