package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/lumen-go/engine/layer_data"
	"github.com/Carmen-Shannon/lumen-go/engine/light_mapper"
	"github.com/Carmen-Shannon/lumen-go/engine/profiler"
	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
	"github.com/Carmen-Shannon/lumen-go/engine/window"
)

// layerEntry pairs a layer with its frame preparation state.
type layerEntry struct {
	layer *scene_graph.Layer
	data  layer_data.LayerData
}

// engine implements the Engine interface.
// Coordinates the tick, preparation, and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	// viewportWidth/Height are the headless fallback dimensions used when no
	// window is attached.
	viewportWidth, viewportHeight int

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	frameCallback  func(deltaTime float32)

	mapper light_mapper.LightMapper

	mu     sync.RWMutex
	layers map[int]*layerEntry

	frameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point. It owns the frame lifecycle: ticking game
// logic at a fixed rate and preparing every registered layer for rendering
// each frame. A renderer (out of scope here) consumes the prepared layer data
// through LayerData.
type Engine interface {
	// Window returns the underlying window, nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic, input processing, and animation updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving
	//     the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameCallback registers the function called after each frame's layer
	// preparation. A renderer hooks in here to consume the prepared lists.
	//
	// Parameters:
	//   - callback: function to call each frame, receiving the delta time in
	//     seconds
	SetFrameCallback(callback func(deltaTime float32))

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the frame loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// AddLayer registers a layer at the given z-index key and creates its
	// preparation state. Layers are prepared in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining preparation order (lower first)
	//   - l: the layer to register
	//   - options: layer data configuration (buffer manager, uniform range)
	AddLayer(key int, l *scene_graph.Layer, options ...layer_data.LayerDataBuilderOption)

	// RemoveLayer removes the layer at the given z-index key and releases its
	// preparation state.
	//
	// Parameters:
	//   - key: the z-index of the layer to remove
	RemoveLayer(key int)

	// Layer retrieves the layer registered at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the layer to retrieve
	//
	// Returns:
	//   - *scene_graph.Layer: the layer at the key, or nil if not found
	Layer(key int) *scene_graph.Layer

	// LayerData retrieves the preparation state of the layer at the given
	// z-index key.
	//
	// Parameters:
	//   - key: the z-index of the layer
	//
	// Returns:
	//   - layer_data.LayerData: the layer's preparation state, or nil
	LayerData(key int) layer_data.LayerData

	// PrepareFrame resets and prepares every registered layer once, in
	// ascending key order, and returns the per-layer results. The frame loop
	// calls this every frame; headless hosts and tests call it directly.
	//
	// Returns:
	//   - map[int]layer_data.PreparationResult: results keyed by layer z-index
	PrepareFrame() map[int]layer_data.PreparationResult

	// Run starts the main engine loop (blocks until the window closes or Quit
	// is called). When lightmap baking was requested it prepares one frame,
	// reports the bake set, and returns.
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		layers:          make(map[int]*layerEntry),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		viewportWidth:   1280,
		viewportHeight:  720,
	}

	for _, opt := range options {
		opt(e)
	}
	if e.mapper == nil {
		e.mapper = light_mapper.NewLightMapper()
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	if e.mapper.Enabled() {
		e.bakeAndReport()
		return
	}

	e.running = true
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
	e.releaseLayers()
}

// bakeAndReport prepares one frame, gathers the bake-enabled models from
// every layer, and reports them. The process is expected to exit afterwards.
func (e *engine) bakeAndReport() {
	e.PrepareFrame()
	e.mu.RLock()
	for _, entry := range e.layers {
		e.mapper.CollectLayer(entry.data)
	}
	e.mu.RUnlock()
	e.mapper.Report()
	e.releaseLayers()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick, frame, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleTick()
	go e.handleFrames()
	go e.handleQuit()
}

// handleTick runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic
// rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleTick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleFrames runs the uncapped (or frame-limited) preparation loop in its
// own goroutine. Each iteration prepares every layer and fires the frame
// callback. Recovers from panics to avoid crashing the process and signals
// quit on recovery.
func (e *engine) handleFrames() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("frame goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastFrame := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastFrame).Seconds())
			lastFrame = now

			if e.profilingEnabled {
				stop := e.profiler.TimePhase("prepare")
				e.PrepareFrame()
				stop()
			} else {
				e.PrepareFrame()
			}

			if e.frameCallback != nil {
				e.frameCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			if e.frameLimit > 0 {
				elapsed := time.Since(lastFrame)
				if remaining := e.frameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the
// WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

func (e *engine) PrepareFrame() map[int]layer_data.PreparationResult {
	width, height := e.viewport()

	e.mu.RLock()
	keys := make([]int, 0, len(e.layers))
	for k := range e.layers {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	results := make(map[int]layer_data.PreparationResult, len(keys))
	for _, k := range keys {
		entry := e.layers[k]
		entry.data.ResetForFrame()
		results[k] = entry.data.PrepareForRender(width, height)
	}
	e.mu.RUnlock()
	return results
}

// viewport returns the frame dimensions: the window framebuffer when one is
// attached, the configured headless dimensions otherwise.
func (e *engine) viewport() (float32, float32) {
	if e.window != nil {
		return float32(e.window.Width()), float32(e.window.Height())
	}
	return float32(e.viewportWidth), float32(e.viewportHeight)
}

func (e *engine) releaseLayers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range e.layers {
		entry.data.Release()
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Non-blocking send; if the channel holds a pending update, replace
		// it.
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetFrameCallback registers the function called after each frame's
// preparation.
func (e *engine) SetFrameCallback(callback func(deltaTime float32)) {
	e.frameCallback = callback
}

// SetFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the frame loop.
func (e *engine) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddLayer(key int, l *scene_graph.Layer, options ...layer_data.LayerDataBuilderOption) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.layers[key] = &layerEntry{
		layer: l,
		data:  layer_data.NewLayerData(l, options...),
	}
}

func (e *engine) RemoveLayer(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.layers[key]; ok {
		entry.data.Release()
		delete(e.layers, key)
	}
}

func (e *engine) Layer(key int) *scene_graph.Layer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if entry, ok := e.layers[key]; ok {
		return entry.layer
	}
	return nil
}

func (e *engine) LayerData(key int) layer_data.LayerData {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if entry, ok := e.layers[key]; ok {
		return entry.data
	}
	return nil
}
