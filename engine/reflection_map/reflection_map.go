// package reflection_map tracks the cubemap entries reflection probes render
// into. The preparation pass creates an entry for every probe that either has
// assigned renderables or carries a pre-baked texture; the renderer later
// walks the entries to schedule capture passes.
package reflection_map

import (
	"sync"

	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultCubeSize is the cube face size used when a probe has no pre-baked
// texture to take dimensions from.
const DefaultCubeSize = 256

// Entry is one probe's reflection cubemap.
type Entry struct {
	// Probe is the owning probe.
	Probe *scene_graph.ReflectionProbe
	// Size is the cube face side length in pixels.
	Size uint32
	// Rendered is set once the probe has captured at least once; probes with
	// ProbeRefreshFirstFrame skip re-captures afterwards.
	Rendered bool
	// TimeSliceFace is the next face to render for time-sliced probes.
	TimeSliceFace int
	// Texture is the GPU cubemap, nil when running without a device or when
	// the probe brought its own baked texture.
	Texture *wgpu.Texture
	// View is the GPU texture view, nil under the same conditions.
	View *wgpu.TextureView
}

// ReflectionMapManager owns the reflection entries of one layer.
type ReflectionMapManager interface {
	// AddEntry ensures a probe has a reflection entry, reusing the existing
	// one across frames so capture state survives.
	//
	// Parameters:
	//   - p: the probe
	//
	// Returns:
	//   - *Entry: the probe's entry
	//   - error: error if texture creation fails
	AddEntry(p *scene_graph.ReflectionProbe) (*Entry, error)

	// EntryForProbe returns a probe's entry, nil when it has none.
	//
	// Parameters:
	//   - p: the probe to look up
	//
	// Returns:
	//   - *Entry: the entry, or nil
	EntryForProbe(p *scene_graph.ReflectionProbe) *Entry

	// Entries returns every live entry in allocation order.
	//
	// Returns:
	//   - []*Entry: the entries
	Entries() []*Entry

	// Release destroys all entries and their textures.
	Release()
}

type reflectionMapManager struct {
	mu      sync.RWMutex
	device  *wgpu.Device
	entries []*Entry
	byProbe map[*scene_graph.ReflectionProbe]*Entry
}

var _ ReflectionMapManager = &reflectionMapManager{}

// NewReflectionMapManager creates a reflection map manager. A nil device is
// allowed; entries then track capture state without GPU textures.
//
// Parameters:
//   - device: the GPU device, may be nil
//
// Returns:
//   - ReflectionMapManager: the new manager
func NewReflectionMapManager(device *wgpu.Device) ReflectionMapManager {
	return &reflectionMapManager{
		device:  device,
		byProbe: make(map[*scene_graph.ReflectionProbe]*Entry),
	}
}

func (m *reflectionMapManager) AddEntry(p *scene_graph.ReflectionProbe) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.byProbe[p]; ok {
		return e, nil
	}

	e := &Entry{Probe: p, Size: DefaultCubeSize}
	if p.Texture != nil {
		// Pre-baked probes sample their own texture; no capture target.
		if p.Texture.Width > 0 {
			e.Size = p.Texture.Width
		}
		e.Rendered = true
	} else if m.device != nil {
		tex, err := m.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:     p.Name + " Reflection Map",
			Usage:     wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
			Dimension: wgpu.TextureDimension2D,
			Size: wgpu.Extent3D{
				Width:              e.Size,
				Height:             e.Size,
				DepthOrArrayLayers: 6,
			},
			Format:        wgpu.TextureFormatRGBA16Float,
			MipLevelCount: 1,
			SampleCount:   1,
		})
		if err != nil {
			return nil, err
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Destroy()
			return nil, err
		}
		e.Texture = tex
		e.View = view
	}

	m.entries = append(m.entries, e)
	m.byProbe[p] = e
	return e, nil
}

func (m *reflectionMapManager) EntryForProbe(p *scene_graph.ReflectionProbe) *Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byProbe[p]
}

func (m *reflectionMapManager) Entries() []*Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries
}

func (m *reflectionMapManager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.Texture != nil {
			e.Texture.Destroy()
			e.Texture = nil
			e.View = nil
		}
	}
	m.entries = nil
	m.byProbe = make(map[*scene_graph.ReflectionProbe]*Entry)
}
