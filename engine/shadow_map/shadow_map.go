// package shadow_map allocates and tracks the per-light shadow map textures
// the preparation pass schedules shadow passes against. Directional lights
// render into a two-channel variance map, positional lights into a depth
// cubemap.
package shadow_map

import (
	"sync"

	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
	"github.com/cogentcore/webgpu/wgpu"
)

// MapMode selects the shadow map technique for a light.
type MapMode uint8

const (
	// ModeVSM is a 2D variance shadow map, used for directional lights.
	ModeVSM MapMode = iota
	// ModeCube is a six-face depth cubemap, used for point and spot lights.
	ModeCube
)

// ModeForLight returns the technique a light type uses.
//
// Parameters:
//   - lightType: the light's source kind
//
// Returns:
//   - MapMode: the shadow map technique
func ModeForLight(lightType scene_graph.LightType) MapMode {
	if lightType == scene_graph.LightDirectional {
		return ModeVSM
	}
	return ModeCube
}

// Entry is one light's shadow map.
type Entry struct {
	// Light is the owning light.
	Light *scene_graph.Light
	// Size is the map side length in pixels (1 << the light's resolution).
	Size uint32
	// Mode is the technique in use.
	Mode MapMode
	// Texture is the GPU depth target, nil when running without a device.
	Texture *wgpu.Texture
	// View is the GPU texture view, nil when running without a device.
	View *wgpu.TextureView
}

// ShadowMapManager owns the shadow map entries of one layer.
type ShadowMapManager interface {
	// AddShadowMap ensures a light has a shadow map entry matching its
	// current resolution and type, reusing the existing textures when
	// nothing changed.
	//
	// Parameters:
	//   - l: the shadow casting light
	//
	// Returns:
	//   - *Entry: the up-to-date entry
	//   - error: error if texture creation fails
	AddShadowMap(l *scene_graph.Light) (*Entry, error)

	// EntryForLight returns a light's entry, nil when it has none.
	//
	// Parameters:
	//   - l: the light to look up
	//
	// Returns:
	//   - *Entry: the entry, or nil
	EntryForLight(l *scene_graph.Light) *Entry

	// Entries returns every live entry in allocation order.
	//
	// Returns:
	//   - []*Entry: the entries
	Entries() []*Entry

	// Release destroys all entries and their textures.
	Release()
}

type shadowMapManager struct {
	mu      sync.RWMutex
	device  *wgpu.Device
	entries []*Entry
	byLight map[*scene_graph.Light]*Entry
}

var _ ShadowMapManager = &shadowMapManager{}

// NewShadowMapManager creates a shadow map manager. A nil device is allowed;
// entries then track sizes and modes without GPU textures, which is enough
// for headless preparation.
//
// Parameters:
//   - device: the GPU device, may be nil
//
// Returns:
//   - ShadowMapManager: the new manager
func NewShadowMapManager(device *wgpu.Device) ShadowMapManager {
	return &shadowMapManager{
		device:  device,
		byLight: make(map[*scene_graph.Light]*Entry),
	}
}

func (m *shadowMapManager) AddShadowMap(l *scene_graph.Light) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := uint32(1) << l.ShadowMapRes
	mode := ModeForLight(l.LightType)

	if e, ok := m.byLight[l]; ok {
		if e.Size == size && e.Mode == mode {
			return e, nil
		}
		m.destroyEntry(e)
	}

	e := &Entry{Light: l, Size: size, Mode: mode}
	if m.device != nil {
		layers := uint32(1)
		format := wgpu.TextureFormatRG32Float
		if mode == ModeCube {
			layers = 6
			format = wgpu.TextureFormatDepth32Float
		}
		tex, err := m.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:     l.Name + " Shadow Map",
			Usage:     wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
			Dimension: wgpu.TextureDimension2D,
			Size: wgpu.Extent3D{
				Width:              size,
				Height:             size,
				DepthOrArrayLayers: layers,
			},
			Format:        format,
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

	if old, ok := m.byLight[l]; ok {
		for i, cur := range m.entries {
			if cur == old {
				m.entries[i] = e
				break
			}
		}
	} else {
		m.entries = append(m.entries, e)
	}
	m.byLight[l] = e
	return e, nil
}

func (m *shadowMapManager) EntryForLight(l *scene_graph.Light) *Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byLight[l]
}

func (m *shadowMapManager) Entries() []*Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries
}

func (m *shadowMapManager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		m.destroyEntry(e)
	}
	m.entries = nil
	m.byLight = make(map[*scene_graph.Light]*Entry)
}

func (m *shadowMapManager) destroyEntry(e *Entry) {
	if e.Texture != nil {
		e.Texture.Destroy()
		e.Texture = nil
		e.View = nil
	}
}
