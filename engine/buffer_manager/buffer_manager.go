// package buffer_manager owns the GPU residency of shared resources: mesh
// vertex/index buffers, material textures, samplers and skinning bone
// textures. The preparation pass asks it to load whatever the frame
// references; loads are cached so repeated frames are cheap.
package buffer_manager

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/material"
	"github.com/Carmen-Shannon/lumen-go/engine/mesh"
	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
	"github.com/cogentcore/webgpu/wgpu"
)

// MeshBuffers is the GPU residency of one mesh.
type MeshBuffers struct {
	// Vertex is the interleaved vertex buffer.
	Vertex *wgpu.Buffer
	// Index is the uint32 index buffer.
	Index *wgpu.Buffer
	// IndexCount is the total index count of the mesh.
	IndexCount int
}

// BoneTexture is the GPU residency of one model's skinning matrices: a
// square RGBA32F texture rewritten every prepared frame and recreated only
// when its dimensions change.
type BoneTexture struct {
	// Width is the texture side length in texels.
	Width int
	// Handle is the GPU texture.
	Handle *wgpu.Texture
	// View is the GPU texture view.
	View *wgpu.TextureView
}

// BufferManager loads and caches GPU resources for the preparation pass.
type BufferManager interface {
	// Device returns the GPU device the manager creates resources on.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the GPU queue used for uploads.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// LoadMesh uploads a mesh's vertex and index data, returning the cached
	// buffers when the mesh was already loaded.
	//
	// Parameters:
	//   - m: the mesh to load
	//
	// Returns:
	//   - *MeshBuffers: the GPU buffers
	//   - error: error if buffer creation fails
	LoadMesh(m *mesh.Mesh) (*MeshBuffers, error)

	// ReleaseMesh destroys a mesh's GPU buffers and drops it from the cache.
	//
	// Parameters:
	//   - m: the mesh to release
	ReleaseMesh(m *mesh.Mesh)

	// LoadMeshBVH builds and caches the triangle hierarchy picking queries
	// traverse. Meshes without indexable geometry resolve to nil without
	// error; a later frame retries once the geometry exists.
	//
	// Parameters:
	//   - m: the mesh to index
	//
	// Returns:
	//   - *mesh.BVH: the cached hierarchy, nil when not indexable
	//   - error: error when m is nil
	LoadMeshBVH(m *mesh.Mesh) (*mesh.BVH, error)

	// LoadTexture decodes a texture's source and uploads it, populating the
	// texture's Handle and View. Already loaded textures are left untouched.
	//
	// Parameters:
	//   - t: the texture to load
	//
	// Returns:
	//   - error: error if decoding or upload fails
	LoadTexture(t *material.Texture) error

	// LoadTextures loads a batch of textures, decoding sources in parallel
	// on the manager's worker pool. The first error is returned after all
	// loads finish.
	//
	// Parameters:
	//   - textures: the textures to load
	//
	// Returns:
	//   - error: the first load error, nil when all succeeded
	LoadTextures(textures []*material.Texture) error

	// EnsureBoneTexture makes sure a bone texture matches the skin's current
	// dimensions, recreating it only when the width changed, then writes the
	// skin's packed bone data into it.
	//
	// Parameters:
	//   - skin: the resolved skinning data
	//   - existing: the previous frame's texture, nil on first use
	//
	// Returns:
	//   - *BoneTexture: the up-to-date texture (may be existing)
	//   - error: error if texture creation fails
	EnsureBoneTexture(skin *scene_graph.Skin, existing *BoneTexture) (*BoneTexture, error)

	// CreateSampler creates a sampler from staging data, defaulting any unset
	// fields to linear filtering with repeat addressing.
	//
	// Parameters:
	//   - data: the sampler configuration
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	//   - error: error if creation fails
	CreateSampler(data common.SamplerStagingData) (*wgpu.Sampler, error)

	// Release destroys every cached GPU resource.
	Release()
}

type bufferManager struct {
	mu     sync.RWMutex
	device *wgpu.Device
	queue  *wgpu.Queue

	meshes map[*mesh.Mesh]*MeshBuffers
	bvhs   map[*mesh.Mesh]*mesh.BVH

	// decodePool runs texture decodes off the prepare thread. Workers persist
	// across frames, avoiding per-frame goroutine spawn/teardown overhead.
	decodePool    worker.DynamicWorkerPool
	decodeWorkers int
	taskID        int
}

var _ BufferManager = &bufferManager{}

// NewBufferManager creates a buffer manager on a device and queue.
//
// Parameters:
//   - device: the GPU device, must not be nil
//   - queue: the GPU queue, must not be nil
//   - options: optional configuration
//
// Returns:
//   - BufferManager: the new manager
func NewBufferManager(device *wgpu.Device, queue *wgpu.Queue, options ...BufferManagerBuilderOption) BufferManager {
	if device == nil || queue == nil {
		panic("buffer_manager: NewBufferManager requires a device and queue")
	}
	b := &bufferManager{
		device:        device,
		queue:         queue,
		meshes:        make(map[*mesh.Mesh]*MeshBuffers),
		bvhs:          make(map[*mesh.Mesh]*mesh.BVH),
		decodeWorkers: runtime.NumCPU(),
	}
	for _, option := range options {
		option(b)
	}
	// Queue size of 256 accommodates typical texture batch sizes with headroom.
	b.decodePool = worker.NewDynamicWorkerPool(b.decodeWorkers, 256, 1*time.Second)
	return b
}

func (b *bufferManager) Device() *wgpu.Device {
	return b.device
}

func (b *bufferManager) Queue() *wgpu.Queue {
	return b.queue
}

func (b *bufferManager) LoadMesh(m *mesh.Mesh) (*MeshBuffers, error) {
	if m == nil {
		return nil, fmt.Errorf("mesh is nil")
	}

	b.mu.RLock()
	cached, ok := b.meshes[m]
	b.mu.RUnlock()
	if ok {
		return cached, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if cached, ok := b.meshes[m]; ok {
		return cached, nil
	}

	buffers := &MeshBuffers{IndexCount: len(m.IndexData) / 4}

	if len(m.VertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            m.Name + " Vertex Buffer",
			Size:             uint64(len(m.VertexData)),
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return nil, err
		}
		b.queue.WriteBuffer(buf, 0, m.VertexData)
		buffers.Vertex = buf
	}

	if len(m.IndexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            m.Name + " Index Buffer",
			Size:             uint64(len(m.IndexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			if buffers.Vertex != nil {
				buffers.Vertex.Destroy()
			}
			return nil, err
		}
		b.queue.WriteBuffer(buf, 0, m.IndexData)
		buffers.Index = buf
	}

	b.meshes[m] = buffers
	return buffers, nil
}

func (b *bufferManager) ReleaseMesh(m *mesh.Mesh) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if buffers, ok := b.meshes[m]; ok {
		if buffers.Vertex != nil {
			buffers.Vertex.Destroy()
		}
		if buffers.Index != nil {
			buffers.Index.Destroy()
		}
		delete(b.meshes, m)
	}
	delete(b.bvhs, m)
}

func (b *bufferManager) LoadMeshBVH(m *mesh.Mesh) (*mesh.BVH, error) {
	if m == nil {
		return nil, fmt.Errorf("mesh is nil")
	}

	b.mu.RLock()
	cached, ok := b.bvhs[m]
	b.mu.RUnlock()
	if ok {
		return cached, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if cached, ok := b.bvhs[m]; ok {
		return cached, nil
	}
	bvh := mesh.BuildBVH(m)
	if bvh != nil {
		// Non-indexable meshes stay uncached so a later frame can retry
		// once geometry is assigned.
		b.bvhs[m] = bvh
	}
	return bvh, nil
}

func (b *bufferManager) LoadTexture(t *material.Texture) error {
	if t == nil {
		return fmt.Errorf("texture is nil")
	}
	if t.View != nil {
		return nil
	}
	if t.Source == nil {
		return fmt.Errorf("texture %q has no source", t.Name)
	}

	pixels, width, height, err := t.Source.Decode()
	if err != nil {
		return err
	}
	return b.uploadTexture(t, common.TextureStagingData{Pixels: pixels, Width: width, Height: height})
}

func (b *bufferManager) LoadTextures(textures []*material.Texture) error {
	type decoded struct {
		tex     *material.Texture
		staging common.TextureStagingData
		err     error
	}

	var wg sync.WaitGroup
	results := make([]decoded, len(textures))

	b.mu.Lock()
	for i, t := range textures {
		if t == nil || t.View != nil {
			continue
		}
		wg.Add(1)
		idx, tex := i, t
		id := b.taskID
		b.taskID++
		b.decodePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				if tex.Source == nil {
					results[idx] = decoded{tex: tex, err: fmt.Errorf("texture %q has no source", tex.Name)}
					return nil, nil
				}
				pixels, width, height, err := tex.Source.Decode()
				results[idx] = decoded{
					tex:     tex,
					staging: common.TextureStagingData{Pixels: pixels, Width: width, Height: height},
					err:     err,
				}
				return nil, nil
			},
		})
	}
	b.mu.Unlock()
	wg.Wait()

	// Uploads stay on the calling goroutine; the queue write copies
	// internally before returning.
	var firstErr error
	for _, r := range results {
		if r.tex == nil {
			continue
		}
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		if err := b.uploadTexture(r.tex, r.staging); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *bufferManager) uploadTexture(t *material.Texture, staging common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     t.Name + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * 4,
			RowsPerImage: staging.Height,
		},
		&wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		return err
	}

	t.Handle = tex
	t.View = view
	t.Width = staging.Width
	t.Height = staging.Height
	t.Source = nil
	return nil
}

func (b *bufferManager) EnsureBoneTexture(skin *scene_graph.Skin, existing *BoneTexture) (*BoneTexture, error) {
	if skin == nil || skin.TextureWidth == 0 {
		return existing, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	bt := existing
	if bt == nil || bt.Width != skin.TextureWidth {
		if bt != nil && bt.Handle != nil {
			bt.Handle.Destroy()
		}
		width := uint32(skin.TextureWidth)
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:     "Bone Texture",
			Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
			Dimension: wgpu.TextureDimension2D,
			Size: wgpu.Extent3D{
				Width:              width,
				Height:             width,
				DepthOrArrayLayers: 1,
			},
			Format:        wgpu.TextureFormatRGBA32Float,
			MipLevelCount: 1,
			SampleCount:   1,
		})
		if err != nil {
			return existing, err
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Destroy()
			return existing, err
		}
		bt = &BoneTexture{Width: skin.TextureWidth, Handle: tex, View: view}
	}

	width := uint32(bt.Width)
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  bt.Handle,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		common.SliceToBytes(skin.BoneData),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 16,
			RowsPerImage: width,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             width,
			DepthOrArrayLayers: 1,
		},
	)
	return bt, nil
}

func (b *bufferManager) CreateSampler(data common.SamplerStagingData) (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Sampler",
		AddressModeU:  common.Coalesce(data.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(data.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(data.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(data.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(data.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(data.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   data.LodMinClamp,
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32),
		Compare:       data.Compare,
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
	})
}

func (b *bufferManager) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for m, buffers := range b.meshes {
		if buffers.Vertex != nil {
			buffers.Vertex.Destroy()
		}
		if buffers.Index != nil {
			buffers.Index.Destroy()
		}
		delete(b.meshes, m)
	}
}
