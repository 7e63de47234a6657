package instancing

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

func buildTransform(out []float32, position, rotation, scale [3]float32) {
	common.BuildModelMatrix(out,
		position[0], position[1], position[2],
		rotation[0], rotation[1], rotation[2],
		scale[0], scale[1], scale[2])
}

// LodRange culls instances by distance from the camera. Instances closer
// than Min or at/beyond Max are dropped; a Max at or below zero disables the
// upper bound. The zero value keeps every instance.
type LodRange struct {
	// Min is the inclusive near distance.
	Min float32
	// Max is the exclusive far distance; zero or negative means unbounded.
	Max float32
}

// Unbounded reports whether the range keeps every instance.
//
// Returns:
//   - bool: true if no culling applies
func (r LodRange) Unbounded() bool {
	return r.Min <= 0 && r.Max <= 0
}

// contains tests a squared distance against the range.
func (r LodRange) contains(distSq float32) bool {
	if distSq < r.Min*r.Min {
		return false
	}
	return r.Max <= 0 || distSq < r.Max*r.Max
}

// PrepareEntries produces the entry slice to upload for one model. When depth
// sorting is enabled the entries are copied and sorted back to front along
// the camera direction; when a detail range applies, culled instances are
// zeroed in place of being removed so instance indices stay stable. The
// camera position and direction are transformed into the instance space by
// the inverse of the model's global transform.
//
// Parameters:
//   - t: the instance table
//   - modelGlobalTransform: the owning model's global transform (16 elements)
//   - cameraPosition: camera world position
//   - cameraDirection: camera world forward direction
//   - lod: the detail range, zero value for none
//
// Returns:
//   - []Entry: the entries in upload order (may alias the table's entries
//     when no sorting or culling applies)
//   - [3]float32: the camera direction in instance space, for staleness checks
//   - [3]float32: the camera position in instance space, for staleness checks
func PrepareEntries(t *Table, modelGlobalTransform []float32, cameraPosition, cameraDirection [3]float32, lod LodRange) ([]Entry, [3]float32, [3]float32) {
	var inv [16]float32
	if !common.Invert4(inv[:], modelGlobalTransform) {
		common.Identity(inv[:])
	}
	localCamDir := common.Normalize3(common.TransformDirection(inv[:], cameraDirection))
	localCamPos := common.TransformPoint(inv[:], cameraPosition)

	entries := t.Entries()
	needsCopy := t.DepthSorting() || !lod.Unbounded()
	if !needsCopy {
		return entries, localCamDir, localCamPos
	}

	out := make([]Entry, len(entries))
	copy(out, entries)

	if t.DepthSorting() {
		sort.SliceStable(out, func(i, j int) bool {
			di := common.Dot3(out[i].Position(), localCamDir)
			dj := common.Dot3(out[j].Position(), localCamDir)
			return di > dj
		})
	}

	if !lod.Unbounded() {
		for i := range out {
			d := common.Sub3(out[i].Position(), localCamPos)
			if !lod.contains(common.LengthSq3(d)) {
				out[i] = Entry{}
			}
		}
	}
	return out, localCamDir, localCamPos
}

// BuildBuffer uploads the prepared entries for one model, reusing an
// existing GPU buffer when it is already large enough and the contents are
// current. Builds without detail-range culling share the table's buffer;
// culled builds are keyed by owner so models with different ranges never see
// each other's zeroed entries, and go stale when the camera position moves.
// One batched write per rebuild.
//
// Parameters:
//   - device: the GPU device
//   - queue: the GPU queue for the upload
//   - t: the instance table
//   - owner: the model the build belongs to, only used under culling
//   - modelGlobalTransform: the owning model's global transform (16 elements)
//   - cameraPosition: camera world position
//   - cameraDirection: camera world forward direction
//   - lod: the detail range, zero value for none
//
// Returns:
//   - *wgpu.Buffer: the instance buffer, nil for an empty table
//   - error: error if buffer creation fails
func BuildBuffer(device *wgpu.Device, queue *wgpu.Queue, t *Table, owner any, modelGlobalTransform []float32, cameraPosition, cameraDirection [3]float32, lod LodRange) (*wgpu.Buffer, error) {
	if device == nil || queue == nil {
		panic("instancing: BuildBuffer requires a device and queue")
	}
	if t.Count() == 0 {
		return nil, nil
	}

	entries, localCamDir, localCamPos := PrepareEntries(t, modelGlobalTransform, cameraPosition, cameraDirection, lod)

	t.mu.Lock()
	defer t.mu.Unlock()

	if !lod.Unbounded() {
		return t.buildForOwnerLocked(device, queue, owner, entries, localCamDir, localCamPos)
	}

	if t.built && t.builtSerial == t.serial && t.builtSorting == t.depthSorting &&
		(!t.depthSorting || t.builtCamDir == localCamDir) && t.builtInstance == len(entries) {
		return t.buffer, nil
	}

	needed := uint64(len(entries)) * EntryByteSize
	if t.buffer == nil || t.bufferSize < needed {
		if t.buffer != nil {
			t.buffer.Destroy()
		}
		buf, err := createInstanceBuffer(device, needed)
		if err != nil {
			return nil, err
		}
		t.buffer = buf
		t.bufferSize = needed
	}

	queue.WriteBuffer(t.buffer, 0, common.SliceToBytes(entries))

	t.markBuilt(localCamDir)
	t.builtInstance = len(entries)
	return t.buffer, nil
}

// buildForOwnerLocked uploads a detail-range culled build into the owner's
// private buffer. Staleness additionally tracks the camera position, since
// the zeroed-out set depends on it.
func (t *Table) buildForOwnerLocked(device *wgpu.Device, queue *wgpu.Queue, owner any, entries []Entry, localCamDir, localCamPos [3]float32) (*wgpu.Buffer, error) {
	if t.ownerBuilds == nil {
		t.ownerBuilds = make(map[any]*ownerBuild)
	}
	ob := t.ownerBuilds[owner]
	if ob == nil {
		ob = &ownerBuild{}
		t.ownerBuilds[owner] = ob
	}

	if ob.built && ob.builtSerial == t.serial && ob.builtSorting == t.depthSorting &&
		(!t.depthSorting || ob.builtCamDir == localCamDir) &&
		ob.builtCamPos == localCamPos && ob.builtInstance == len(entries) {
		return ob.buffer, nil
	}

	needed := uint64(len(entries)) * EntryByteSize
	if ob.buffer == nil || ob.bufferSize < needed {
		if ob.buffer != nil {
			ob.buffer.Destroy()
		}
		buf, err := createInstanceBuffer(device, needed)
		if err != nil {
			return nil, err
		}
		ob.buffer = buf
		ob.bufferSize = needed
	}

	queue.WriteBuffer(ob.buffer, 0, common.SliceToBytes(entries))

	ob.built = true
	ob.builtSerial = t.serial
	ob.builtSorting = t.depthSorting
	ob.builtCamDir = localCamDir
	ob.builtCamPos = localCamPos
	ob.builtInstance = len(entries)
	return ob.buffer, nil
}

func createInstanceBuffer(device *wgpu.Device, size uint64) (*wgpu.Buffer, error) {
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "instance-table",
		Size:  size,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create instance buffer: %w", err)
	}
	return buf, nil
}

// GridEntries is a convenience builder that lays out count instances in a
// roughly square grid on the XZ plane with the given spacing. Intended for
// examples and tests.
//
// Parameters:
//   - count: the number of instances
//   - spacing: the world distance between neighbors
//
// Returns:
//   - []Entry: the generated entries
func GridEntries(count int, spacing float32) []Entry {
	side := int(math32.Ceil(math32.Sqrt(float32(count))))
	out := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		x := float32(i%side) * spacing
		z := float32(i/side) * spacing
		out = append(out, MakeEntry(
			[3]float32{x, 0, z},
			[3]float32{1, 1, 1},
			[3]float32{},
			[4]float32{1, 1, 1, 1},
		))
	}
	return out
}
