// package instancing contains instance tables and the per-frame instance
// buffer build. The CPU side (depth sorting, detail range culling) is kept
// separate from the GPU upload so it can run and be tested without a device.
package instancing

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Entry is one instance in the layout the vertex fetch expects: the first
// three rows of the transposed instance transform, a color, and a slot of
// custom data. 20 floats, 80 bytes.
type Entry struct {
	// Row0, Row1 and Row2 are the transposed transform rows; the fourth
	// component of each row carries the translation.
	Row0, Row1, Row2 [4]float32
	// Color is multiplied into the instance's material color.
	Color [4]float32
	// Data is application-defined per-instance data.
	Data [4]float32
}

// EntryByteSize is the GPU byte stride of one instance entry.
const EntryByteSize = 80

// MakeEntry builds an entry from position, scale and Euler rotation
// (radians, applied Y, X, Z), matching the node transform convention.
//
// Parameters:
//   - position: instance translation
//   - scale: instance scale
//   - rotation: instance Euler rotation in radians
//   - color: instance color
//
// Returns:
//   - Entry: the packed entry
func MakeEntry(position, scale, rotation [3]float32, color [4]float32) Entry {
	var m [16]float32
	buildTransform(m[:], position, rotation, scale)
	return Entry{
		Row0:  [4]float32{m[0], m[4], m[8], m[12]},
		Row1:  [4]float32{m[1], m[5], m[9], m[13]},
		Row2:  [4]float32{m[2], m[6], m[10], m[14]},
		Color: color,
	}
}

// Position returns the instance translation.
//
// Returns:
//   - [3]float32: the translation stored in the transposed rows
func (e *Entry) Position() [3]float32 {
	return [3]float32{e.Row0[3], e.Row1[3], e.Row2[3]}
}

// Table is a shared set of instance entries. Mutations bump the serial;
// the per-frame build re-uploads only when the serial, the sorting mode or
// (when sorting) the camera direction changed since the last build. Builds
// without detail-range culling share one buffer across every model
// referencing the table; culled builds are keyed per owning model, since
// their zeroed-out entries depend on that model's range and transform.
type Table struct {
	mu sync.RWMutex

	entries      []Entry
	serial       int
	depthSorting bool

	// GPU state owned by the table.
	buffer     *wgpu.Buffer
	bufferSize uint64

	// Last-build bookkeeping for the shared buffer.
	built         bool
	builtSerial   int
	builtSorting  bool
	builtCamDir   [3]float32
	builtInstance int

	// Detail-range culled builds, one per owning model.
	ownerBuilds map[any]*ownerBuild
}

// ownerBuild is the buffer and staleness state of one model's detail-range
// culled build.
type ownerBuild struct {
	buffer     *wgpu.Buffer
	bufferSize uint64

	built         bool
	builtSerial   int
	builtSorting  bool
	builtCamDir   [3]float32
	builtCamPos   [3]float32
	builtInstance int
}

// NewTable creates an empty instance table.
//
// Returns:
//   - *Table: the new table
func NewTable() *Table {
	return &Table{serial: 1}
}

// SetEntries replaces the table contents and bumps the serial.
//
// Parameters:
//   - entries: the new instance entries (retained, not copied)
func (t *Table) SetEntries(entries []Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = entries
	t.serial++
}

// Entries returns the current instance entries. The returned slice must be
// treated as read-only.
//
// Returns:
//   - []Entry: the entries
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries
}

// Count returns the number of instances in the table.
//
// Returns:
//   - int: the instance count
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Serial returns the current change serial.
//
// Returns:
//   - int: the serial, bumped on every SetEntries
func (t *Table) Serial() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.serial
}

// SetDepthSorting enables or disables back-to-front instance sorting.
//
// Parameters:
//   - enabled: true to sort instances by camera depth each build
func (t *Table) SetDepthSorting(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.depthSorting = enabled
}

// DepthSorting reports whether instance depth sorting is enabled.
//
// Returns:
//   - bool: true if sorting is enabled
func (t *Table) DepthSorting() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.depthSorting
}

// NeedsBuild reports whether the GPU buffer is stale for the given camera
// direction: never built, entries changed, sorting toggled, or sorting is
// enabled and the camera direction moved.
//
// Parameters:
//   - cameraDirection: the camera forward direction in the instance space
//
// Returns:
//   - bool: true if the buffer must be rebuilt
func (t *Table) NeedsBuild(cameraDirection [3]float32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.built || t.builtSerial != t.serial || t.builtSorting != t.depthSorting {
		return true
	}
	return t.depthSorting && t.builtCamDir != cameraDirection
}

// Buffer returns the GPU buffer from the last build, nil before the first.
//
// Returns:
//   - *wgpu.Buffer: the instance buffer
func (t *Table) Buffer() *wgpu.Buffer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.buffer
}

// Release destroys every GPU buffer, shared and per-model. The table itself
// stays usable; the next build recreates them.
func (t *Table) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.buffer != nil {
		t.buffer.Destroy()
		t.buffer = nil
		t.bufferSize = 0
	}
	t.built = false
	for owner, ob := range t.ownerBuilds {
		if ob.buffer != nil {
			ob.buffer.Destroy()
		}
		delete(t.ownerBuilds, owner)
	}
}

func (t *Table) markBuilt(cameraDirection [3]float32) {
	t.built = true
	t.builtSerial = t.serial
	t.builtSorting = t.depthSorting
	t.builtCamDir = cameraDirection
}
