package instancing

import (
	"testing"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityTransform() []float32 {
	var m [16]float32
	common.Identity(m[:])
	return m[:]
}

func entryAt(x, y, z float32) Entry {
	return MakeEntry(
		[3]float32{x, y, z},
		[3]float32{1, 1, 1},
		[3]float32{},
		[4]float32{1, 1, 1, 1},
	)
}

func TestMakeEntryCarriesPosition(t *testing.T) {
	e := MakeEntry(
		[3]float32{3, -2, 7},
		[3]float32{2, 2, 2},
		[3]float32{0, 0.5, 0},
		[4]float32{1, 0, 0, 1},
	)
	pos := e.Position()
	assert.InDelta(t, 3, pos[0], 1e-5)
	assert.InDelta(t, -2, pos[1], 1e-5)
	assert.InDelta(t, 7, pos[2], 1e-5)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, e.Color)
}

func TestPrepareEntriesAliasesTableWhenNoWork(t *testing.T) {
	table := NewTable()
	table.SetEntries([]Entry{entryAt(0, 0, 0), entryAt(1, 0, 0)})

	got, _, _ := PrepareEntries(table, identityTransform(), [3]float32{}, [3]float32{0, 0, -1}, LodRange{})

	require.Len(t, got, 2)
	assert.Same(t, &table.Entries()[0], &got[0], "no sorting or culling should reuse the table slice")
}

func TestPrepareEntriesDepthSortsBackToFront(t *testing.T) {
	table := NewTable()
	table.SetEntries([]Entry{entryAt(0, 0, 0), entryAt(0, 0, -10), entryAt(0, 0, -5)})
	table.SetDepthSorting(true)

	got, camDir, _ := PrepareEntries(table, identityTransform(), [3]float32{}, [3]float32{0, 0, -1}, LodRange{})

	require.Len(t, got, 3)
	assert.Equal(t, [3]float32{0, 0, -1}, camDir)
	// Farthest along the view direction draws first.
	assert.InDelta(t, -10, got[0].Position()[2], 1e-5)
	assert.InDelta(t, -5, got[1].Position()[2], 1e-5)
	assert.InDelta(t, 0, got[2].Position()[2], 1e-5)

	// The table keeps its declared order.
	src := table.Entries()
	assert.InDelta(t, 0, src[0].Position()[2], 1e-5)
	assert.InDelta(t, -10, src[1].Position()[2], 1e-5)
}

func TestPrepareEntriesZeroesCulledInstances(t *testing.T) {
	table := NewTable()
	table.SetEntries([]Entry{entryAt(20, 0, 0), entryAt(50, 0, 0)})

	got, _, camPos := PrepareEntries(table, identityTransform(), [3]float32{}, [3]float32{0, 0, -1}, LodRange{Min: 10, Max: 40})

	require.Len(t, got, 2, "culled instances keep their slots")
	assert.Equal(t, [3]float32{}, camPos)
	assert.InDelta(t, 20, got[0].Position()[0], 1e-5)
	assert.Equal(t, Entry{}, got[1], "instance beyond the range is zeroed, not removed")
	assert.NotEqual(t, Entry{}, table.Entries()[1], "the table itself is untouched")
}

func TestPrepareEntriesCullsBelowMinimumDistance(t *testing.T) {
	table := NewTable()
	table.SetEntries([]Entry{entryAt(5, 0, 0), entryAt(20, 0, 0)})

	got, _, _ := PrepareEntries(table, identityTransform(), [3]float32{}, [3]float32{0, 0, -1}, LodRange{Min: 10, Max: -1})

	require.Len(t, got, 2)
	assert.Equal(t, Entry{}, got[0])
	assert.InDelta(t, 20, got[1].Position()[0], 1e-5)
}

func TestLodRangeUnbounded(t *testing.T) {
	assert.True(t, LodRange{}.Unbounded())
	assert.True(t, LodRange{Max: -1}.Unbounded())
	assert.False(t, LodRange{Min: 10}.Unbounded())
	assert.False(t, LodRange{Max: 40}.Unbounded())
}

func TestTableSerialTracksMutations(t *testing.T) {
	table := NewTable()
	first := table.Serial()
	table.SetEntries([]Entry{entryAt(0, 0, 0)})
	assert.Greater(t, table.Serial(), first)
}

func TestTableNeedsBuildStaleness(t *testing.T) {
	table := NewTable()
	table.SetEntries([]Entry{entryAt(0, 0, 0)})
	dir := [3]float32{0, 0, -1}

	assert.True(t, table.NeedsBuild(dir), "never built")

	table.markBuilt(dir)
	assert.False(t, table.NeedsBuild(dir))

	table.SetEntries([]Entry{entryAt(1, 0, 0)})
	assert.True(t, table.NeedsBuild(dir), "entry change bumps the serial")

	table.markBuilt(dir)
	table.SetDepthSorting(true)
	assert.True(t, table.NeedsBuild(dir), "sorting toggle invalidates the build")

	table.markBuilt(dir)
	assert.False(t, table.NeedsBuild(dir))
	assert.True(t, table.NeedsBuild([3]float32{1, 0, 0}), "sorted builds depend on the camera direction")
}

func TestGridEntriesLayout(t *testing.T) {
	got := GridEntries(5, 2)

	require.Len(t, got, 5)
	// side = ceil(sqrt(5)) = 3, so the fourth entry wraps to the next row.
	assert.Equal(t, [3]float32{0, 0, 0}, got[0].Position())
	assert.Equal(t, [3]float32{2, 0, 0}, got[1].Position())
	assert.Equal(t, [3]float32{4, 0, 0}, got[2].Position())
	assert.Equal(t, [3]float32{0, 0, 2}, got[3].Position())
	assert.Equal(t, [3]float32{2, 0, 2}, got[4].Position())
}
