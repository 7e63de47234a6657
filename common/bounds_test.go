package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyBoundsIncludePoint(t *testing.T) {
	b := EmptyBounds3()
	assert.True(t, b.IsEmpty())

	b.IncludePoint([3]float32{1, 2, 3})
	assert.False(t, b.IsEmpty())
	assert.Equal(t, [3]float32{1, 2, 3}, b.Min)
	assert.Equal(t, [3]float32{1, 2, 3}, b.Max)

	b.IncludePoint([3]float32{-1, 5, 0})
	assert.Equal(t, [3]float32{-1, 2, 0}, b.Min)
	assert.Equal(t, [3]float32{1, 5, 3}, b.Max)
}

func TestIncludeEmptyBoundsIsNoOp(t *testing.T) {
	b := CenterExtents([3]float32{0, 0, 0}, [3]float32{1, 1, 1})
	before := b
	b.IncludeBounds(EmptyBounds3())
	assert.Equal(t, before, b)
}

func TestCenterExtentsRoundTrip(t *testing.T) {
	b := CenterExtents([3]float32{5, -2, 1}, [3]float32{2, 3, 4})
	assert.Equal(t, [3]float32{5, -2, 1}, b.Center())
	assert.Equal(t, [3]float32{2, 3, 4}, b.Extents())
}

func TestBoundsIntersects(t *testing.T) {
	a := CenterExtents([3]float32{0, 0, 0}, [3]float32{1, 1, 1})

	assert.True(t, a.Intersects(CenterExtents([3]float32{1.5, 0, 0}, [3]float32{1, 1, 1})))
	assert.True(t, a.Intersects(CenterExtents([3]float32{2, 0, 0}, [3]float32{1, 1, 1})), "touching faces overlap")
	assert.False(t, a.Intersects(CenterExtents([3]float32{3, 0, 0}, [3]float32{1, 1, 1})))
	// Separation on any single axis is enough.
	assert.False(t, a.Intersects(CenterExtents([3]float32{0, 5, 0}, [3]float32{10, 1, 10})))
	assert.False(t, a.Intersects(EmptyBounds3()))
}

func TestSupportPointPicksCornerPerAxis(t *testing.T) {
	b := Bounds3{Min: [3]float32{-1, -2, -3}, Max: [3]float32{1, 2, 3}}

	assert.Equal(t, [3]float32{1, 2, 3}, b.SupportPoint([3]float32{1, 1, 1}))
	assert.Equal(t, [3]float32{-1, -2, -3}, b.SupportPoint([3]float32{-1, -1, -1}))
	assert.Equal(t, [3]float32{1, -2, 3}, b.SupportPoint([3]float32{0.5, -0.5, 2}))
	// Zero components pick Max.
	assert.Equal(t, [3]float32{1, 2, -3}, b.SupportPoint([3]float32{0, 0, -1}))
}

func TestTransformedEnclosesRotatedBox(t *testing.T) {
	b := CenterExtents([3]float32{0, 0, 0}, [3]float32{1, 1, 1})

	var m [16]float32
	// 90 degrees around Y plus a translation.
	BuildModelMatrix(m[:], 10, 0, 0, 0, 3.14159265/2, 0, 1, 1, 1)
	out := b.Transformed(m[:])

	assert.InDelta(t, 9, out.Min[0], 1e-3)
	assert.InDelta(t, 11, out.Max[0], 1e-3)
	assert.InDelta(t, -1, out.Min[1], 1e-3)
	assert.InDelta(t, 1, out.Max[2], 1e-3)
}

func TestTransformedEmptyStaysEmpty(t *testing.T) {
	var m [16]float32
	Identity(m[:])
	assert.True(t, EmptyBounds3().Transformed(m[:]).IsEmpty())
}

func TestFrustumIntersects(t *testing.T) {
	var proj, view, viewProj [16]float32
	Perspective(proj[:], 1.0, 1.0, 0.1, 100.0)
	LookAt(view[:], 0, 0, 10, 0, 0, 0, 0, 1, 0)
	Mul4(viewProj[:], proj[:], view[:])
	f := ExtractFrustumFromMatrix(viewProj[:])

	inside := CenterExtents([3]float32{0, 0, 0}, [3]float32{1, 1, 1})
	assert.True(t, f.Intersects(inside))

	behind := CenterExtents([3]float32{0, 0, 200}, [3]float32{1, 1, 1})
	assert.False(t, f.Intersects(behind))

	// Straddling the left plane counts as inside.
	straddle := CenterExtents([3]float32{-12, 0, 0}, [3]float32{8, 1, 1})
	assert.True(t, f.Intersects(straddle))
}

func TestPoolStableAddressesAndReset(t *testing.T) {
	var p Pool[[16]float32]

	first := p.Get()
	(*first)[0] = 42
	ptrs := []*[16]float32{first}
	for i := 0; i < 200; i++ {
		ptrs = append(ptrs, p.Get())
	}
	// Growth must not move earlier values.
	assert.Equal(t, float32(42), (*ptrs[0])[0])
	assert.Equal(t, 201, p.InUse())

	p.Reset()
	assert.Equal(t, 0, p.InUse())

	// Reused slots come back zeroed.
	reused := p.Get()
	assert.Equal(t, float32(0), (*reused)[0])
	assert.Same(t, first, reused)
}
