package common

import "github.com/chewxy/math32"

// Bounds3 is an axis-aligned bounding box in 3D space.
// An empty box has Min components at +Inf and Max components at -Inf, so that
// including the first point collapses it to that point.
type Bounds3 struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBounds3 returns an empty bounding box that includes no points.
//
// Returns:
//   - Bounds3: the empty box
func EmptyBounds3() Bounds3 {
	inf := math32.Inf(1)
	return Bounds3{
		Min: [3]float32{inf, inf, inf},
		Max: [3]float32{-inf, -inf, -inf},
	}
}

// CenterExtents builds a bounding box from a center point and half-extents.
//
// Parameters:
//   - center: the box center
//   - extents: half the box dimensions along each axis
//
// Returns:
//   - Bounds3: the resulting box
func CenterExtents(center, extents [3]float32) Bounds3 {
	return Bounds3{
		Min: Sub3(center, extents),
		Max: Add3(center, extents),
	}
}

// IsEmpty reports whether the box includes no points.
//
// Returns:
//   - bool: true if the box is empty on any axis
func (b Bounds3) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// IncludePoint grows the box to include a point.
//
// Parameters:
//   - p: the point to include
func (b *Bounds3) IncludePoint(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

// IncludeBounds grows the box to include another box. Including an empty box
// is a no-op.
//
// Parameters:
//   - o: the box to include
func (b *Bounds3) IncludeBounds(o Bounds3) {
	if o.IsEmpty() {
		return
	}
	b.IncludePoint(o.Min)
	b.IncludePoint(o.Max)
}

// Center returns the center point of the box.
//
// Returns:
//   - [3]float32: the center
func (b Bounds3) Center() [3]float32 {
	return Scale3(Add3(b.Min, b.Max), 0.5)
}

// Extents returns the half-dimensions of the box along each axis.
//
// Returns:
//   - [3]float32: the half-extents
func (b Bounds3) Extents() [3]float32 {
	return Scale3(Sub3(b.Max, b.Min), 0.5)
}

// Contains reports whether a point lies inside the box (inclusive).
//
// Parameters:
//   - p: the point to test
//
// Returns:
//   - bool: true if the point is inside
func (b Bounds3) Contains(p [3]float32) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Intersects reports whether this box and another overlap (touching counts).
// Empty boxes intersect nothing.
//
// Parameters:
//   - o: the box to test against
//
// Returns:
//   - bool: true if the boxes overlap
func (b Bounds3) Intersects(o Bounds3) bool {
	for i := 0; i < 3; i++ {
		if b.Min[i] > o.Max[i] || b.Max[i] < o.Min[i] {
			return false
		}
	}
	return true
}

// SupportPoint returns the corner of the box farthest along a direction.
// For each axis the Max component is picked when the direction component is
// non-negative, otherwise the Min component.
//
// Parameters:
//   - dir: the direction to support against
//
// Returns:
//   - [3]float32: the supporting corner
func (b Bounds3) SupportPoint(dir [3]float32) [3]float32 {
	var out [3]float32
	for i := 0; i < 3; i++ {
		if dir[i] >= 0 {
			out[i] = b.Max[i]
		} else {
			out[i] = b.Min[i]
		}
	}
	return out
}

// Transformed returns the axis-aligned box enclosing this box after
// transforming its eight corners by a 4x4 column-major matrix. Empty boxes
// stay empty.
//
// Parameters:
//   - m: transform matrix (16 elements, column-major)
//
// Returns:
//   - Bounds3: the enclosing box in the target space
func (b Bounds3) Transformed(m []float32) Bounds3 {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBounds3()
	for corner := 0; corner < 8; corner++ {
		p := [3]float32{b.Min[0], b.Min[1], b.Min[2]}
		if corner&1 != 0 {
			p[0] = b.Max[0]
		}
		if corner&2 != 0 {
			p[1] = b.Max[1]
		}
		if corner&4 != 0 {
			p[2] = b.Max[2]
		}
		out.IncludePoint(TransformPoint(m, p))
	}
	return out
}
