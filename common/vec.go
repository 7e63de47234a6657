package common

import "github.com/chewxy/math32"

// Add3 returns the component-wise sum of two 3-component vectors.
//
// Parameters:
//   - a: left-hand vector
//   - b: right-hand vector
//
// Returns:
//   - [3]float32: a + b
func Add3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub3 returns the component-wise difference of two 3-component vectors.
//
// Parameters:
//   - a: left-hand vector
//   - b: right-hand vector
//
// Returns:
//   - [3]float32: a - b
func Sub3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale3 returns a vector scaled by a scalar.
//
// Parameters:
//   - v: the vector to scale
//   - s: the scalar multiplier
//
// Returns:
//   - [3]float32: v * s
func Scale3(v [3]float32, s float32) [3]float32 {
	return [3]float32{v[0] * s, v[1] * s, v[2] * s}
}

// Dot3 returns the dot product of two 3-component vectors.
//
// Parameters:
//   - a: left-hand vector
//   - b: right-hand vector
//
// Returns:
//   - float32: the dot product
func Dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross3 returns the cross product of two 3-component vectors.
//
// Parameters:
//   - a: left-hand vector
//   - b: right-hand vector
//
// Returns:
//   - [3]float32: a × b
func Cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// LengthSq3 returns the squared length of a 3-component vector.
//
// Parameters:
//   - v: the vector
//
// Returns:
//   - float32: the squared length
func LengthSq3(v [3]float32) float32 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// Length3 returns the length of a 3-component vector.
//
// Parameters:
//   - v: the vector
//
// Returns:
//   - float32: the length
func Length3(v [3]float32) float32 {
	return math32.Sqrt(LengthSq3(v))
}

// Normalize3 returns the unit-length version of a 3-component vector.
// Returns a zero vector if the input has zero length.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - [3]float32: the normalized vector
func Normalize3(v [3]float32) [3]float32 {
	length := Length3(v)
	if length == 0 {
		return [3]float32{0, 0, 0}
	}
	return Scale3(v, 1.0/length)
}

// TransformPoint transforms a point by a 4x4 column-major matrix, including
// the translation component.
//
// Parameters:
//   - m: transform matrix (16 elements, column-major)
//   - p: the point to transform
//
// Returns:
//   - [3]float32: the transformed point
func TransformPoint(m []float32, p [3]float32) [3]float32 {
	return [3]float32{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

// TransformDirection transforms a direction by a 4x4 column-major matrix,
// ignoring the translation component.
//
// Parameters:
//   - m: transform matrix (16 elements, column-major)
//   - d: the direction to transform
//
// Returns:
//   - [3]float32: the transformed direction
func TransformDirection(m []float32, d [3]float32) [3]float32 {
	return [3]float32{
		m[0]*d[0] + m[4]*d[1] + m[8]*d[2],
		m[1]*d[0] + m[5]*d[1] + m[9]*d[2],
		m[2]*d[0] + m[6]*d[1] + m[10]*d[2],
	}
}

// GetScale3 extracts the per-axis scale factors from a 4x4 column-major
// transform matrix as the lengths of its basis columns.
//
// Parameters:
//   - m: transform matrix (16 elements, column-major)
//
// Returns:
//   - [3]float32: the scale along each axis
func GetScale3(m []float32) [3]float32 {
	return [3]float32{
		Length3([3]float32{m[0], m[1], m[2]}),
		Length3([3]float32{m[4], m[5], m[6]}),
		Length3([3]float32{m[8], m[9], m[10]}),
	}
}

// GetTranslation3 extracts the translation column from a 4x4 column-major
// transform matrix.
//
// Parameters:
//   - m: transform matrix (16 elements, column-major)
//
// Returns:
//   - [3]float32: the translation
func GetTranslation3(m []float32) [3]float32 {
	return [3]float32{m[12], m[13], m[14]}
}
