// package cull filters renderables against a camera frustum. Two variants
// are provided: an appending filter for building fresh lists, and an in-place
// partition for lists that are reordered anyway by a later sort.
package cull

import "github.com/Carmen-Shannon/lumen-go/common"

// Filter appends the items whose bounds touch the frustum to dst and returns
// the extended slice. dst may be nil or a reused backing slice; src is not
// modified.
//
// Parameters:
//   - dst: destination slice, appended to
//   - src: candidate items
//   - f: the camera frustum
//   - bounds: returns an item's world-space box
//
// Returns:
//   - []T: dst with the visible items appended
func Filter[T any](dst, src []T, f *common.Frustum, bounds func(T) common.Bounds3) []T {
	for i := range src {
		if f.Intersects(bounds(src[i])) {
			dst = append(dst, src[i])
		}
	}
	return dst
}

// Partition reorders items in place so the visible ones occupy the front and
// returns their count. Relative order is not preserved; use this only on
// lists that get sorted afterwards.
//
// Parameters:
//   - items: the items to partition, reordered in place
//   - f: the camera frustum
//   - bounds: returns an item's world-space box
//
// Returns:
//   - int: the number of visible items at the front
func Partition[T any](items []T, f *common.Frustum, bounds func(T) common.Bounds3) int {
	front, back := 0, len(items)-1
	for front <= back {
		if f.Intersects(bounds(items[front])) {
			front++
			continue
		}
		items[front], items[back] = items[back], items[front]
		back--
	}
	return front
}
