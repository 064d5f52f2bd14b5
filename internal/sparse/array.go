// Package sparse implements a popcount-compressed, octant-indexed array:
// a dense backing slice addressed by rank rather than by the full 8-wide
// index space, so a node with one child still allocates a one-element
// slice.
//
// This narrows bart's internal/sparse.Array[T] (generic over an
// arbitrary-width github.com/bits-and-blooms/bitset.BitSet index space,
// built for 256-wide routing-trie strides) to the octree's fixed 8-wide
// octant domain. A routing trie's index space doesn't fit a machine
// word, so bart reaches for an arbitrary-width bitset; an octree's
// child/face/corner masks always fit a uint8, so a plain bitmask plus
// math/bits.OnesCount8 is both simpler and faster, and needs no
// third-party bitset dependency (see DESIGN.md).
package sparse

import "math/bits"

// Array8 is a popcount-compressed array indexed by bit position 0..7.
type Array8[T any] struct {
	mask  uint8
	Items []T
}

// rank returns the number of set bits below position i — equivalently
// the slice index that bit i occupies once present.
func (a *Array8[T]) rank(i uint8) int {
	return bits.OnesCount8(a.mask & (1<<i - 1))
}

// Len reports how many entries are present.
func (a *Array8[T]) Len() int { return len(a.Items) }

// Test reports whether bit i is present.
func (a *Array8[T]) Test(i uint8) bool { return a.mask&(1<<i) != 0 }

// Mask exposes the raw presence bitmask.
func (a *Array8[T]) Mask() uint8 { return a.mask }

// Get returns the item at bit position i, if present.
func (a *Array8[T]) Get(i uint8) (T, bool) {
	if !a.Test(i) {
		var zero T
		return zero, false
	}
	return a.Items[a.rank(i)], true
}

// MustGet returns the item at bit position i, panicking if absent; for
// call sites that have already established presence via Test.
func (a *Array8[T]) MustGet(i uint8) T {
	v, ok := a.Get(i)
	if !ok {
		panic("sparse: MustGet on absent index")
	}
	return v
}

// InsertAt inserts or overwrites the item at bit position i, reporting
// whether it already existed.
func (a *Array8[T]) InsertAt(i uint8, value T) (exists bool) {
	r := a.rank(i)
	if a.Test(i) {
		a.Items[r] = value
		return true
	}
	a.mask |= 1 << i
	a.Items = append(a.Items, value)
	copy(a.Items[r+1:], a.Items[r:])
	a.Items[r] = value
	return false
}

// DeleteAt removes the item at bit position i, if present.
func (a *Array8[T]) DeleteAt(i uint8) (T, bool) {
	if !a.Test(i) {
		var zero T
		return zero, false
	}
	r := a.rank(i)
	v := a.Items[r]
	a.mask &^= 1 << i
	a.Items = append(a.Items[:r], a.Items[r+1:]...)
	return v, true
}

// All ranges over present (index, item) pairs in ascending index order.
func (a *Array8[T]) All(yield func(i uint8, v T) bool) {
	m := a.mask
	r := 0
	for m != 0 {
		i := uint8(bits.TrailingZeros8(m))
		if !yield(i, a.Items[r]) {
			return
		}
		m &^= 1 << i
		r++
	}
}

// Clone returns a shallow copy (items are not deep-copied).
func (a *Array8[T]) Clone() *Array8[T] {
	items := make([]T, len(a.Items))
	copy(items, a.Items)
	return &Array8[T]{mask: a.mask, Items: items}
}
