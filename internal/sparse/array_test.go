package sparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxelmesh/octerra/internal/sparse"
)

func TestInsertAtOrdersByIndex(t *testing.T) {
	var a sparse.Array8[string]

	a.InsertAt(5, "five")
	a.InsertAt(1, "one")
	a.InsertAt(3, "three")

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, []string{"one", "three", "five"}, a.Items)

	v, ok := a.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "three", v)

	_, ok = a.Get(2)
	assert.False(t, ok)
}

func TestInsertAtOverwrite(t *testing.T) {
	var a sparse.Array8[int]
	exists := a.InsertAt(4, 10)
	assert.False(t, exists)
	exists = a.InsertAt(4, 20)
	assert.True(t, exists)

	v, _ := a.Get(4)
	assert.Equal(t, 20, v)
	assert.Equal(t, 1, a.Len())
}

func TestDeleteAt(t *testing.T) {
	var a sparse.Array8[int]
	a.InsertAt(0, 100)
	a.InsertAt(7, 200)
	a.InsertAt(3, 300)

	v, ok := a.DeleteAt(7)
	assert.True(t, ok)
	assert.Equal(t, 200, v)
	assert.Equal(t, 2, a.Len())
	assert.False(t, a.Test(7))

	_, ok = a.DeleteAt(7)
	assert.False(t, ok)
}

func TestAllYieldsAscending(t *testing.T) {
	var a sparse.Array8[int]
	a.InsertAt(6, 6)
	a.InsertAt(2, 2)
	a.InsertAt(4, 4)

	var seen []uint8
	a.All(func(i uint8, v int) bool {
		seen = append(seen, i)
		assert.Equal(t, int(i), v)
		return true
	})
	assert.Equal(t, []uint8{2, 4, 6}, seen)
}

func TestAllStopsEarly(t *testing.T) {
	var a sparse.Array8[int]
	a.InsertAt(0, 0)
	a.InsertAt(1, 1)
	a.InsertAt(2, 2)

	count := 0
	a.All(func(i uint8, v int) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestCloneIsIndependent(t *testing.T) {
	var a sparse.Array8[int]
	a.InsertAt(1, 1)
	clone := a.Clone()
	clone.InsertAt(2, 2)

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestMustGetPanicsOnAbsent(t *testing.T) {
	var a sparse.Array8[int]
	assert.Panics(t, func() { a.MustGet(0) })
}
