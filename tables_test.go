package octerra

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxelmesh/octerra/internal/morton"
)

func TestFaceCornersLieOnFace(t *testing.T) {
	for f := morton.Face(0); f < 6; f++ {
		corners := faceCorners(f)
		axis := f.Axis()
		want := uint8(0)
		if f.Positive() {
			want = 1
		}
		for _, o := range corners {
			assert.Equal(t, want, octantBit(o, axis), "face %d corner %v must sit on the fixed axis side", f, o)
		}
		// all four corners distinct
		seen := map[morton.Octant]bool{}
		for _, o := range corners {
			assert.False(t, seen[o])
			seen[o] = true
		}
	}
}

func TestFacePairCoversAllEightChildrenOncePerAxis(t *testing.T) {
	for axis := morton.Axis(0); axis < 3; axis++ {
		seen := map[morton.Octant]bool{}
		for combo := uint8(0); combo < 4; combo++ {
			neg, pos := facePair(axis, combo)
			assert.NotEqual(t, neg, pos)
			assert.Equal(t, uint8(0), octantBit(neg, axis))
			assert.Equal(t, uint8(1), octantBit(pos, axis))
			seen[neg] = true
			seen[pos] = true
		}
		assert.Len(t, seen, 8)
	}
}

func TestEdgeQuadrupleDistinctAndOnLevel(t *testing.T) {
	for axis := morton.Axis(0); axis < 3; axis++ {
		for level := uint8(0); level < 2; level++ {
			quad := edgeQuadruple(axis, level)
			seen := map[morton.Octant]bool{}
			for _, o := range quad {
				assert.Equal(t, level, octantBit(o, axis))
				assert.False(t, seen[o])
				seen[o] = true
			}
		}
	}
}

func TestEdgeMapSymmetricCases(t *testing.T) {
	// 0 and 15 (uniform sign) have no strips.
	assert.Empty(t, edgeMap[0])
	assert.Empty(t, edgeMap[15])

	// Every other code has at least one strip, and the two ambiguous
	// diagonal codes (5, 10) have exactly two.
	for code := 1; code < 15; code++ {
		assert.NotEmpty(t, edgeMap[code], "code %d", code)
	}
	assert.Len(t, edgeMap[5], 2)
	assert.Len(t, edgeMap[10], 2)
}

func TestOtherAxesExcludesInput(t *testing.T) {
	for _, a := range []morton.Axis{morton.XAxis, morton.YAxis, morton.ZAxis} {
		p, q := otherAxes(a)
		assert.NotEqual(t, a, p)
		assert.NotEqual(t, a, q)
		assert.NotEqual(t, p, q)
	}
}
