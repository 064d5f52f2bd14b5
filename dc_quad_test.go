package octerra

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxelmesh/octerra/internal/morton"
)

func makeQuadLeaf(addr morton.Address, half float32) *Node {
	return &Node{
		Address: addr,
		Kind:    Leaf,
		AABB:    AABB{Min: Vec3{}, Max: Vec3{2 * half, 2 * half, 2 * half}},
	}
}

func TestEmitDCQuadSkipsNonBipolarMinimalLeaf(t *testing.T) {
	root := morton.Root
	leaves := [4]*Node{
		makeQuadLeaf(root.Child(morton.X0Y0Z0), 1),
		makeQuadLeaf(root.Child(morton.X1Y0Z0), 1),
		makeQuadLeaf(root.Child(morton.X1Y1Z0), 1),
		makeQuadLeaf(root.Child(morton.X0Y1Z0), 1),
	}
	for _, l := range leaves {
		l.CornerSamples = [8]float32{1, 1, 1, 1, 1, 1, 1, 1} // uniform sign, never bipolar
	}
	leaves[0].HasEstimate = true

	mb := NewMeshBuilder()
	emitDCQuad(mb, leaves, morton.XAxis, nil)
	mesh := mb.Build()
	assert.Empty(t, mesh.Indices)
}

// TestEmitDCQuadUsesCorrectCornersForEachQuadrantPosition exercises all 4
// quadrant positions (edgeQuadruple's own CCW order) as the minimal leaf,
// each with the bipolar corner pair minimalEdgeCorners(axis, quadrant)
// actually names for that position (edgeQuadrupleComplement's complement
// bits) — not just position 0. Setting bits on any corner pair other than
// the right one for a given quadrant leaves CornerSamples all-same-sign
// (no triangle), so this fails if minimalEdgeCorners ever regresses to a
// fixed anchor pair.
func TestEmitDCQuadUsesCorrectCornersForEachQuadrantPosition(t *testing.T) {
	// corners[quadrant] = the (a, b) octant pair minimalEdgeCorners(XAxis,
	// quadrant) must return, hand-derived from edgeQuadrupleComplement
	// ({1,1},{0,1},{0,0},{1,0}) with XAxis's other axes (Y, Z).
	corners := [4][2]int{
		{6, 7}, // quadrant 0: (p,q)=(1,1) -> X0Y1Z1, X1Y1Z1
		{4, 5}, // quadrant 1: (p,q)=(0,1) -> X0Y0Z1, X1Y0Z1
		{0, 1}, // quadrant 2: (p,q)=(0,0) -> X0Y0Z0, X1Y0Z0
		{2, 3}, // quadrant 3: (p,q)=(1,0) -> X0Y1Z0, X1Y1Z0
	}
	addrs := []morton.Address{
		morton.Root.Child(morton.X0Y0Z0),
		morton.Root.Child(morton.X1Y0Z0),
		morton.Root.Child(morton.X1Y1Z0),
		morton.Root.Child(morton.X0Y1Z0),
	}

	for quadrant := 0; quadrant < 4; quadrant++ {
		var leaves [4]*Node
		mb := NewMeshBuilder()
		for i, a := range addrs {
			half := float32(1)
			if i == quadrant {
				half = 0.5 // finest of the four: this is the minimal leaf
			}
			l := makeQuadLeaf(a, half)
			l.HasEstimate = true
			l.VertexEstimate = Vec3{float32(i), float32(i), float32(i)}
			idx := mb.EmitVertex(l.VertexEstimate, Vec3{0, 1, 0}, Air)
			mb.SetLeafVertexIndex(l.Address, idx)
			leaves[i] = l
		}
		a, b := corners[quadrant][0], corners[quadrant][1]
		leaves[quadrant].CornerSamples[a] = -1
		leaves[quadrant].CornerSamples[b] = 1

		emitDCQuad(mb, leaves, morton.XAxis, nil)
		mesh := mb.Build()
		assert.NotEmptyf(t, mesh.Indices, "quadrant %d: expected triangles from bipolar corners (%d,%d)", quadrant, a, b)
		assert.Zero(t, len(mesh.Indices)%3)
	}
}

func TestEmitDCQuadSeamFilterSuppression(t *testing.T) {
	root := morton.Root
	var leaves [4]*Node
	mb := NewMeshBuilder()
	addrs := []morton.Address{
		root.Child(morton.X0Y0Z0),
		root.Child(morton.X1Y0Z0),
		root.Child(morton.X1Y1Z0),
		root.Child(morton.X0Y1Z0),
	}
	for i, a := range addrs {
		l := makeQuadLeaf(a, 1)
		l.HasEstimate = true
		idx := mb.EmitVertex(Vec3{float32(i), 0, 0}, Vec3{0, 1, 0}, Air)
		mb.SetLeafVertexIndex(l.Address, idx)
		leaves[i] = l
	}
	leaves[0].CornerSamples = [8]float32{-1, 1, -1, 1, -1, 1, -1, 1}

	called := false
	emitDCQuad(mb, leaves, morton.XAxis, func(a, b, c, d *Node) bool {
		called = true
		return true
	})
	assert.True(t, called)
	mesh := mb.Build()
	assert.Empty(t, mesh.Indices)
}

func TestHasDuplicateVertex(t *testing.T) {
	assert.True(t, hasDuplicateVertex([3]uint32{1, 1, 2}))
	assert.False(t, hasDuplicateVertex([3]uint32{1, 2, 3}))
}
