package octerra

import "github.com/voxelmesh/octerra/internal/morton"

// emitDCQuad implements §4.8: given four leaves surrounding an internal
// edge along axis (CCW order matching edgeQuadruple), pick the smallest
// (finest) leaf, test its two shared-edge corners for a bipolar crossing,
// and emit one or two triangles with winding chosen by the sign.
func emitDCQuad(mb *MeshBuilder, leaves [4]*Node, axis morton.Axis, seamFilter func(a, b, c, d *Node) bool) {
	if seamFilter != nil && seamFilter(leaves[0], leaves[1], leaves[2], leaves[3]) {
		return // interior to a single source chunk: already emitted there
	}

	minIdx := 0
	for i := 1; i < 4; i++ {
		if leaves[i].HalfSize() < leaves[minIdx].HalfSize() {
			minIdx = i
		}
	}
	minimal := leaves[minIdx]
	if !minimal.HasEstimate {
		return // expected-degenerate: non-bipolar minimal leaf
	}

	a, b := minimalEdgeCorners(axis, minIdx)
	signA := minimal.CornerSign(a)
	signB := minimal.CornerSign(b)
	if signA == signB {
		return // non-bipolar edge: no triangle
	}
	flip := signA // solid-to-air direction dictates winding

	idx := [4]uint32{}
	for i, leaf := range leaves {
		vi, ok := mb.LeafVertexIndex(leaf.Address)
		if !ok {
			return // leaf not yet visited (should not happen once node_proc has run depth-first)
		}
		idx[i] = vi
	}

	hasDuplicate := idx[0] == idx[1] || idx[0] == idx[2] || idx[0] == idx[3] ||
		idx[1] == idx[2] || idx[1] == idx[3] || idx[2] == idx[3]

	tri1 := [3]uint32{idx[0], idx[2], idx[1]}
	tri2 := [3]uint32{idx[1], idx[2], idx[3]}

	if hasDuplicate {
		t1dup := hasDuplicateVertex(tri1)
		t2dup := hasDuplicateVertex(tri2)
		switch {
		case !t1dup:
			emitTri(mb, tri1, flip)
		case !t2dup:
			emitTri(mb, tri2, flip)
		}
		return
	}

	emitTri(mb, tri1, flip)
	emitTri(mb, tri2, flip)
}

func hasDuplicateVertex(tri [3]uint32) bool {
	return tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2]
}

func emitTri(mb *MeshBuilder, tri [3]uint32, flip bool) {
	if flip {
		mb.AddTriangle(tri[0], tri[2], tri[1])
	} else {
		mb.AddTriangle(tri[0], tri[1], tri[2])
	}
}

// minimalEdgeCorners returns the two corner octants, within the minimal
// leaf occupying quadrant position quadrant (0..3, edgeQuadruple's own CCW
// order), that lie on the shared internal edge. A leaf does not always sit
// at the same corner of the quadruple — which corner it must read depends
// on which of the 4 quadrant positions it occupies, via
// edgeQuadrupleComplement (the same table edgeSubOctant uses to descend
// into a branch at that position): the leaf's two edge corners are the
// ones differing only in the axis bit, with the (p,q) bits fixed to that
// position's complement.
func minimalEdgeCorners(axis morton.Axis, quadrant int) (int, int) {
	p, q := otherAxes(axis)
	pb, qb := edgeQuadrupleComplement[quadrant][0], edgeQuadrupleComplement[quadrant][1]
	a := octantWithBit(octantWithBit(octantWithBit(0, axis, 0), p, pb), q, qb)
	b := octantWithBit(octantWithBit(octantWithBit(0, axis, 1), p, pb), q, qb)
	return int(a), int(b)
}
