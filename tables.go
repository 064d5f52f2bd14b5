package octerra

import "github.com/voxelmesh/octerra/internal/morton"

// cellEdgeDef names one of a cell's 12 edges by its two corner octants
// (in the fixed octant order of §3) and the axis the edge runs along.
type cellEdgeDef struct {
	A, B int
	Axis morton.Axis
}

// cellEdges enumerates the 12 edges of a cell, grouped by axis: an edge
// connects two octants differing in exactly one axis bit. Used by the
// builder's edge-ambiguity test (§4.2) and the DC vertex estimator's
// per-edge bipolar test (§4.6).
var cellEdges = [12]cellEdgeDef{
	{0, 1, morton.XAxis}, {2, 3, morton.XAxis}, {4, 5, morton.XAxis}, {6, 7, morton.XAxis},
	{0, 2, morton.YAxis}, {1, 3, morton.YAxis}, {4, 6, morton.YAxis}, {5, 7, morton.YAxis},
	{0, 4, morton.ZAxis}, {1, 5, morton.ZAxis}, {2, 6, morton.ZAxis}, {3, 7, morton.ZAxis},
}

// otherAxes returns the two axes other than a, in increasing order —
// the in-face (or in-edge) axes used to lay out a consistent CCW 2-D
// traversal (face corners, edge quadruples).
func otherAxes(a morton.Axis) (p, q morton.Axis) {
	switch a {
	case morton.XAxis:
		return morton.YAxis, morton.ZAxis
	case morton.YAxis:
		return morton.XAxis, morton.ZAxis
	default:
		return morton.XAxis, morton.YAxis
	}
}

func octantBit(o morton.Octant, a morton.Axis) uint8 {
	switch a {
	case morton.XAxis:
		return o.X()
	case morton.YAxis:
		return o.Y()
	default:
		return o.Z()
	}
}

func octantWithBit(base morton.Octant, a morton.Axis, bit uint8) morton.Octant {
	shift := uint(a)
	cleared := uint8(base) &^ (1 << shift)
	return morton.Octant(cleared | (bit&1)<<shift)
}

// faceCorners returns the 4 octants lying on face f, ordered CCW in the
// face's own (u,v) plane: (u0,v0), (u1,v0), (u1,v1), (u0,v1) — i.e.
// Face2DBottom, Face2DRight's start, Face2DTop's start, Face2DLeft's
// start, matching the Face2DEdge enumeration in node.go.
func faceCorners(f morton.Face) [4]morton.Octant {
	axis := f.Axis()
	fixedBit := uint8(0)
	if f.Positive() {
		fixedBit = 1
	}
	u, v := otherAxes(axis)
	mk := func(ub, vb uint8) morton.Octant {
		o := octantWithBit(0, axis, fixedBit)
		o = octantWithBit(o, u, ub)
		o = octantWithBit(o, v, vb)
		return o
	}
	return [4]morton.Octant{mk(0, 0), mk(1, 0), mk(1, 1), mk(0, 1)}
}

// edgeQuadruple, for a given axis and level (0 or 1, the edge's position
// along that axis), returns the 4 octants of the current node's children
// meeting at that internal edge, in CCW order — see dc_recursion.go's
// edge_proc. There are 2 levels per axis, 3 axes: the 6 internal
// edge-quadruples of §4.7.
func edgeQuadruple(axis morton.Axis, level uint8) [4]morton.Octant {
	p, q := otherAxes(axis)
	mk := func(pb, qb uint8) morton.Octant {
		o := octantWithBit(0, axis, level)
		o = octantWithBit(o, p, pb)
		o = octantWithBit(o, q, qb)
		return o
	}
	return [4]morton.Octant{mk(0, 0), mk(1, 0), mk(1, 1), mk(0, 1)}
}

// edgeQuadrupleComplement holds, for each quadrant position i (0..3, the
// same CCW order as edgeQuadruple), the (p,q) bit pair of the corner that
// position's own node must read to test the shared internal edge: the
// complement of its own quadrant corner in edgeQuadruple's combos
// ({0,0},{1,0},{1,1},{0,1}), i.e. the corner of that node's 8 that sits
// nearest the other 3 quadrants. Shared by edgeSubOctant (dc_recursion.go,
// descending into a branch at position i) and minimalEdgeCorners
// (dc_quad.go, reading the two corners of the minimal leaf once all 4
// quadrants have bottomed out at leaves).
var edgeQuadrupleComplement = [4][2]uint8{{1, 1}, {0, 1}, {0, 0}, {1, 0}}

// facePair, for a given axis and the other two axes' bit combination
// (0..3, packed p|q<<1), returns the negative- and positive-side octants
// of one of the 12 internal face-pairs (§4.7 node_proc).
func facePair(axis morton.Axis, combo uint8) (neg, pos morton.Octant) {
	p, q := otherAxes(axis)
	pb := combo & 1
	qb := (combo >> 1) & 1
	mk := func(bit uint8) morton.Octant {
		o := octantWithBit(0, axis, bit)
		o = octantWithBit(o, p, pb)
		o = octantWithBit(o, q, qb)
		return o
	}
	return mk(0), mk(1)
}

// edgeMap is CMS's 16-entry strip table (§4.3): for a 4-bit face-corner
// sign code (bit i set iff faceCorners(f)[i] is solid), it lists zero,
// one, or two strips, each naming the two Face2DEdge sides the crossing
// enters/exits. Codes 5 and 10 are the ambiguous diagonal cases and
// resolve to two strips; all others (besides 0 and 15, no crossing)
// resolve to exactly one.
var edgeMap = [16][][2]Face2DEdge{
	0:  {},
	1:  {{Face2DLeft, Face2DBottom}},
	2:  {{Face2DBottom, Face2DRight}},
	3:  {{Face2DLeft, Face2DRight}},
	4:  {{Face2DRight, Face2DTop}},
	5:  {{Face2DLeft, Face2DBottom}, {Face2DRight, Face2DTop}},
	6:  {{Face2DBottom, Face2DTop}},
	7:  {{Face2DTop, Face2DLeft}},
	8:  {{Face2DTop, Face2DLeft}},
	9:  {{Face2DBottom, Face2DTop}},
	10: {{Face2DBottom, Face2DRight}, {Face2DTop, Face2DLeft}},
	11: {{Face2DRight, Face2DTop}},
	12: {{Face2DRight, Face2DLeft}},
	13: {{Face2DBottom, Face2DRight}},
	14: {{Face2DBottom, Face2DLeft}},
	15: {},
}

// face2DEdgeCorners maps a Face2DEdge to the pair of in-face corner
// slots (indices into faceCorners(f)) it connects.
var face2DEdgeCorners = [4][2]int{
	Face2DBottom: {0, 1},
	Face2DRight:  {1, 2},
	Face2DTop:    {2, 3},
	Face2DLeft:   {3, 0},
}
