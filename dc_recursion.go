package octerra

import (
	"github.com/voxelmesh/octerra/internal/morton"
)

// RunDCRecursion implements C10 (§4.7): node_proc/face_proc/edge_proc
// mutual recursion over the octree rooted at root, emitting quads/
// triangles at every internal bipolar edge. seamFilter, if non-nil, is
// §4.8's four-leaves-in-one-chunk suppression used by the seam pass; pass
// nil for a chunk's own main extraction.
func RunDCRecursion(store *Store, mb *MeshBuilder, root morton.Address, seamFilter func(a, b, c, d *Node) bool) (err error) {
	defer recoverFatal(&err)
	n, ok := store.Get(root)
	if !ok {
		return nil // empty octree: expected-degenerate
	}
	nodeProc(store, mb, n, seamFilter)
	return nil
}

// getChildNode implements the "replicate-leaf" rule of §4.7: a leaf
// stands in for itself at any finer sub-position; a branch yields its
// actual child, or false if that octant is entirely absent (a pruned,
// non-bipolar region — the recursion simply does not descend there).
func getChildNode(store *Store, n *Node, o morton.Octant) (*Node, bool) {
	if n.Kind == Leaf {
		return n, true
	}
	return store.Child(n, o)
}

func nodeProc(store *Store, mb *MeshBuilder, n *Node, seamFilter func(a, b, c, d *Node) bool) {
	if n.Kind == Leaf {
		visitLeaf(mb, n)
		return
	}

	for o := morton.Octant(0); o < 8; o++ {
		child, ok := store.Child(n, o)
		if !ok {
			continue
		}
		nodeProc(store, mb, child, seamFilter)
	}

	for axis := morton.Axis(0); axis < 3; axis++ {
		for combo := uint8(0); combo < 4; combo++ {
			negOct, posOct := facePair(axis, combo)
			neg, okNeg := store.Child(n, negOct)
			pos, okPos := store.Child(n, posOct)
			if !okNeg || !okPos {
				continue
			}
			faceProc(store, mb, neg, pos, axis, seamFilter)
		}
	}

	for axis := morton.Axis(0); axis < 3; axis++ {
		for level := uint8(0); level < 2; level++ {
			quad := edgeQuadruple(axis, level)
			nodes := [4]*Node{}
			allPresent := true
			for i, o := range quad {
				child, ok := store.Child(n, o)
				if !ok {
					allPresent = false
					break
				}
				nodes[i] = child
			}
			if !allPresent {
				continue
			}
			edgeProc(store, mb, nodes[0], nodes[1], nodes[2], nodes[3], axis, seamFilter)
		}
	}
}

// visitLeaf implements §4.9: each leaf emits exactly one mesh vertex,
// recorded under its address so later edge visits of the same leaf share it.
func visitLeaf(mb *MeshBuilder, n *Node) {
	if !n.HasEstimate {
		return // expected-degenerate: never touched by EstimateVertices (non-bipolar)
	}
	if _, ok := mb.LeafVertexIndex(n.Address); ok {
		return
	}
	idx := mb.EmitVertex(n.VertexEstimate, n.NormalEstimate, n.VertexMaterial)
	mb.SetLeafVertexIndex(n.Address, idx)
}

// faceProc implements §4.7's face_proc(a, b, axis): if either side is a
// branch, recurse on the 4 sub-face pairs (replicating the leaf side
// where the other is finer) and the 4 sub-edges running perpendicular to
// axis; two leaves on both sides bottom out (no internal edges to emit).
func faceProc(store *Store, mb *MeshBuilder, a, b *Node, axis morton.Axis, seamFilter func(x, y, z, w *Node) bool) {
	if a.Kind == Leaf && b.Kind == Leaf {
		return
	}

	negFixed := uint8(1) // a is the negative-side cell: its children on the shared face have the axis bit set, b's have it clear
	p, q := otherAxes(axis)
	for pb := uint8(0); pb < 2; pb++ {
		for qb := uint8(0); qb < 2; qb++ {
			aOct := octantWithBit(octantWithBit(octantWithBit(0, axis, negFixed), p, pb), q, qb)
			bOct := octantWithBit(octantWithBit(octantWithBit(0, axis, 0), p, pb), q, qb)
			childA, okA := getChildNode(store, a, aOct)
			childB, okB := getChildNode(store, b, bOct)
			if !okA || !okB {
				continue
			}
			faceProc(store, mb, childA, childB, axis, seamFilter)
		}
	}

	for pax := 0; pax < 2; pax++ {
		perp := p
		if pax == 1 {
			perp = q
		}
		for level := uint8(0); level < 2; level++ {
			nodes, ok := faceSubEdgeQuadruple(store, a, b, axis, perp, level)
			if !ok {
				continue
			}
			edgeProc(store, mb, nodes[0], nodes[1], nodes[2], nodes[3], perp, seamFilter)
		}
	}
}

// faceSubEdgeQuadruple resolves the 4-node quadruple surrounding an
// internal sub-edge running along axis perp, at the given level along the
// third axis, where the edge lies on the a/b shared face (perpendicular
// to axis). Replicate-leaf substitution applies to both a and b.
func faceSubEdgeQuadruple(store *Store, a, b *Node, axis, perp morton.Axis, level uint8) ([4]*Node, bool) {
	third := thirdAxis(axis, perp)
	var nodes [4]*Node
	combos := [4][2]uint8{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for i, c := range combos {
		// c is position i's bit pair over otherAxes(perp) (axis and third,
		// in increasing order), edgeQuadruple's own CCW layout. Its bit
		// along `axis` selects a (0, the negative-side cell) vs b (1); its
		// bit along third selects the half of that cell; perp=level is fixed.
		axisBit, thirdBit := c[0], c[1]
		if p, _ := otherAxes(perp); p == third {
			axisBit, thirdBit = c[1], c[0]
		}
		axisSideIsA := axisBit == 0
		var base *Node
		var oct morton.Octant
		if axisSideIsA {
			base = a
			oct = octantWithBit(octantWithBit(octantWithBit(0, axis, 1), perp, level), third, thirdBit)
		} else {
			base = b
			oct = octantWithBit(octantWithBit(octantWithBit(0, axis, 0), perp, level), third, thirdBit)
		}
		child, ok := getChildNode(store, base, oct)
		if !ok {
			return nodes, false
		}
		nodes[i] = child
	}
	return nodes, true
}

func thirdAxis(a, b morton.Axis) morton.Axis {
	for _, ax := range []morton.Axis{morton.XAxis, morton.YAxis, morton.ZAxis} {
		if ax != a && ax != b {
			return ax
		}
	}
	return morton.XAxis
}

// edgeProc implements §4.7's edge_proc: if all four surrounding nodes are
// leaves, emit at most one quad (§4.8); otherwise recurse into the two
// sub-edges along axis, substituting each neighbour with its child at the
// correct corner via the replicate-leaf rule.
func edgeProc(store *Store, mb *MeshBuilder, n0, n1, n2, n3 *Node, axis morton.Axis, seamFilter func(a, b, c, d *Node) bool) {
	if n0.Kind == Leaf && n1.Kind == Leaf && n2.Kind == Leaf && n3.Kind == Leaf {
		emitDCQuad(mb, [4]*Node{n0, n1, n2, n3}, axis, seamFilter)
		return
	}

	quad := [4]*Node{n0, n1, n2, n3}
	for level := uint8(0); level < 2; level++ {
		var sub [4]*Node
		ok := true
		for i, nd := range quad {
			oct := edgeSubOctant(axis, i, level)
			child, got := getChildNode(store, nd, oct)
			if !got {
				ok = false
				break
			}
			sub[i] = child
		}
		if ok {
			edgeProc(store, mb, sub[0], sub[1], sub[2], sub[3], axis, seamFilter)
		}
	}
}

// edgeSubOctant returns, for quadrant position i (0..3, in the same CCW
// order as edgeQuadruple) around an internal edge along axis, the octant
// of node i's child lying at the given level (0 or 1) along axis.
func edgeSubOctant(axis morton.Axis, i int, level uint8) morton.Octant {
	p, q := otherAxes(axis)
	pb, qb := edgeQuadrupleComplement[i][0], edgeQuadrupleComplement[i][1]
	return octantWithBit(octantWithBit(octantWithBit(0, axis, level), p, pb), q, qb)
}
