package octerra

import "github.com/voxelmesh/octerra/internal/morton"

// BuildCMSSegments implements C6: for every leaf in the store and each
// of its six faces, build 0, 1, or 2 Strips from the face's 4-bit
// corner-sign code via the edgeMap table (§4.3). Each strip endpoint's
// crossing vertex is resolved (scanned, interpolated, optionally
// bisection-refined, deduplicated) and recorded into the strip.
func BuildCMSSegments(store *Store, s Sampler, cfg Config, mb *MeshBuilder) (err error) {
	defer recoverFatal(&err)
	for _, n := range store.Leaves() {
		for f := morton.Face(0); f < 6; f++ {
			buildFaceSegments(store, s, cfg, mb, n, f)
		}
	}
	return nil
}

func buildFaceSegments(store *Store, s Sampler, cfg Config, mb *MeshBuilder, n *Node, f morton.Face) {
	corners := faceCorners(f)
	code := 0
	for i, oct := range corners {
		if n.CornerSamples[oct] < 0 {
			code |= 1 << i
		}
	}

	entries := edgeMap[code]
	face := &n.Faces[f]
	face.Strips = face.Strips[:0]
	for _, pair := range entries {
		strip := Strip{Edges: pair}
		for side := 0; side < 2; side++ {
			idx := resolveCrossing(store, s, cfg, mb, n, corners, pair[side])
			strip.VertexIndex[side] = idx
			strip.HasVertex[side] = true
		}
		face.Strips = append(face.Strips, strip)
	}

	if len(face.Strips) == 0 && !n.AllSameSign() {
		// Expected only when no face of this leaf crosses. No leaf-level
		// check that a crossing leaf has at least one strip is made here
		// or in cms_trace.go: traceLeaf treats a leaf with no strips as
		// expected-degenerate and emits nothing for it.
		return
	}
}

// resolveCrossing performs §4.3 steps 1-5 for one strip endpoint (a
// Face2DEdge of a leaf face): lift to the two voxel-coordinate
// endpoints, scan for the exact sign-change bracket, dedup, and on a
// miss interpolate/refine/gradient and append a new mesh vertex.
func resolveCrossing(store *Store, s Sampler, cfg Config, mb *MeshBuilder, n *Node, faceCorners [4]morton.Octant, edge Face2DEdge) uint32 {
	ends := face2DEdgeCorners[edge]
	oa, ob := faceCorners[ends[0]], faceCorners[ends[1]]

	a := cellBoxCorner(n.VoxelBox, oa)
	b := cellBoxCorner(n.VoxelBox, ob)
	axis := edgeAxisBetween(oa, ob)

	lesser, bracketA, bracketB, ok := scanSignChange(s, a, b, axis)
	if !ok {
		// Contract violated: the face code guaranteed exactly one sign
		// change along this edge.
		fatal(InvariantStripEndpointMismatch, n.Address, "no sign change along strip edge")
	}

	key := edgeKey{V: lesser, Axis: axis}
	if idx, found := mb.LookupDedup(key); found {
		return idx
	}

	v0 := s.SampleAtVoxel(bracketA)
	v1 := s.SampleAtVoxel(bracketB)
	p0 := voxelToWorld(s, bracketA)
	p1 := voxelToWorld(s, bracketB)

	var alpha float32
	if v1 != v0 {
		alpha = -v0 / (v1 - v0)
	}
	pos := p0.Add(p1.Sub(p0).Scale(alpha))
	pos = refineBisection(s, p0, p1, v0, pos, cfg.CrossingRefinementIterations)

	grad := centralDifferenceGradient(s, pos, s.VoxelSize().X)
	idx := mb.EmitVertex(pos, grad, s.MaterialAt(pos))
	mb.registerDedup(key, idx)
	return idx
}

// refineBisection halves the interpolated crossing position toward the
// side whose sign matches the signed root, up to iterations times
// (§4.3 step 4). With iterations==0 it is a no-op.
func refineBisection(s Sampler, p0, p1 Vec3, vRoot float32, pos Vec3, iterations uint8) Vec3 {
	lo, hi := p0, p1
	rootNeg := vRoot < 0
	for i := uint8(0); i < iterations; i++ {
		mid := lo.Add(hi.Sub(lo).Scale(0.5))
		v := s.SampleAtPos(mid)
		if (v < 0) == rootNeg {
			lo = mid
		} else {
			hi = mid
		}
		pos = mid
	}
	return pos
}

// edgeAxisBetween returns the axis two octants differ along; they are
// expected to differ in exactly one bit (adjacent cell-edge corners).
func edgeAxisBetween(a, b morton.Octant) morton.Axis {
	diff := uint8(a) ^ uint8(b)
	switch diff {
	case 1:
		return morton.XAxis
	case 2:
		return morton.YAxis
	default:
		return morton.ZAxis
	}
}

// scanSignChange walks the one-voxel-spaced samples between a and b
// along axis, returning the lesser-endpoint voxel coordinate of the
// exact sign-change bracket and its two bracketing voxel coordinates.
// The caller's face code guarantees exactly one such change; the scan
// asserts the bracketed product is <=0 (Open Question #3: an exact-zero
// product is accepted as a crossing, lesser endpoint preferred).
func scanSignChange(s Sampler, a, b UVec3, axis morton.Axis) (lesser, bracketA, bracketB UVec3, ok bool) {
	lo, hi := a, b
	if axisCoord(a, axis) > axisCoord(b, axis) {
		lo, hi = b, a
	}
	steps := axisCoord(hi, axis) - axisCoord(lo, axis)
	prev := lo
	prevV := s.SampleAtVoxel(prev)
	for i := uint32(1); i <= steps; i++ {
		cur := lo
		setAxisCoord(&cur, axis, axisCoord(lo, axis)+i)
		curV := s.SampleAtVoxel(cur)
		if prevV*curV <= 0 {
			return prev, prev, cur, true
		}
		prev, prevV = cur, curV
	}
	return UVec3{}, UVec3{}, UVec3{}, false
}

func axisCoord(v UVec3, axis morton.Axis) uint32 {
	switch axis {
	case morton.XAxis:
		return v.X
	case morton.YAxis:
		return v.Y
	default:
		return v.Z
	}
}

func setAxisCoord(v *UVec3, axis morton.Axis, val uint32) {
	switch axis {
	case morton.XAxis:
		v.X = val
	case morton.YAxis:
		v.Y = val
	default:
		v.Z = val
	}
}
