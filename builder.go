package octerra

import (
	"github.com/voxelmesh/octerra/internal/morton"
)

// cellBox is a cell's voxel-lattice extent: an axis-aligned box of side
// Extent voxels, with Min its integer lattice-corner coordinate. This is
// the bookkeeping the builder threads alongside a Node's world-space
// AABB while descending (world AABB is recomputed from it once a leaf
// or branch is decided).
type cellBox struct {
	Min    UVec3
	Extent uint32
}

func cellBoxCorner(box cellBox, o morton.Octant) UVec3 {
	return UVec3{
		X: box.Min.X + uint32(o.X())*box.Extent,
		Y: box.Min.Y + uint32(o.Y())*box.Extent,
		Z: box.Min.Z + uint32(o.Z())*box.Extent,
	}
}

func cellBoxChild(box cellBox, o morton.Octant) cellBox {
	half := box.Extent / 2
	return cellBox{Min: cellBoxCorner(box, o), Extent: half}
}

func worldAABB(s Sampler, box cellBox) AABB {
	min := voxelToWorld(s, box.Min)
	max := voxelToWorld(s, box.Min.Add(UVec3{box.Extent, box.Extent, box.Extent}))
	return AABB{Min: min, Max: max}
}

func sampleCorners(s Sampler, box cellBox) (corners [8]float32, nan bool) {
	for o := morton.Octant(0); o < 8; o++ {
		v := s.SampleAtVoxel(cellBoxCorner(box, o))
		if isNaN32(v) {
			nan = true
		}
		corners[o] = v
	}
	return corners, nan
}

func allSameSign(c [8]float32) bool {
	first := c[0] < 0
	for i := 1; i < 8; i++ {
		if (c[i] < 0) != first {
			return false
		}
	}
	return true
}

// edgeAmbiguous implements §4.2's edge-ambiguity predicate: along each of
// the 12 cell edges, walk the one-voxel-spaced sample sequence between
// the two endpoints and return true on any sign change between
// consecutive samples.
func edgeAmbiguous(s Sampler, box cellBox) bool {
	for _, e := range cellEdges {
		a := cellBoxCorner(box, morton.Octant(e.A))
		prevSign := s.SampleAtVoxel(a) < 0
		steps := box.Extent
		for i := uint32(1); i <= steps; i++ {
			p := a
			switch e.Axis {
			case morton.XAxis:
				p.X += i
			case morton.YAxis:
				p.Y += i
			default:
				p.Z += i
			}
			v := s.SampleAtVoxel(p)
			sign := v < 0
			if sign != prevSign {
				return true
			}
			prevSign = sign
		}
	}
	return false
}

// surfaceComplex implements §4.2's surface-complexity predicate: compute
// the central-difference gradient at each of the 8 corners, and return
// true if any adjacent (cell-edge-connected) pair's normalised dot
// product falls below ComplexSurfaceThreshold.
func surfaceComplex(s Sampler, box cellBox, cfg Config) bool {
	h := s.VoxelSize().X
	var grads [8]Vec3
	for o := morton.Octant(0); o < 8; o++ {
		p := voxelToWorld(s, cellBoxCorner(box, o))
		grads[o] = centralDifferenceGradient(s, p, h)
	}
	for _, e := range cellEdges {
		d := grads[e.A].Dot(grads[e.B])
		if d < cfg.ComplexSurfaceThreshold {
			return true
		}
	}
	return false
}

// BuildTopDown constructs the octree for store top-down from a single
// root covering the chunk (voxel extent side x side x side), applying
// the edge-ambiguity and surface-complexity predicates at each cell
// (§4.2), bounded by cfg.MinOctreeRes/cfg.MaxOctreeRes (§6): a cell never
// subdivides once doing so would drop below MinOctreeRes voxels across,
// and always subdivides past MaxOctreeRes regardless of ambiguity or
// complexity. It is the shared builder behind the CMS pipeline (C6 runs
// on its leaves) and is also valid as the general-purpose build for DC
// (BuildBottomUpDC is the alternative bottom-up strategy §4.2 describes
// for DC chunks that know their target resolution up front).
//
// A NaN sample aborts the build as a fatal invariant violation (§7).
func BuildTopDown(store *Store, s Sampler, cfg Config, side uint32) (err error) {
	defer recoverFatal(&err)
	buildRec(store, s, cfg, morton.Root, cellBox{Min: UVec3{}, Extent: side})
	return nil
}

func buildRec(store *Store, s Sampler, cfg Config, addr morton.Address, box cellBox) {
	corners, nan := sampleCorners(s, box)
	if nan {
		fatal(InvariantNaNSample, addr, "")
	}

	minFloor := uint32(cfg.MinOctreeRes)
	if minFloor < 1 {
		minFloor = 1 // a 1-voxel cell can never subdivide regardless of config
	}
	forceSubdivide := cfg.MaxOctreeRes > 0 && box.Extent > uint32(cfg.MaxOctreeRes)
	subdivide := box.Extent > minFloor && (forceSubdivide || edgeAmbiguous(s, box) || surfaceComplex(s, box, cfg))
	if subdivide {
		n := &Node{Address: addr, Kind: Branch, AABB: worldAABB(s, box)}
		store.Insert(n)
		for o := morton.Octant(0); o < 8; o++ {
			buildRec(store, s, cfg, addr.Child(o), cellBoxChild(box, o))
		}
		return
	}

	if allSameSign(corners) {
		return // pruned: all-inside or all-outside, no surface here
	}

	leaf := &Node{Address: addr, Kind: Leaf, AABB: worldAABB(s, box), CornerSamples: corners, VoxelBox: box}
	for o := morton.Octant(0); o < 8; o++ {
		leaf.VertexMats[o] = s.MaterialAt(voxelToWorld(s, cellBoxCorner(box, o)))
	}
	store.Insert(leaf)
}

// BuildBottomUpDC implements the bottom-up variant of §4.2 used by the
// DC pipeline: leaves are seeded first for every finest-resolution voxel
// cell whose corner signs straddle zero, then parents are created
// bottom-up wherever any child exists, inheriting per-corner materials.
func BuildBottomUpDC(store *Store, s Sampler, cfg Config, depth uint8) (err error) {
	defer recoverFatal(&err)

	side := uint32(1) << depth
	seedLeavesDC(store, s, cfg, depth, side)
	for d := int(depth) - 1; d >= 0; d-- {
		buildParentsAtDepth(store, s, uint8(d))
	}
	return nil
}

func seedLeavesDC(store *Store, s Sampler, cfg Config, depth uint8, side uint32) {
	for x := uint32(0); x < side; x++ {
		for y := uint32(0); y < side; y++ {
			for z := uint32(0); z < side; z++ {
				box := cellBox{Min: UVec3{x, y, z}, Extent: 1}
				corners, nan := sampleCorners(s, box)
				if nan {
					fatal(InvariantNaNSample, morton.Root, "")
				}
				if allSameSign(corners) {
					continue
				}
				addr := addressAtDepth(x, y, z, depth)
				leaf := &Node{Address: addr, Kind: Leaf, AABB: worldAABB(s, box), CornerSamples: corners, VoxelBox: box}
				for o := morton.Octant(0); o < 8; o++ {
					leaf.VertexMats[o] = s.MaterialAt(voxelToWorld(s, cellBoxCorner(box, o)))
				}
				store.Insert(leaf)
			}
		}
	}
}

// addressAtDepth builds the Morton address of the voxel at (x,y,z) at
// the given depth, by reading off one octant bit per axis per level,
// most-significant level first.
func addressAtDepth(x, y, z uint32, depth uint8) morton.Address {
	addr := morton.Root
	for lvl := int(depth) - 1; lvl >= 0; lvl-- {
		shift := uint(lvl)
		ob := morton.OctantFromBits(uint8(x>>shift)&1, uint8(y>>shift)&1, uint8(z>>shift)&1)
		addr = addr.Child(ob)
	}
	return addr
}

// buildParentsAtDepth creates a branch node for every address at depth d
// that has at least one present child at depth d+1, inheriting
// per-corner materials from the occupying child or, absent that, from
// the diagonally opposite child of a sibling at the same corner
// position (§4.2, also used unchanged by the seam builder, §4.10 step5).
func buildParentsAtDepth(store *Store, s Sampler, d uint8) {
	children := collectAddressesAtDepth(store, d+1)
	seen := make(map[uint64]bool)
	for _, caddr := range children {
		paddr := caddr.Parent()
		if seen[paddr.Idx()] {
			continue
		}
		seen[paddr.Idx()] = true

		n := &Node{Address: paddr, Kind: Branch}
		inheritCornerMaterials(store, n)
		n.AABB = parentAABB(store, paddr)
		store.Insert(n)
	}
}

func collectAddressesAtDepth(store *Store, d uint8) []morton.Address {
	var out []morton.Address
	for addr, n := range store.Leaves() {
		if uint8(addr.Depth()) == d {
			out = append(out, n.Address)
		}
	}
	for addr, n := range store.Branches() {
		if uint8(addr.Depth()) == d {
			out = append(out, n.Address)
		}
	}
	return out
}

func parentAABB(store *Store, paddr morton.Address) AABB {
	var min, max Vec3
	first := true
	for o := morton.Octant(0); o < 8; o++ {
		child, ok := store.Get(paddr.Child(o))
		if !ok {
			continue
		}
		if first {
			min, max = child.AABB.Min, child.AABB.Max
			first = false
			continue
		}
		min = Vec3{minf(min.X, child.AABB.Min.X), minf(min.Y, child.AABB.Min.Y), minf(min.Z, child.AABB.Min.Z)}
		max = Vec3{maxf(max.X, child.AABB.Max.X), maxf(max.Y, child.AABB.Max.Y), maxf(max.Z, child.AABB.Max.Z)}
	}
	return AABB{Min: min, Max: max}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// inheritCornerMaterials fills n.VertexMats (CornerSamples are left
// untouched) from the child occupying each corner position, or, if
// that octant is absent, from the diagonally opposite child of a
// sibling at the same position — approximated here as the present
// child sharing the most axis bits with that octant, the first such
// child winning ties. It also marks every present child in n's Children
// mask. This is a materials-only bookkeeping step (branch nodes are never
// extracted directly); it gives seam rebasing (§4.10 step 5) a per-corner
// material to inherit without re-sampling.
func inheritCornerMaterials(store *Store, n *Node) {
	get := func(o morton.Octant) (*Node, bool) { return store.Get(n.Address.Child(o)) }
	for o := morton.Octant(0); o < 8; o++ {
		if child, ok := get(o); ok {
			n.VertexMats[o] = child.VertexMats[o]
			n.SetChild(o)
			continue
		}
		// diagonally opposite child of a sibling at the same corner
		// position: best-effort search over the remaining present
		// children for the one sharing the most of the three axis bits.
		best := Material(Air)
		bestScore := -1
		for alt := morton.Octant(0); alt < 8; alt++ {
			child, ok := get(alt)
			if !ok {
				continue
			}
			score := 0
			if alt.X() == o.X() {
				score++
			}
			if alt.Y() == o.Y() {
				score++
			}
			if alt.Z() == o.Z() {
				score++
			}
			if score > bestScore {
				bestScore = score
				best = child.VertexMats[o]
			}
		}
		n.VertexMats[o] = best
	}
}
