package octerra

import (
	"math"

	"github.com/voxelmesh/octerra/internal/morton"
)

// Neighbour indexes the 7 neighbour groups of §4.10 step 1 (+X/+Y/+Z
// face, edge, and vertex neighbours), in the fixed order this package
// uses everywhere a [7]*Chunk is threaded.
type Neighbour int

const (
	NeighbourPlusX Neighbour = iota
	NeighbourPlusY
	NeighbourPlusZ
	NeighbourPlusXY
	NeighbourPlusXZ
	NeighbourPlusYZ
	NeighbourPlusXYZ
)

// Chunk is one source chunk's already-extracted octree, as the seam
// builder needs it: its store, LOD, and the voxel size and AABB its main
// extraction used.
type Chunk struct {
	Store     *Store
	LOD       uint8
	AABB      AABB
	VoxelSize float32
}

// BuildSeam implements C11 (§4.10): constructs a fresh seam octree
// spanning the cube of side 2*chunk.AABB covering chunk and its ready
// +X/+Y/+Z face/edge/vertex neighbours, rebases each source's border
// leaves into it, rebuilds parents bottom-up, and runs DC recursion with
// the four-leaves-in-one-chunk filter. Missing neighbours (nil) yield an
// empty group per §4.11 ("a chunk with no seam neighbours ready yields an
// empty seam mesh and completes successfully").
func BuildSeam(chunk *Chunk, neighbours [7]*Chunk, cfg Config, mb *MeshBuilder) (mesh Mesh, err error) {
	defer recoverFatal(&err)

	lMin := chunk.LOD
	voxelSize := chunk.VoxelSize
	lMax := chunk.LOD
	anyNeighbour := false
	for _, nb := range neighbours {
		if nb == nil {
			continue
		}
		anyNeighbour = true
		if nb.LOD < lMin {
			lMin = nb.LOD
		}
		if nb.LOD > lMax {
			lMax = nb.LOD
		}
		if nb.VoxelSize < voxelSize {
			voxelSize = nb.VoxelSize
		}
	}
	if !anyNeighbour {
		warnOnce("seam-no-neighbours", "octerra: seam build for chunk at %+v has no ready neighbours, yielding an empty seam mesh", chunk.AABB)
		return mb.Build(), nil
	}
	if int(lMax)-int(lMin) > 3 {
		fatal(InvariantSeamLODBound, morton.Root, "seam LOD spread exceeds 3")
	}

	side := chunk.AABB.Max.X - chunk.AABB.Min.X
	seamSide := 2 * side
	depth := uint8(math.Round(math.Log2(float64(seamSide / voxelSize))))
	seamMin := chunk.AABB.Min

	seamStore := NewStore()
	origin := make(map[uint64]int) // rebased leaf address -> source index (0=chunk, 1..7=neighbours)

	sources := append([]*Chunk{chunk}, neighbours[:]...)
	for i, src := range sources {
		if src == nil {
			continue
		}
		for _, leaf := range collectBorderLeaves(src, i, chunk.AABB) {
			rebased := rebaseLeaf(leaf, seamMin, voxelSize, depth)
			seamStore.Insert(rebased)
			origin[rebased.Address.Idx()] = i
		}
	}

	for d := int(depth) - 1; d >= 0; d-- {
		buildParentsAtDepth(seamStore, nil, uint8(d))
	}

	seamFilter := func(a, b, c, d *Node) bool {
		oa, ok := origin[a.Address.Idx()]
		if !ok {
			return false
		}
		ob, okb := origin[b.Address.Idx()]
		oc, okc := origin[c.Address.Idx()]
		od, okd := origin[d.Address.Idx()]
		return okb && okc && okd && oa == ob && oa == oc && oa == od
	}

	if err := RunDCRecursion(seamStore, mb, morton.Root, seamFilter); err != nil {
		return Mesh{}, err
	}
	return mb.Build(), nil
}

// collectBorderLeaves returns src's leaves whose AABB touches the shared
// boundary with chunkAABB (§4.10 step 3). The source chunk itself, index
// 0, contributes every leaf since its whole volume is "inside" the seam
// cube's near octant. Every neighbour source uses the same single test: a
// leaf is kept if its min face lies on one of chunkAABB's max planes or its
// max face on one of chunkAABB's min planes, along any axis; the test does
// not depend on which octant of the 2S cube the neighbour occupies.
func collectBorderLeaves(src *Chunk, sourceIndex int, chunkAABB AABB) []*Node {
	var out []*Node
	if sourceIndex == 0 {
		for _, n := range src.Store.Leaves() {
			out = append(out, n)
		}
		return out
	}

	touchesShared := func(box AABB) bool {
		const eps = 1e-5
		return nearf(box.Min.X, chunkAABB.Max.X, eps) || nearf(box.Max.X, chunkAABB.Min.X, eps) ||
			nearf(box.Min.Y, chunkAABB.Max.Y, eps) || nearf(box.Max.Y, chunkAABB.Min.Y, eps) ||
			nearf(box.Min.Z, chunkAABB.Max.Z, eps) || nearf(box.Max.Z, chunkAABB.Min.Z, eps)
	}
	for _, n := range src.Store.Leaves() {
		if touchesShared(n.AABB) {
			out = append(out, n)
		}
	}
	return out
}

func nearf(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

// rebaseLeaf implements §4.10 step 4: recompute the leaf's local voxel
// coordinate relative to the seam's min corner and voxel size, derive its
// Morton address at the seam depth, and copy its samples/materials/
// estimate/normal unchanged. A leaf coarser than the seam's finest voxel
// (the normal case for any neighbour at a coarser LOD, or any non-leaf-
// -depth leaf of an adaptive chunk) keeps its true world-space footprint:
// it is inserted as a single node at a shallower seam depth spanning its
// full extent, not collapsed onto its min corner's single finest voxel.
func rebaseLeaf(leaf *Node, seamMin Vec3, voxelSize float32, depth uint8) *Node {
	localX := uint32(math.Round(float64((leaf.AABB.Min.X - seamMin.X) / voxelSize)))
	localY := uint32(math.Round(float64((leaf.AABB.Min.Y - seamMin.Y) / voxelSize)))
	localZ := uint32(math.Round(float64((leaf.AABB.Min.Z - seamMin.Z) / voxelSize)))

	worldExtent := leaf.AABB.Max.X - leaf.AABB.Min.X
	extentVoxels := uint32(math.Round(float64(worldExtent / voxelSize)))
	if extentVoxels < 1 {
		extentVoxels = 1
	}
	shift := uint8(math.Round(math.Log2(float64(extentVoxels))))
	leafDepth := depth
	if shift < depth {
		leafDepth = depth - shift
	} else {
		leafDepth, shift = 0, depth
	}

	addr := addressAtDepth(localX>>shift, localY>>shift, localZ>>shift, leafDepth)

	extentWorld := voxelSize * float32(extentVoxels)
	rebased := *leaf
	rebased.Address = addr
	rebased.AABB = AABB{
		Min: Vec3{seamMin.X + float32(localX)*voxelSize, seamMin.Y + float32(localY)*voxelSize, seamMin.Z + float32(localZ)*voxelSize},
	}
	rebased.AABB.Max = rebased.AABB.Min.Add(Vec3{extentWorld, extentWorld, extentWorld})
	rebased.VoxelBox = cellBox{Min: UVec3{localX, localY, localZ}, Extent: extentVoxels}
	return &rebased
}
