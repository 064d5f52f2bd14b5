package octerra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNearf(t *testing.T) {
	assert.True(t, nearf(1.0, 1.0000005, 1e-5))
	assert.False(t, nearf(1.0, 1.1, 1e-5))
}

func TestCollectBorderLeavesSourceZeroTakesAll(t *testing.T) {
	store := NewStore()
	n1 := &Node{AABB: AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}}
	n2 := &Node{AABB: AABB{Min: Vec3{5, 5, 5}, Max: Vec3{6, 6, 6}}}
	n1.Kind, n2.Kind = Leaf, Leaf
	store.Insert(n1)
	store.Insert(n2)
	chunk := &Chunk{Store: store}

	got := collectBorderLeaves(chunk, 0, AABB{})
	assert.Len(t, got, 2)
}

func TestCollectBorderLeavesNeighbourFiltersByAdjacency(t *testing.T) {
	store := NewStore()
	touching := &Node{AABB: AABB{Min: Vec3{8, 0, 0}, Max: Vec3{9, 1, 1}}, Kind: Leaf}
	far := &Node{AABB: AABB{Min: Vec3{20, 20, 20}, Max: Vec3{21, 21, 21}}, Kind: Leaf}
	store.Insert(touching)
	store.Insert(far)
	chunk := &Chunk{Store: store}

	chunkAABB := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{8, 8, 8}}
	got := collectBorderLeaves(chunk, 1, chunkAABB)
	assert.Len(t, got, 1)
	assert.Equal(t, touching.AABB, got[0].AABB)
}

func TestRebaseLeafRecomputesAddressAndAABB(t *testing.T) {
	leaf := &Node{
		AABB:          AABB{Min: Vec3{4, 2, 0}, Max: Vec3{5, 3, 1}},
		CornerSamples: [8]float32{-1, -1, -1, -1, 1, 1, 1, 1},
	}
	seamMin := Vec3{0, 0, 0}
	rebased := rebaseLeaf(leaf, seamMin, 1, 4)

	assert.Equal(t, Vec3{4, 2, 0}, rebased.AABB.Min)
	assert.Equal(t, Vec3{5, 3, 1}, rebased.AABB.Max)
	assert.Equal(t, leaf.CornerSamples, rebased.CornerSamples)
	assert.NotSame(t, leaf, rebased)
}

// TestRebaseLeafPreservesCoarserExtent covers the cross-LOD seam scenario
// (spec §8's coarser-neighbour case for §4.10): a leaf whose world extent
// spans 2 seam voxels (as it does when the leaf's source chunk is one LOD
// coarser than the seam's finest voxel size) must keep that full 2-voxel
// footprint in the rebased AABB/VoxelBox, not collapse to a single finest
// voxel at its min corner.
func TestRebaseLeafPreservesCoarserExtent(t *testing.T) {
	leaf := &Node{
		AABB:          AABB{Min: Vec3{4, 2, 0}, Max: Vec3{6, 4, 2}}, // 2 seam voxels across
		CornerSamples: [8]float32{-1, -1, -1, -1, 1, 1, 1, 1},
		VoxelBox:      cellBox{Min: UVec3{4, 2, 0}, Extent: 2},
	}
	seamMin := Vec3{0, 0, 0}
	rebased := rebaseLeaf(leaf, seamMin, 1, 4)

	assert.Equal(t, Vec3{4, 2, 0}, rebased.AABB.Min)
	assert.Equal(t, Vec3{6, 4, 2}, rebased.AABB.Max)
	assert.Equal(t, uint32(2), rebased.VoxelBox.Extent)
	assert.Equal(t, 3, rebased.Address.Depth())
}

func TestBuildSeamWithNoNeighboursYieldsEmptyMesh(t *testing.T) {
	s := newTestSphere(4, 1)
	cfg := DefaultConfig()
	store := NewStore()
	err := BuildBottomUpDC(store, s, cfg, 2)
	assert.NoError(t, err)
	err = EstimateVertices(store, s, cfg)
	assert.NoError(t, err)

	chunk := &Chunk{
		Store:     store,
		LOD:       0,
		AABB:      AABB{Min: Vec3{}, Max: Vec3{4, 4, 4}},
		VoxelSize: 1,
	}
	mb := NewMeshBuilder()
	mesh, err := BuildSeam(chunk, [7]*Chunk{}, cfg, mb)
	assert.NoError(t, err)
	assert.Empty(t, mesh.Positions)
	assert.Empty(t, mesh.Indices)
}
