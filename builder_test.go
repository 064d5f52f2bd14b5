package octerra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTopDownProducesCrossingLeaves(t *testing.T) {
	s := newTestSphere(16, 5)
	cfg := DefaultConfig()
	store := NewStore()

	err := BuildTopDown(store, s, cfg, 16)
	assert.NoError(t, err)
	assert.NoError(t, store.CheckInvariants())

	crossing := 0
	for _, n := range store.Leaves() {
		if !n.AllSameSign() {
			crossing++
		}
	}
	assert.Greater(t, crossing, 0, "expected at least one leaf straddling the sphere's surface")
}

func TestBuildTopDownPrunesInteriorAndExterior(t *testing.T) {
	// A sampler with no curvature at all (a half-space) never triggers
	// surface-complexity, and edge-ambiguity only fires on cells the
	// plane x=4 crosses, so the builder refines just those cells and
	// prunes the same-sign cells on either side rather than subdividing
	// to the finest resolution everywhere.
	s := halfSpaceSampler{}
	cfg := DefaultConfig()
	store := NewStore()

	err := BuildTopDown(store, s, cfg, 8)
	assert.NoError(t, err)
	assert.Less(t, store.Size(), 8*8*8)
}

func TestBuildBottomUpDCSeedsAndConnectsParents(t *testing.T) {
	s := newTestSphere(8, 3)
	cfg := DefaultConfig()
	store := NewStore()

	err := BuildBottomUpDC(store, s, cfg, 3)
	assert.NoError(t, err)
	assert.NoError(t, store.CheckInvariants())

	leafCount := 0
	for range store.Leaves() {
		leafCount++
	}
	assert.Greater(t, leafCount, 0)
}

func TestBuildTopDownMaxOctreeResForcesSubdivisionEvenWhenUniform(t *testing.T) {
	// A half-space sampler never triggers surface-complexity; only the
	// cells its plane crosses are edge-ambiguous. With MaxOctreeRes=2 the
	// builder must subdivide every cell wider than 2 voxels regardless,
	// so no leaf may exceed that extent.
	s := halfSpaceSampler{}
	cfg := DefaultConfig()
	cfg.MaxOctreeRes = 2
	store := NewStore()

	err := BuildTopDown(store, s, cfg, 8)
	assert.NoError(t, err)
	assert.NoError(t, store.CheckInvariants())

	for _, n := range store.Leaves() {
		assert.LessOrEqualf(t, n.VoxelBox.Extent, uint32(2), "leaf at %#x exceeds MaxOctreeRes", n.Address.Idx())
	}
}

func TestBuildTopDownMinOctreeResStopsSubdivisionEarly(t *testing.T) {
	// A sphere sampler has plenty of curvature to keep subdividing all
	// the way to 1 voxel by default; MinOctreeRes=4 must stop it early.
	s := newTestSphere(16, 5)
	cfg := DefaultConfig()
	cfg.MinOctreeRes = 4
	store := NewStore()

	err := BuildTopDown(store, s, cfg, 16)
	assert.NoError(t, err)
	assert.NoError(t, store.CheckInvariants())

	for _, n := range store.Leaves() {
		assert.GreaterOrEqualf(t, n.VoxelBox.Extent, uint32(4), "leaf at %#x subdivided past MinOctreeRes", n.Address.Idx())
	}
}

type halfSpaceSampler struct{}

func (halfSpaceSampler) SampleAtVoxel(v UVec3) float32 {
	return float32(v.X) - 4
}
func (halfSpaceSampler) SampleAtPos(p Vec3) float32 { return p.X - 4 }
func (halfSpaceSampler) MaterialAt(p Vec3) Material {
	if p.X < 4 {
		return Material(1)
	}
	return Air
}
func (halfSpaceSampler) VoxelSize() Vec3   { return Vec3{1, 1, 1} }
func (halfSpaceSampler) WorldOffset() Vec3 { return Vec3{} }
