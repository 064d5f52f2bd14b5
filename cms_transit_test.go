package octerra

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxelmesh/octerra/internal/morton"
)

func TestTraverseFaceCollectsLeafStripsThroughBranch(t *testing.T) {
	store := NewStore()
	root := &Node{Address: morton.Root, Kind: Branch}
	store.Insert(root)

	want := []Strip{{VertexIndex: [2]uint32{1, 2}}}
	for _, oct := range faceCorners(morton.Left) {
		child := &Node{Address: root.Address.Child(oct), Kind: Leaf}
		child.Faces[morton.Left].Strips = want
		store.Insert(child)
	}

	got := traverseFace(store, root, morton.Left)
	assert.Len(t, got, 4)
}

func TestTraverseFaceLeafReturnsOwnStrips(t *testing.T) {
	leaf := &Node{Address: morton.Root, Kind: Leaf}
	leaf.Faces[morton.Top].Strips = []Strip{{VertexIndex: [2]uint32{5, 6}}}

	got := traverseFace(nil, leaf, morton.Top)
	assert.Equal(t, leaf.Faces[morton.Top].Strips, got)
}

func TestAssembleTransitFaceSkipsBoundaryFace(t *testing.T) {
	store := NewStore()
	leaf := &Node{Address: morton.Root, Kind: Leaf}
	leaf.Faces[morton.Left].Kind = FaceTransit
	store.Insert(leaf)

	// Root has no neighbour on any face: must not panic, must leave
	// strips untouched.
	assembleTransitFace(store, leaf, morton.Left)
	assert.Empty(t, leaf.Faces[morton.Left].Strips)
}

func TestAssembleTransitFaceFusesTwinLeafStrips(t *testing.T) {
	store := NewStore()
	root := &Node{Address: morton.Root, Kind: Branch}
	store.Insert(root)

	selfAddr := root.Address.Child(morton.X0Y0Z0)
	twinBranchAddr := root.Address.Child(morton.X1Y0Z0)

	self := &Node{Address: selfAddr, Kind: Leaf}
	self.Faces[morton.Right].Kind = FaceTransit
	store.Insert(self)

	twinBranch := &Node{Address: twinBranchAddr, Kind: Branch}
	store.Insert(twinBranch)

	for _, oct := range faceCorners(morton.Left) {
		sub := &Node{Address: twinBranchAddr.Child(oct), Kind: Leaf}
		sub.Faces[morton.Left].Strips = []Strip{{VertexIndex: [2]uint32{1, 2}}}
		store.Insert(sub)
	}

	assembleTransitFace(store, self, morton.Right)
	assert.NotEmpty(t, self.Faces[morton.Right].TransitSegs)
}
