package octerra

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxelmesh/octerra/internal/morton"
)

func TestMarkTransitionsFlagsFaceNextToBranch(t *testing.T) {
	store := NewStore()
	root := &Node{Address: morton.Root, Kind: Branch}
	store.Insert(root)

	leafAddr := root.Address.Child(morton.X0Y0Z0)
	branchAddr := root.Address.Child(morton.X1Y0Z0)
	leaf := &Node{Address: leafAddr, Kind: Leaf}
	branch := &Node{Address: branchAddr, Kind: Branch}
	store.Insert(leaf)
	store.Insert(branch)

	MarkTransitions(store)

	assert.Equal(t, FaceTransit, leaf.Faces[morton.Right].Kind)
}

func TestMarkTransitionsLeavesLeafFaceWhenNeighbourIsLeaf(t *testing.T) {
	store := NewStore()
	root := &Node{Address: morton.Root, Kind: Branch}
	store.Insert(root)

	a := &Node{Address: root.Address.Child(morton.X0Y0Z0), Kind: Leaf}
	b := &Node{Address: root.Address.Child(morton.X1Y0Z0), Kind: Leaf}
	store.Insert(a)
	store.Insert(b)

	MarkTransitions(store)

	assert.Equal(t, FaceLeaf, a.Faces[morton.Right].Kind)
}

func TestMarkTransitionsLeavesLeafFaceWhenNeighbourAbsent(t *testing.T) {
	store := NewStore()
	leaf := &Node{Address: morton.Root, Kind: Leaf}
	store.Insert(leaf)

	MarkTransitions(store)

	for f := morton.Face(0); f < 6; f++ {
		assert.Equal(t, FaceLeaf, leaf.Faces[f].Kind)
	}
}
