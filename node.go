package octerra

import (
	"github.com/voxelmesh/octerra/internal/morton"
	"github.com/voxelmesh/octerra/internal/sparse"
)

// NodeKind distinguishes a cell with children from one holding sampled data.
type NodeKind uint8

const (
	Branch NodeKind = iota
	Leaf
)

// Face holds the CMS-only per-face extraction state (§3 "Face (CMS
// only)"). A face starts Leaf-kind; the transition marker (C5) may
// promote it to Transit once its twin is known to be a branch face.
type Face struct {
	Kind        FaceKind
	Strips      []Strip
	TransitSegs [][]uint32
}

// FaceKind distinguishes a leaf face whose neighbour is also a leaf
// (Leaf), a face belonging to a branch cell (Branch, never extracted
// directly), and a leaf face whose neighbour is a branch (Transit).
type FaceKind uint8

const (
	FaceLeaf FaceKind = iota
	FaceBranch
	FaceTransit
)

// Strip is one CMS 2-D line segment on a cell face (§3 "Strip"). Edges
// name the two face-edges the crossing enters/exits; VertexIndex holds
// the mesh-vertex index emitted at each, once resolved.
type Strip struct {
	Edges       [2]Face2DEdge
	VertexIndex [2]uint32
	HasVertex   [2]bool
	IsLoop      bool
	Skip        bool
}

// Face2DEdge is one of the four sides of a square face, named by which
// of the face's two axes varies and which side of the other axis it's on.
type Face2DEdge uint8

const (
	Face2DBottom Face2DEdge = iota
	Face2DRight
	Face2DTop
	Face2DLeft
)

// Quadric is the accumulated probabilistic-plane quadric a DC leaf's
// bipolar edges build up (§4.6); ATA and ATB are the normal-equations
// matrix and right-hand side the QEF minimiser (dc_qef.go) solves.
type Quadric struct {
	ATA [6]float32 // symmetric 3x3, packed xx,xy,xz,yy,yz,zz
	ATB Vec3
	N   int // number of accumulated planes
}

// Add accumulates one plane (point p, unit normal n) weighted by w.
func (q *Quadric) Add(p, n Vec3, w float32) {
	nx, ny, nz := n.X*w, n.Y*w, n.Z*w
	q.ATA[0] += nx * nx
	q.ATA[1] += nx * ny
	q.ATA[2] += nx * nz
	q.ATA[3] += ny * ny
	q.ATA[4] += ny * nz
	q.ATA[5] += nz * nz
	d := n.Dot(p) * w
	q.ATB.X += nx * d
	q.ATB.Y += ny * d
	q.ATB.Z += nz * d
	q.N++
}

// Merge folds other into q, summing ATA, ATB and the plane count N.
func (q *Quadric) Merge(other *Quadric) {
	for i := range q.ATA {
		q.ATA[i] += other.ATA[i]
	}
	q.ATB = q.ATB.Add(other.ATB)
	q.N += other.N
}

// Node is one cell of the octree (§3 "Cell / Node"). The store owns all
// nodes; Children records which octants are populated without holding
// pointers to them — a neighbour or child is always re-fetched from the
// Store by address, never cached as a pointer (spec.md §9: "Cross-
// references are addresses; neighbour lookups recompute from the
// address table").
type Node struct {
	Address morton.Address
	Kind    NodeKind
	AABB    AABB

	// Children records, for a Branch node, which of the 8 octants exist
	// in the store; the octant->Node lookup itself goes through
	// Store.Get(Address.Child(o)). Grounded on bart's node.go children
	// sparse array, narrowed to the 8-wide octant domain (internal/sparse).
	Children sparse.Array8[struct{}]

	// Leaf-only fields (§3).
	CornerSamples [8]float32
	VertexMats    [8]Material

	// VoxelBox is the leaf's voxel-lattice extent, carried alongside
	// AABB so the CMS segment builder can re-scan the one-voxel-spaced
	// sample sequence along a cell edge (§4.3 step 2) without inverting
	// the sampler's world transform.
	VoxelBox cellBox

	// DC-only, populated once the leaf has been visited by the vertex
	// estimator (C9).
	VertexEstimate  Vec3
	NormalEstimate  Vec3
	VertexMaterial  Material
	HasEstimate     bool
	QEF             *Quadric
	QEFError        float32

	// CMS-only.
	Faces [6]Face
}

// HasChild reports whether octant o is populated.
func (n *Node) HasChild(o morton.Octant) bool {
	return n.Children.Test(uint8(o))
}

// SetChild marks octant o as populated (the child Node itself lives in
// the Store under Address.Child(o)).
func (n *Node) SetChild(o morton.Octant) {
	n.Children.InsertAt(uint8(o), struct{}{})
}

// ClearChild marks octant o as no longer populated (used by Store.Delete).
func (n *Node) ClearChild(o morton.Octant) {
	n.Children.DeleteAt(uint8(o))
}

// ChildOctants yields the populated octants in ascending order.
func (n *Node) ChildOctants(yield func(morton.Octant) bool) {
	n.Children.All(func(i uint8, _ struct{}) bool {
		return yield(morton.Octant(i))
	})
}

// CornerSign reports whether corner i is solid (f<0).
func (n *Node) CornerSign(i int) bool {
	return n.CornerSamples[i] < 0
}

// AllSameSign reports whether every corner sample has the same sign
// (the leaf does not cross the surface at all — an "expected-degenerate"
// case per §7, never an error).
func (n *Node) AllSameSign() bool {
	first := n.CornerSign(0)
	for i := 1; i < 8; i++ {
		if n.CornerSign(i) != first {
			return false
		}
	}
	return true
}

// HalfSize returns half the node's AABB extent along one axis, used to
// pick the "smallest surrounding leaf" in DC quad emission (§4.8).
func (n *Node) HalfSize() float32 {
	return (n.AABB.Max.X - n.AABB.Min.X) / 2
}
