package octerra

import (
	"iter"
	"sync"

	"github.com/voxelmesh/octerra/internal/morton"
)

// Store is the owning map Address -> *Node described in spec.md §3. It
// is single-writer/multi-reader (§5): the owning extraction task calls
// Insert/Delete without synchronisation of its own, while the seam pass
// for a neighbouring chunk takes a read lock via Snapshot-style calls
// (Get, Leaves, Branches) concurrently with no mutation. This mirrors
// bart's Table[V], generalised from an IPv4/IPv6 dual-root trie to a
// single-root octree keyed by morton.Address instead of netip.Prefix.
type Store struct {
	mu    sync.RWMutex
	nodes map[uint64]*Node
	size  int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{nodes: make(map[uint64]*Node)}
}

// Insert adds or overwrites the node at its own Address, and marks it
// present in its parent's Children mask (the parent must already exist,
// except for the root). Returns true if a node already occupied that
// address.
func (s *Store) Insert(n *Node) (existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed = s.nodes[n.Address.Idx()]
	s.nodes[n.Address.Idx()] = n
	if !existed {
		s.size++
	}
	if !n.Address.IsRoot() {
		parent, ok := s.nodes[n.Address.Parent().Idx()]
		if ok {
			parent.SetChild(n.Address.OctantInParent())
		}
	}
	return existed
}

// Get returns the node at addr, if present.
func (s *Store) Get(addr morton.Address) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[addr.Idx()]
	return n, ok
}

// Delete removes the node at addr and clears it from its parent's
// Children mask.
func (s *Store) Delete(addr morton.Address) (existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed = s.nodes[addr.Idx()]
	if !existed {
		return false
	}
	delete(s.nodes, addr.Idx())
	s.size--
	if !addr.IsRoot() {
		if parent, ok := s.nodes[addr.Parent().Idx()]; ok {
			parent.ClearChild(addr.OctantInParent())
		}
	}
	return true
}

// Size reports the number of nodes (branch + leaf) in the store.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Leaves ranges over every Leaf-kind node in the store, in no particular
// order. Grounded on bart's table_iter.go All() range-over-func style
// (Go 1.23 iter.Seq2).
func (s *Store) Leaves() iter.Seq2[morton.Address, *Node] {
	return func(yield func(morton.Address, *Node) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for idx, n := range s.nodes {
			if n.Kind != Leaf {
				continue
			}
			if !yield(morton.FromIdx(idx), n) {
				return
			}
		}
	}
}

// Branches ranges over every Branch-kind node in the store.
func (s *Store) Branches() iter.Seq2[morton.Address, *Node] {
	return func(yield func(morton.Address, *Node) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for idx, n := range s.nodes {
			if n.Kind != Branch {
				continue
			}
			if !yield(morton.FromIdx(idx), n) {
				return
			}
		}
	}
}

// Child fetches the child of n occupying octant o, if present. The
// lookup always goes through the store by address (spec.md §9), never
// through a pointer cached on n.
func (s *Store) Child(n *Node, o morton.Octant) (*Node, bool) {
	if !n.HasChild(o) {
		return nil, false
	}
	return s.Get(n.Address.Child(o))
}

// Neighbour fetches the node across face f from n, at the same depth,
// if one exists in the store (it may not: n may sit on the chunk
// boundary, or the neighbouring region may simply be unpopulated).
func (s *Store) Neighbour(n *Node, f morton.Face) (*Node, bool) {
	addr, ok := n.Address.FaceNeighbour(f)
	if !ok {
		return nil, false
	}
	return s.Get(addr)
}

// CheckInvariants walks the whole store and validates the structural
// invariants of §8.1-§8.3 (address-depth monotonicity is upheld by
// construction — Address.Depth() is intrinsic to the key — so only leaf
// disjointness and orphan branches are checked here). It is not called on every
// mutation (that would defeat the purpose of a fast sparse store); it is
// meant for tests and for the boundary between passes.
func (s *Store) CheckInvariants() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var err error
	func() {
		defer recoverFatal(&err)
		for idx, n := range s.nodes {
			addr := morton.FromIdx(idx)
			switch n.Kind {
			case Leaf:
				for o := morton.Octant(0); o < 8; o++ {
					if _, ok := s.nodes[addr.Child(o).Idx()]; ok {
						fatal(InvariantLeafWithChildren, addr, "")
					}
				}
			case Branch:
				any := false
				for o := morton.Octant(0); o < 8; o++ {
					if _, ok := s.nodes[addr.Child(o).Idx()]; ok {
						any = true
						break
					}
				}
				if !any {
					fatal(InvariantOrphanBranch, addr, "")
				}
			}
		}
	}()
	return err
}
