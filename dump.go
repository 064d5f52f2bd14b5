package octerra

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/voxelmesh/octerra/internal/morton"
)

// DumpString renders the store's octree as indented ASCII, useful during
// development and debugging (grounded on bart's dumper.go/common.go
// DumpListNode convention: one line per node, depth-indented, annotating
// kind and a short summary of its contents).
//
//	Output:
//
//		[BRANCH] depth: 0 addr: 1 children: 2
//		.[LEAF] depth: 1 addr: 9 corners: ++++++++ transit-faces: 2
//		.[LEAF] depth: 1 addr: 10 corners: +++-++++ transit-faces: 0
//		...
func (s *Store) DumpString() string {
	w := new(strings.Builder)
	_ = s.Dump(w)
	return w.String()
}

// Dump writes the store's octree to w in ascending address (Idx) order,
// which lists every node of a depth before any node of the next depth.
func (s *Store) Dump(w io.Writer) error {
	s.mu.RLock()
	addrs := make([]morton.Address, 0, len(s.nodes))
	for _, n := range s.nodes {
		addrs = append(addrs, n.Address)
	}
	s.mu.RUnlock()

	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Idx() < addrs[j].Idx() })

	for _, addr := range addrs {
		n, ok := s.Get(addr)
		if !ok {
			continue
		}
		indent := strings.Repeat(".", n.Address.Depth())
		if n.Kind == Branch {
			if _, err := fmt.Fprintf(w, "%s[BRANCH] depth: %d addr: %d children: %d\n",
				indent, n.Address.Depth(), n.Address.Idx(), popcountChildren(n)); err != nil {
				return err
			}
			continue
		}

		transit := 0
		for f := morton.Face(0); f < 6; f++ {
			if n.Faces[f].Kind == FaceTransit {
				transit++
			}
		}
		if _, err := fmt.Fprintf(w, "%s[LEAF] depth: %d addr: %d corners: %s transit-faces: %d\n",
			indent, n.Address.Depth(), n.Address.Idx(), cornerSignString(n), transit); err != nil {
			return err
		}
	}
	return nil
}

func popcountChildren(n *Node) int {
	count := 0
	n.ChildOctants(func(morton.Octant) bool {
		count++
		return true
	})
	return count
}

func cornerSignString(n *Node) string {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		if n.CornerSign(i) {
			b[i] = '-'
		} else {
			b[i] = '+'
		}
	}
	return string(b)
}
