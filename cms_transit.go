package octerra

import "github.com/voxelmesh/octerra/internal/morton"

// AssembleTransitFaces implements C7: for every leaf face marked Transit
// by C5, gather every leaf strip on the twin subtree (traverse_face,
// recursing through branch faces via the face's own corner octants —
// the "FACE_TO_SUBCELL" walk of §4.4) and fuse them into long strips,
// recording the ordered vertex-index chain of each as a transit segment.
func AssembleTransitFaces(store *Store) (err error) {
	defer recoverFatal(&err)
	for _, n := range store.Leaves() {
		for f := morton.Face(0); f < 6; f++ {
			if n.Faces[f].Kind != FaceTransit {
				continue
			}
			assembleTransitFace(store, n, f)
		}
	}
	return nil
}

func assembleTransitFace(store *Store, n *Node, f morton.Face) {
	twinAddr, ok := n.Address.FaceNeighbour(f)
	if !ok {
		return // boundary face, no twin to assemble against
	}
	twin, ok := store.Get(twinAddr)
	if !ok || twin.Kind != Branch {
		return // transition marker guarantees this only fires when true
	}

	leafStrips := traverseFace(store, twin, f.Twin())
	longStrips, segments := fuseStrips(leafStrips)

	face := &n.Faces[f]
	face.Strips = longStrips
	face.TransitSegs = segments
}

// traverseFace recurses through a (possibly branch) cell's face,
// collecting every leaf strip reachable on that face: a leaf contributes
// its own face's strips directly; a branch recurses into the (up to) 4
// children whose octant lies on that face.
func traverseFace(store *Store, n *Node, f morton.Face) []Strip {
	if n.Kind == Leaf {
		return n.Faces[f].Strips
	}
	var out []Strip
	for _, oct := range faceCorners(f) {
		child, ok := store.Child(n, oct)
		if !ok {
			continue
		}
		out = append(out, traverseFace(store, child, f)...)
	}
	return out
}

// fuseStrips implements the long-strip fusion of §4.4: starting from an
// arbitrary unused strip, extend at the back by any strip whose
// mesh-vertex index matches the current tail (advancing or reversing),
// then symmetrically at the front; close the chain into a loop when head
// equals tail; terminate an individual chain's growth when an iteration
// adds zero strips. Returns one long Strip plus its ordered
// vertex-index transit segment per connected component of input strips.
func fuseStrips(strips []Strip) (longStrips []Strip, segments [][]uint32) {
	used := make([]bool, len(strips))

	for {
		seed := -1
		for i, u := range used {
			if !u {
				seed = i
				break
			}
		}
		if seed == -1 {
			break
		}
		used[seed] = true
		chain := []uint32{strips[seed].VertexIndex[0], strips[seed].VertexIndex[1]}
		isLoop := false

		for {
			if extendBack(strips, used, &chain) {
				continue
			}
			if len(chain) > 1 && chain[0] == chain[len(chain)-1] {
				isLoop = true
				break
			}
			if extendFront(strips, used, &chain) {
				continue
			}
			if len(chain) > 1 && chain[0] == chain[len(chain)-1] {
				isLoop = true
			}
			break
		}

		longStrips = append(longStrips, Strip{
			VertexIndex: [2]uint32{chain[0], chain[len(chain)-1]},
			HasVertex:   [2]bool{true, true},
			IsLoop:      isLoop,
		})
		segments = append(segments, chain)
	}
	return longStrips, segments
}

func extendBack(strips []Strip, used []bool, chain *[]uint32) bool {
	tail := (*chain)[len(*chain)-1]
	for i, u := range used {
		if u {
			continue
		}
		st := strips[i]
		switch tail {
		case st.VertexIndex[0]:
			*chain = append(*chain, st.VertexIndex[1])
			used[i] = true
			return true
		case st.VertexIndex[1]:
			*chain = append(*chain, st.VertexIndex[0])
			used[i] = true
			return true
		}
	}
	return false
}

func extendFront(strips []Strip, used []bool, chain *[]uint32) bool {
	head := (*chain)[0]
	for i, u := range used {
		if u {
			continue
		}
		st := strips[i]
		switch head {
		case st.VertexIndex[0]:
			*chain = append([]uint32{st.VertexIndex[1]}, *chain...)
			used[i] = true
			return true
		case st.VertexIndex[1]:
			*chain = append([]uint32{st.VertexIndex[0]}, *chain...)
			used[i] = true
			return true
		}
	}
	return false
}
