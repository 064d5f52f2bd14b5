package octerra

import (
	"fmt"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"

	"github.com/voxelmesh/octerra/internal/morton"
)

// TraceAndTessellate implements C8 (§4.5): for every leaf, gather every
// strip reachable from its six faces (direct leaf-face strips, twin
// long-strips on transit faces, and their transit segments), thread them
// into closed components via link_strips, and fan-triangulate each.
// pools, if non-nil, supplies the scratch buffer linkStrips grows each
// component into; pass nil to allocate untracked (see vertexScratchPool).
func TraceAndTessellate(store *Store, s Sampler, mb *MeshBuilder, pools *Pools) (err error) {
	defer recoverFatal(&err)
	for _, n := range store.Leaves() {
		traceLeaf(store, s, mb, n, pools)
	}
	return nil
}

// cellStrip pairs a strip with the transit segment it should splice in
// place of its two endpoints, if any (nil for an ordinary leaf-face strip).
type cellStrip struct {
	Strip   Strip
	Segment []uint32 // nil unless this strip is a transit face's long strip
}

func traceLeaf(store *Store, s Sampler, mb *MeshBuilder, n *Node, pools *Pools) {
	var strips []cellStrip
	for f := morton.Face(0); f < 6; f++ {
		face := &n.Faces[f]
		for i, strip := range face.Strips {
			if strip.Skip {
				continue
			}
			cs := cellStrip{Strip: strip}
			if face.Kind == FaceTransit && i < len(face.TransitSegs) {
				cs.Segment = face.TransitSegs[i]
			}
			strips = append(strips, cs)
		}
	}
	if len(strips) == 0 {
		return // expected-degenerate: no surface crossing on this leaf
	}

	scratch := scratchOf(pools)
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
		buf := scratch.Get()
		component := linkStrips(strips, used, seed, (*buf)[:0])
		if len(component) < 3 {
			fatal(InvariantComponentDegenerate, n.Address, fmt.Sprintf("component has %d vertices", len(component)))
		}
		verifyComponentCycle(n.Address, component)
		tessellate(s, mb, component)
		*buf = component
		scratch.Put(buf)
	}
}

// linkStrips grows a single component from strips[seed] by alternating
// forward- and backward-extension passes (§4.5): at each step it matches
// the component's last (resp. first) vertex against a remaining strip's
// endpoints, splicing that strip's transit segment (reversed if walking
// backward) when present, or just the other endpoint otherwise. Growth in
// a given direction stops when no remaining strip matches; the component
// closes when first equals last, and the duplicate closing vertex is
// trimmed. initial is the (zero-length, possibly pool-supplied) backing
// slice to grow; pass nil to allocate fresh.
func linkStrips(strips []cellStrip, used []bool, seed int, initial []uint32) []uint32 {
	used[seed] = true
	s0 := strips[seed].Strip
	component := initial
	if seg := strips[seed].Segment; len(seg) > 0 {
		component = append(component, seg...)
	} else {
		component = append(component, s0.VertexIndex[0], s0.VertexIndex[1])
	}

	for {
		if extendComponentBack(strips, used, &component) {
			if component[0] == component[len(component)-1] {
				break
			}
			continue
		}
		if component[0] == component[len(component)-1] {
			break
		}
		if extendComponentFront(strips, used, &component) {
			if component[0] == component[len(component)-1] {
				break
			}
			continue
		}
		break
	}

	if len(component) > 1 && component[0] == component[len(component)-1] {
		component = component[:len(component)-1]
	}
	return component
}

func extendComponentBack(strips []cellStrip, used []bool, component *[]uint32) bool {
	tail := (*component)[len(*component)-1]
	for i, u := range used {
		if u {
			continue
		}
		cs := strips[i]
		st := cs.Strip
		var other uint32
		switch tail {
		case st.VertexIndex[0]:
			other = st.VertexIndex[1]
		case st.VertexIndex[1]:
			other = st.VertexIndex[0]
		default:
			continue
		}
		used[i] = true
		if seg := cs.Segment; len(seg) > 0 {
			*component = append(*component, spliceSegment(seg, tail, false)...)
		} else {
			*component = append(*component, other)
		}
		return true
	}
	return false
}

func extendComponentFront(strips []cellStrip, used []bool, component *[]uint32) bool {
	head := (*component)[0]
	for i, u := range used {
		if u {
			continue
		}
		cs := strips[i]
		st := cs.Strip
		var other uint32
		switch head {
		case st.VertexIndex[0]:
			other = st.VertexIndex[1]
		case st.VertexIndex[1]:
			other = st.VertexIndex[0]
		default:
			continue
		}
		used[i] = true
		if seg := cs.Segment; len(seg) > 0 {
			prefix := spliceSegment(seg, head, true)
			*component = append(prefix, (*component)...)
		} else {
			*component = append([]uint32{other}, (*component)...)
		}
		return true
	}
	return false
}

// spliceSegment returns seg's interior-and-far vertices (everything but
// the endpoint equal to pivot), oriented so that, for a back-extension
// (front=false), the returned slice starts nearest pivot; for a front-
// extension (front=true) it ends nearest pivot, i.e. is reversed.
func spliceSegment(seg []uint32, pivot uint32, front bool) []uint32 {
	rest := make([]uint32, 0, len(seg)-1)
	if seg[0] == pivot {
		rest = append(rest, seg[1:]...)
	} else {
		for i := len(seg) - 2; i >= 0; i-- {
			rest = append(rest, seg[i])
		}
	}
	if front {
		for i, j := 0, len(rest)-1; i < j; i, j = i+1, j-1 {
			rest[i], rest[j] = rest[j], rest[i]
		}
	}
	return rest
}

// verifyComponentCycle is an independent adjacency check on the traced
// component (§8 closure check 7): build a tiny graph of its consecutive
// pairs (plus the closing edge) and confirm that an unrelated
// cycle-detection algorithm finds at least one cycle in it, rather than
// re-running link_strips' own bookkeeping. It does not check how many
// cycles are found or whether one cycle touches every vertex.
func verifyComponentCycle(addr morton.Address, component []uint32) {
	g := core.NewMixedGraph(core.WithLoops())
	ids := make([]string, len(component))
	for i, v := range component {
		ids[i] = fmt.Sprintf("v%d", v)
		if err := g.AddVertex(ids[i]); err != nil {
			fatal(InvariantComponentDegenerate, addr, err.Error())
		}
	}
	for i := range ids {
		j := (i + 1) % len(ids)
		if _, err := g.AddEdge(ids[i], ids[j], 0); err != nil {
			fatal(InvariantComponentDegenerate, addr, err.Error())
		}
	}
	found, cycles, err := dfs.DetectCycles(g)
	if err != nil || !found || len(cycles) == 0 {
		fatal(InvariantComponentDegenerate, addr, "traced component is not a closed cycle")
	}
}

// tessellate implements §4.5's triangulation: a 3-vertex component emits
// one triangle directly; a longer one computes a centroid (mean position,
// normalised mean normal), snaps it one Newton step along its gradient
// toward the zero level-set, emits it as a new vertex, and fans around it
// including the wrap-around pair.
func tessellate(s Sampler, mb *MeshBuilder, component []uint32) {
	if len(component) == 3 {
		mb.AddTriangle(component[0], component[1], component[2])
		return
	}

	var posSum, normSum Vec3
	for _, v := range component {
		posSum = posSum.Add(mb.Position(v))
		normSum = normSum.Add(mb.Normal(v))
	}
	n := float32(len(component))
	centroid := posSum.Scale(1 / n)
	normal := normalizeOrZero(normSum.Scale(1 / n))

	h := s.VoxelSize().X
	val := s.SampleAtPos(centroid)
	grad := centralDifferenceGradient(s, centroid, h)
	gn := grad.Dot(grad)
	if gn > 1e-12 {
		step := -val / gn
		maxStep := h
		if step > maxStep {
			step = maxStep
		} else if step < -maxStep {
			step = -maxStep
		}
		centroid = centroid.Add(grad.Scale(step))
	}

	centroidIdx := mb.EmitVertex(centroid, normal, s.MaterialAt(centroid))
	for i := 0; i < len(component); i++ {
		j := (i + 1) % len(component)
		mb.AddTriangle(centroidIdx, component[i], component[j])
	}
}
