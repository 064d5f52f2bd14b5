package octerra

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxelmesh/octerra/internal/morton"
)

func TestLinkStripsClosesTriangle(t *testing.T) {
	strips := []cellStrip{
		{Strip: Strip{VertexIndex: [2]uint32{0, 1}}},
		{Strip: Strip{VertexIndex: [2]uint32{1, 2}}},
		{Strip: Strip{VertexIndex: [2]uint32{2, 0}}},
	}
	used := make([]bool, len(strips))
	component := linkStrips(strips, used, 0, nil)

	assert.Len(t, component, 3)
	for _, u := range used {
		assert.True(t, u)
	}
}

func TestLinkStripsSplicesTransitSegment(t *testing.T) {
	strips := []cellStrip{
		{Strip: Strip{VertexIndex: [2]uint32{0, 1}}},
		{Strip: Strip{VertexIndex: [2]uint32{1, 4}}, Segment: []uint32{1, 2, 3, 4}},
		{Strip: Strip{VertexIndex: [2]uint32{4, 0}}},
	}
	used := make([]bool, len(strips))
	component := linkStrips(strips, used, 0, nil)

	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, component)
}

func TestFuseStripsChainsAndClosesLoop(t *testing.T) {
	strips := []Strip{
		{VertexIndex: [2]uint32{0, 1}},
		{VertexIndex: [2]uint32{1, 2}},
		{VertexIndex: [2]uint32{2, 0}},
	}
	longStrips, segments := fuseStrips(strips)
	assert.Len(t, longStrips, 1)
	assert.True(t, longStrips[0].IsLoop)
	assert.Len(t, segments, 1)
	assert.ElementsMatch(t, []uint32{0, 1, 2}, segments[0])
}

func TestFuseStripsTwoDisjointComponents(t *testing.T) {
	strips := []Strip{
		{VertexIndex: [2]uint32{0, 1}},
		{VertexIndex: [2]uint32{10, 11}},
	}
	longStrips, segments := fuseStrips(strips)
	assert.Len(t, longStrips, 2)
	assert.Len(t, segments, 2)
}

func TestTraceLeafRejectsDegenerateComponent(t *testing.T) {
	n := &Node{Address: morton.Root}
	n.Faces[morton.Left].Strips = []Strip{{VertexIndex: [2]uint32{0, 1}}}
	mb := NewMeshBuilder()
	mb.EmitVertex(Vec3{}, Vec3{}, Air)
	mb.EmitVertex(Vec3{1, 0, 0}, Vec3{}, Air)

	assert.Panics(t, func() {
		traceLeaf(nil, sphereSampler0(), mb, n, nil)
	})
}

func sphereSampler0() Sampler { return newTestSphere(8, 2) }
