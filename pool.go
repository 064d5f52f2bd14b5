package octerra

import (
	"sync"
	"sync/atomic"
)

// vertexScratchPool pools the small []uint32 component-vertex slices
// cms_trace.go's linkStrips builds and discards per traced component,
// avoiding per-component garbage on hot extraction paths (grounded on
// bart's multiPool grouping of several sub-pools under one owner).
//
// A sibling *Node pool was considered (grounded on bart's pool.go
// directly, one level up from multiPool) and dropped: builder.go and
// seam.go never discard a *Node mid-pipeline — every node they construct
// is inserted into a Store and stays reachable for the rest of the
// extraction, so there is no point in the call graph that would ever
// call Put. A pool that only ever Gets is not a pool, just an allocator
// wearing stats it can't actually report (currentLive would climb
// forever and never mean anything). See DESIGN.md.
type vertexScratchPool struct {
	sync.Pool
	totalAllocated atomic.Int64
	currentLive    atomic.Int64
}

func newVertexScratchPool() *vertexScratchPool {
	p := &vertexScratchPool{}
	p.New = func() any {
		p.totalAllocated.Add(1)
		buf := make([]uint32, 0, 16)
		return &buf
	}
	return p
}

func (p *vertexScratchPool) Get() *[]uint32 {
	if p == nil {
		buf := make([]uint32, 0, 16)
		return &buf
	}
	p.currentLive.Add(1)
	return p.Pool.Get().(*[]uint32)
}

func (p *vertexScratchPool) Put(buf *[]uint32) {
	if p == nil {
		return
	}
	p.currentLive.Add(-1)
	*buf = (*buf)[:0]
	p.Pool.Put(buf)
}

func (p *vertexScratchPool) Stats() (live, total int64) {
	if p == nil {
		return 0, 0
	}
	return p.currentLive.Load(), p.totalAllocated.Load()
}

// Pools groups the per-task scratch pools an extraction pipeline may use.
// A nil *Pools is valid everywhere one is threaded through: every Get
// degrades to an untracked allocation (see vertexScratchPool's nil-
// receiver methods).
type Pools struct {
	Scratch *vertexScratchPool
}

// NewPools constructs a fresh, independent set of pools for one
// extraction task (§5: "a chunk's main extraction runs as a single task
// owning a unique octree store" — pools follow the same one-task-one-
// owner rule, never shared across chunks).
func NewPools() *Pools {
	return &Pools{Scratch: newVertexScratchPool()}
}

// scratchOf returns p's scratch pool, or nil if p itself is nil —
// keeping TraceAndTessellate's pools parameter optional without every
// call site needing to construct a *Pools just to reach its one field.
func scratchOf(p *Pools) *vertexScratchPool {
	if p == nil {
		return nil
	}
	return p.Scratch
}
