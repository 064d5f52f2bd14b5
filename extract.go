package octerra

import "github.com/voxelmesh/octerra/internal/morton"

// Method selects an isosurface extraction algorithm for Extract.
type Method uint8

const (
	MethodCMS Method = iota
	MethodDC
)

// Extract runs one chunk's main extraction pipeline (C1-C10) over sampler
// s, covering a side x side x side voxel volume, using method. It owns a
// fresh Store and MeshBuilder for the duration of the call — per §5, a
// chunk's main extraction runs as a single task with no shared mutable
// state. Panics raised by any stage's fatal invariant check are converted
// to a returned error at this boundary.
func Extract(s Sampler, cfg Config, side uint32, method Method) (mesh Mesh, store *Store, err error) {
	defer recoverFatal(&err)

	store = NewStore()
	mb := NewMeshBuilder()
	pools := NewPools()

	switch method {
	case MethodCMS:
		if err := BuildTopDown(store, s, cfg, side); err != nil {
			return Mesh{}, nil, err
		}
		MarkTransitions(store)
		if err := BuildCMSSegments(store, s, cfg, mb); err != nil {
			return Mesh{}, nil, err
		}
		if err := AssembleTransitFaces(store); err != nil {
			return Mesh{}, nil, err
		}
		if err := TraceAndTessellate(store, s, mb, pools); err != nil {
			return Mesh{}, nil, err
		}
	case MethodDC:
		depth := uint8(0)
		for uint32(1)<<depth < side {
			depth++
		}
		if err := BuildBottomUpDC(store, s, cfg, depth); err != nil {
			return Mesh{}, nil, err
		}
		if err := EstimateVertices(store, s, cfg); err != nil {
			return Mesh{}, nil, err
		}
		if err := RunDCRecursion(store, mb, morton.Root, nil); err != nil {
			return Mesh{}, nil, err
		}
	}

	if err := store.CheckInvariants(); err != nil {
		return Mesh{}, nil, err
	}
	return mb.Build(), store, nil
}

// ExtractSeam runs the DC seam pass (C11) for chunk against its already-
// extracted neighbours, per §4.10. It never mutates chunk.Store or any
// neighbour's store: those reads take the stores' own shared read locks
// (enforced by Store's RWMutex), and the seam octree it builds is
// entirely fresh.
func ExtractSeam(chunk *Chunk, neighbours [7]*Chunk, cfg Config) (mesh Mesh, err error) {
	mb := NewMeshBuilder()
	return BuildSeam(chunk, neighbours, cfg, mb)
}
