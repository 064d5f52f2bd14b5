package octerra

import (
	"encoding/json"

	"github.com/voxelmesh/octerra/internal/morton"
)

// Mesh is the indexed triangle mesh produced by an extraction pass
// (§6 "Produced — indexed mesh"). Indices are a triangle list, CCW when
// viewed from the solid side.
type Mesh struct {
	Positions []Vec3
	Normals   []Vec3
	Materials []uint32
	Indices   []uint32
}

// edgeKey is the vertex-dedup map key (§3 "Vertex-dedup map"): the
// integer coordinate of the lesser endpoint of a crossed voxel edge,
// plus the edge's axis. At most one mesh vertex is ever recorded per key
// (§8.4).
type edgeKey struct {
	V    UVec3
	Axis morton.Axis
}

// MeshBuilder accumulates a Mesh during a single extraction pass,
// alongside the two identity maps §3/§4.9 require: the voxel-edge dedup
// map (CMS crossing vertices) and the leaf-address -> vertex-index map
// (DC leaf vertices, shared across the edges that visit the same leaf).
// It is owned by one extraction task and never shared (§5): no locking.
//
// Grounded on jsonify.go's encoding/json marshalling idiom for the
// exported format (MarshalJSON below); the accumulate-then-commit shape
// follows §7's "mesh emitter is never left in a half-populated state
// externally observable — output is committed only on successful
// completion" (Build is the single commit point).
type MeshBuilder struct {
	mesh Mesh

	dedup      map[edgeKey]uint32
	leafVertex map[uint64]uint32
}

// NewMeshBuilder returns an empty builder.
func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{
		dedup:      make(map[edgeKey]uint32),
		leafVertex: make(map[uint64]uint32),
	}
}

// LookupDedup returns the mesh-vertex index already recorded for key, if any.
func (b *MeshBuilder) LookupDedup(key edgeKey) (uint32, bool) {
	idx, ok := b.dedup[key]
	return idx, ok
}

// registerDedup records idx for key. Calling it twice for the same key
// is a fatal invariant violation (§8.4) — call sites must LookupDedup
// first and only register on a miss.
func (b *MeshBuilder) registerDedup(key edgeKey, idx uint32) {
	if _, exists := b.dedup[key]; exists {
		fatal(InvariantDedupCollision, morton.Address{}, "")
	}
	b.dedup[key] = idx
}

// EmitCrossingVertex resolves the mesh-vertex index for a CMS crossing
// on the given voxel-edge key, creating one via new/EmitVertex on a miss
// (§4.3 steps 3-5).
func (b *MeshBuilder) EmitCrossingVertex(key edgeKey, pos, normal Vec3, mat Material) uint32 {
	if idx, ok := b.LookupDedup(key); ok {
		return idx
	}
	idx := b.EmitVertex(pos, normal, mat)
	b.registerDedup(key, idx)
	return idx
}

// EmitVertex appends a new mesh vertex unconditionally, returning its index.
func (b *MeshBuilder) EmitVertex(pos, normal Vec3, mat Material) uint32 {
	idx := uint32(len(b.mesh.Positions))
	b.mesh.Positions = append(b.mesh.Positions, pos)
	b.mesh.Normals = append(b.mesh.Normals, normal)
	b.mesh.Materials = append(b.mesh.Materials, uint32(mat))
	return idx
}

// LeafVertexIndex returns the mesh-vertex index already emitted for a DC
// leaf at addr, if its node_proc leaf-visit has already run (§4.9).
func (b *MeshBuilder) LeafVertexIndex(addr morton.Address) (uint32, bool) {
	idx, ok := b.leafVertex[addr.Idx()]
	return idx, ok
}

// SetLeafVertexIndex records the mesh-vertex index for a DC leaf.
func (b *MeshBuilder) SetLeafVertexIndex(addr morton.Address, idx uint32) {
	b.leafVertex[addr.Idx()] = idx
}

// AddTriangle appends one triangle (three vertex indices, CCW from the
// solid side) to the index buffer.
func (b *MeshBuilder) AddTriangle(i0, i1, i2 uint32) {
	b.mesh.Indices = append(b.mesh.Indices, i0, i1, i2)
}

// Position returns the position already emitted at vertex index idx.
func (b *MeshBuilder) Position(idx uint32) Vec3 { return b.mesh.Positions[idx] }

// Normal returns the normal already emitted at vertex index idx.
func (b *MeshBuilder) Normal(idx uint32) Vec3 { return b.mesh.Normals[idx] }

// Build commits and returns the finished mesh. Once called, the builder
// should not be reused (it still would work, but represents a new pass
// and so a fresh dedup/leaf-vertex identity space — callers should
// construct a new MeshBuilder per extraction instead).
func (b *MeshBuilder) Build() Mesh {
	return b.mesh
}

// meshJSON is the wire shape for Mesh, field names matching §6's
// external-interface naming.
type meshJSON struct {
	Positions []Vec3   `json:"positions"`
	Normals   []Vec3   `json:"normals"`
	Materials []uint32 `json:"materials"`
	Indices   []uint32 `json:"indices"`
}

// MarshalJSON exports the mesh in the §6 external-interface shape.
func (m Mesh) MarshalJSON() ([]byte, error) {
	return json.Marshal(meshJSON{
		Positions: m.Positions,
		Normals:   m.Normals,
		Materials: m.Materials,
		Indices:   m.Indices,
	})
}
