// Package octerra extracts watertight triangle meshes from signed scalar
// fields sampled over a cubic chunk of voxels, using an adaptive octree
// as the shared data structure between two coexisting algorithms:
//
//   - Cubical Marching Squares (CMS): per-leaf-face 2-D segment building,
//     long-strip assembly across refinement transitions, and greedy
//     component tracing fanned to triangles.
//   - Dual Contouring (DC): one QEF-minimised vertex per bipolar leaf,
//     connected across minimal bipolar edges by a recursive
//     node/face/edge-proc dual traversal, with LOD seam stitching between
//     chunks of differing refinement.
//
// Both pipelines are pure functions of a Sampler and a Config: extraction
// has no persisted state, and two extractions over byte-identical inputs
// produce byte-identical meshes modulo vertex renumbering.
//
// The octree itself is a single owning map from Address (a packed Morton
// path, see internal/morton) to Node; cross-references between cells are
// addresses, recomputed on demand, never pointers — this keeps the store
// acyclic and makes a Store safe to read from multiple goroutines once
// built (see Store's documentation for the concurrency contract).
package octerra
