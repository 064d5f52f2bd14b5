package octerra

import "math"

// Sampler is the scalar-field collaborator the core consumes but never
// defines (spec.md §1, §6): f<0 is solid, f>=0 is outside. It is
// required to be stateless and pure (§5, "the sampler is stateless and
// pure — any number of readers, no locking"), so every method here takes
// no receiver state beyond whatever the implementation closes over.
type Sampler interface {
	// SampleAtVoxel returns f at an integer voxel-lattice corner.
	SampleAtVoxel(v UVec3) float32
	// SampleAtPos returns f at an arbitrary world position.
	SampleAtPos(p Vec3) float32
	// MaterialAt classifies the material at a world position.
	MaterialAt(p Vec3) Material
	// VoxelSize and WorldOffset fix the chunk's affine coordinate frame:
	// world = WorldOffset + voxel_index * VoxelSize.
	VoxelSize() Vec3
	WorldOffset() Vec3
}

// voxelToWorld maps an integer voxel-lattice coordinate to world space
// under the sampler's fixed affine frame.
func voxelToWorld(s Sampler, v UVec3) Vec3 {
	vs := s.VoxelSize()
	off := s.WorldOffset()
	return Vec3{
		X: off.X + float32(v.X)*vs.X,
		Y: off.Y + float32(v.Y)*vs.Y,
		Z: off.Z + float32(v.Z)*vs.Z,
	}
}

// centralDifferenceGradient estimates grad(f) at p via a central
// difference with step h (one voxel, by default) and returns it
// normalised to unit length (the zero vector if the difference vanishes),
// so its magnitude is not preserved. It serves the builder's
// surface-complexity test (§4.2) and the DC/CMS crossing-gradient step
// (§4.3 step 4, §4.6). Grounded on Yeicor-sdfx/render/dc/dc3v2.go's
// sampler-wrapper gradient estimate, generalised from its fixed epsilon
// to a caller-supplied step tied to the chunk's voxel size.
func centralDifferenceGradient(s Sampler, p Vec3, h float32) Vec3 {
	if h <= 0 {
		h = 1
	}
	dx := (s.SampleAtPos(Vec3{p.X + h, p.Y, p.Z}) - s.SampleAtPos(Vec3{p.X - h, p.Y, p.Z})) / (2 * h)
	dy := (s.SampleAtPos(Vec3{p.X, p.Y + h, p.Z}) - s.SampleAtPos(Vec3{p.X, p.Y - h, p.Z})) / (2 * h)
	dz := (s.SampleAtPos(Vec3{p.X, p.Y, p.Z + h}) - s.SampleAtPos(Vec3{p.X, p.Y, p.Z - h})) / (2 * h)
	g := Vec3{dx, dy, dz}
	return normalizeOrZero(g)
}

func normalizeOrZero(v Vec3) Vec3 {
	l := float32(math.Sqrt(float64(v.Dot(v))))
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

func isNaN32(f float32) bool { return math.IsNaN(float64(f)) }
