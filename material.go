package octerra

// Material is a categorical classification of space, derived by the
// sampler from sign and (optionally) a biome/material lookup external to
// this core (spec.md §1: "map generation, biome synthesis... out of
// scope"). Air is reserved for f>=0 (outside solid); any other value is
// a solid material id assigned by the sampler.
type Material uint32

// Air is the reserved material id for "outside solid" (f>=0). Sampler
// implementations are free to use any other value for solid materials.
const Air Material = 0

// Vec3 is a plain 3-vector used throughout for positions, normals, and
// gradients. It intentionally carries no methods beyond basic vector
// algebra: the core never needs a general linear-algebra type here, only
// addition/scaling (the QEF solver in dc_qef.go is the one place that
// needs a real linear-algebra backend, and uses lvlath/matrix for it).
type Vec3 struct {
	X, Y, Z float32
}

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float32) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float32   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// UVec3 is an unsigned integer lattice coordinate (voxel corner index).
type UVec3 struct {
	X, Y, Z uint32
}

func (v UVec3) Add(o UVec3) UVec3 { return UVec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// AABB is an axis-aligned bounding box, (Min, Max) in world space.
type AABB struct {
	Min, Max Vec3
}

// Contains reports whether p lies within the box, inclusive of its
// boundary.
func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Clamp returns p moved onto the box if it lies outside it.
func (b AABB) Clamp(p Vec3) Vec3 {
	clamp1 := func(v, lo, hi float32) float32 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	return Vec3{
		X: clamp1(p.X, b.Min.X, b.Max.X),
		Y: clamp1(p.Y, b.Min.Y, b.Max.Y),
		Z: clamp1(p.Z, b.Min.Z, b.Max.Z),
	}
}
