package octerra

import "math"

// sphereSampler is a simple signed-distance-style scalar field for tests:
// negative inside a sphere of radius Radius centred at Center, in a
// voxel lattice of VoxelSize with WorldOffset Offset.
type sphereSampler struct {
	Center    Vec3
	Radius    float32
	Size      Vec3
	Offset    Vec3
	Materials bool
}

func (s sphereSampler) SampleAtVoxel(v UVec3) float32 {
	return s.SampleAtPos(voxelToWorld(s, v))
}

func (s sphereSampler) SampleAtPos(p Vec3) float32 {
	d := p.Sub(s.Center)
	return float32(math.Sqrt(float64(d.Dot(d)))) - s.Radius
}

func (s sphereSampler) MaterialAt(p Vec3) Material {
	if s.SampleAtPos(p) >= 0 {
		return Air
	}
	if s.Materials && p.Y > s.Center.Y {
		return Material(2)
	}
	return Material(1)
}

func (s sphereSampler) VoxelSize() Vec3   { return s.Size }
func (s sphereSampler) WorldOffset() Vec3 { return s.Offset }

func newTestSphere(side uint32, radius float32) sphereSampler {
	return sphereSampler{
		Center: Vec3{float32(side) / 2, float32(side) / 2, float32(side) / 2},
		Radius: radius,
		Size:   Vec3{1, 1, 1},
	}
}
