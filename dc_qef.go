package octerra

import (
	"github.com/katalvlaran/lvlath/matrix"
	"github.com/katalvlaran/lvlath/matrix/ops"

	"github.com/voxelmesh/octerra/internal/morton"
)

// eigenTolerance and eigenMaxIter bound the Jacobi rotation sweep used to
// diagonalise a leaf's accumulated QEF.
const (
	eigenTolerance = 1e-9
	eigenMaxIter   = 100
	// singularEigenCutoff marks an eigenvalue too small to trust for
	// pseudo-inverse solving (a near-planar or near-degenerate quadric).
	singularEigenCutoff = 1e-6
)

// EstimateVertices implements C9 (§4.6): for every bipolar leaf, accumulate
// a probabilistic-plane quadric per straddling cell edge, minimise it via
// Jacobi eigendecomposition (grounded on matrix/ops.Eigen), and fall back
// to the average crossing position when the minimiser's residual exceeds
// the configured threshold. The chosen position is then clamped to the
// cell's AABB.
func EstimateVertices(store *Store, s Sampler, cfg Config) (err error) {
	defer recoverFatal(&err)
	for _, n := range store.Leaves() {
		estimateLeafVertex(s, cfg, n)
	}
	return nil
}

func estimateLeafVertex(s Sampler, cfg Config, n *Node) {
	if n.AllSameSign() {
		return // expected-degenerate: no bipolar edges
	}

	q := &Quadric{}
	var avgP, avgN Vec3
	materialCount := make(map[Material]int)
	count := 0
	h := s.VoxelSize().X
	weight := 1 / (cfg.QEFStddev*h + 1e-9)

	for _, e := range cellEdges {
		if n.CornerSign(e.A) == n.CornerSign(e.B) {
			continue // not bipolar
		}

		a := cellBoxCorner(n.VoxelBox, morton.Octant(e.A))
		b := cellBoxCorner(n.VoxelBox, morton.Octant(e.B))
		p0 := voxelToWorld(s, a)
		p1 := voxelToWorld(s, b)
		v0 := n.CornerSamples[e.A]
		v1 := n.CornerSamples[e.B]

		var alpha float32
		if v1 != v0 {
			alpha = -v0 / (v1 - v0)
		}
		pos := p0.Add(p1.Sub(p0).Scale(alpha))
		pos = refineBisection(s, p0, p1, v0, pos, cfg.CrossingRefinementIterations)

		grad := centralDifferenceGradient(s, pos, h)
		normal := normalizeOrZero(grad)
		q.Add(pos, normal, weight)

		avgP = avgP.Add(pos)
		avgN = avgN.Add(normal)
		count++

		mat := s.MaterialAt(pos)
		if mat == Air {
			if n.CornerSign(e.A) {
				mat = n.VertexMats[e.A]
			} else {
				mat = n.VertexMats[e.B]
			}
		}
		materialCount[mat]++
	}

	if count == 0 {
		return // bipolar by corner signs but no individually-bracketed edge: defensive no-op
	}

	cnt := float32(count)
	avgP = avgP.Scale(1 / cnt)
	avgN = normalizeOrZero(avgN)

	n.QEF = q
	pos, residual, ok := solveQEF(q, avgP)
	if !ok || residual > cfg.qefThresholdAt(uint8(n.Address.Depth())) {
		warnOnce("qef-fallback", "octerra: QEF minimiser rejected at depth %d (residual %.4g, threshold %.4g), falling back to average crossing position", n.Address.Depth(), residual, cfg.qefThresholdAt(uint8(n.Address.Depth())))
		pos = avgP
		residual = 0
	}
	pos = n.AABB.Clamp(pos)

	n.VertexEstimate = pos
	n.NormalEstimate = avgN
	n.QEFError = residual
	n.VertexMaterial = argMaxMaterial(materialCount)
	n.HasEstimate = true
}

// solveQEF minimises q's quadric form via Jacobi eigendecomposition of its
// symmetric 3x3 ATA, using mass-point translation (by massPoint) for
// numerical conditioning and truncated pseudo-inverse (clamping
// near-singular directions to a zero contribution, which pins the
// solution to massPoint along directions the accumulated planes do not
// constrain). Returns the solved position, its QEF residual, and whether
// eigendecomposition succeeded.
func solveQEF(q *Quadric, massPoint Vec3) (Vec3, float32, bool) {
	m, err := matrix.NewDense(3, 3)
	if err != nil {
		return massPoint, 0, false
	}
	a := q.ATA
	_ = m.Set(0, 0, float64(a[0]))
	_ = m.Set(0, 1, float64(a[1]))
	_ = m.Set(0, 2, float64(a[2]))
	_ = m.Set(1, 0, float64(a[1]))
	_ = m.Set(1, 1, float64(a[3]))
	_ = m.Set(1, 2, float64(a[4]))
	_ = m.Set(2, 0, float64(a[2]))
	_ = m.Set(2, 1, float64(a[4]))
	_ = m.Set(2, 2, float64(a[5]))

	eigenvalues, eigenvectors, err := ops.Eigen(m, eigenTolerance, eigenMaxIter)
	if err != nil {
		return massPoint, 0, false
	}

	// b = ATB - ATA * massPoint (shift right-hand side to the mass point
	// so the solved offset is small and well-conditioned).
	bx := float64(q.ATB.X) - (float64(a[0])*float64(massPoint.X) + float64(a[1])*float64(massPoint.Y) + float64(a[2])*float64(massPoint.Z))
	by := float64(q.ATB.Y) - (float64(a[1])*float64(massPoint.X) + float64(a[3])*float64(massPoint.Y) + float64(a[4])*float64(massPoint.Z))
	bz := float64(q.ATB.Z) - (float64(a[2])*float64(massPoint.X) + float64(a[4])*float64(massPoint.Y) + float64(a[5])*float64(massPoint.Z))

	// Project b onto each eigenvector, divide by its eigenvalue (zeroing
	// near-singular directions), then transform back: x = Q * diag(1/λ) * Q^T * b.
	var coeff [3]float64
	for col := 0; col < 3; col++ {
		q0, _ := eigenvectors.At(0, col)
		q1, _ := eigenvectors.At(1, col)
		q2, _ := eigenvectors.At(2, col)
		proj := q0*bx + q1*by + q2*bz
		lambda := eigenvalues[col]
		if lambda < singularEigenCutoff && lambda > -singularEigenCutoff {
			continue
		}
		coeff[col] = proj / lambda
	}

	var dx, dy, dz float64
	for col := 0; col < 3; col++ {
		q0, _ := eigenvectors.At(0, col)
		q1, _ := eigenvectors.At(1, col)
		q2, _ := eigenvectors.At(2, col)
		dx += q0 * coeff[col]
		dy += q1 * coeff[col]
		dz += q2 * coeff[col]
	}

	solved := Vec3{
		X: massPoint.X + float32(dx),
		Y: massPoint.Y + float32(dy),
		Z: massPoint.Z + float32(dz),
	}

	rx := float64(a[0])*dx + float64(a[1])*dy + float64(a[2])*dz - bx
	ry := float64(a[1])*dx + float64(a[3])*dy + float64(a[4])*dz - by
	rz := float64(a[2])*dx + float64(a[4])*dy + float64(a[5])*dz - bz
	residual := float32(rx*rx + ry*ry + rz*rz)

	return solved, residual, true
}

func argMaxMaterial(counts map[Material]int) Material {
	var best Material
	bestN := -1
	for m, n := range counts {
		if n > bestN {
			bestN = n
			best = m
		}
	}
	return best
}
