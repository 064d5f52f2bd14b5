package octerra

// Config bundles every tunable threshold consumed by the core. A single
// Config value is threaded through every entry point (Extract,
// ExtractSeam); there is no module-level mutable state, so two calls
// with equal Config values and equal samplers are fully independent and
// reproducible.
type Config struct {
	// ComplexSurfaceThreshold is the cosine threshold below which a
	// pair of corner gradients is considered high-curvature enough to
	// force subdivision (builder.go, edge/surface-complexity test).
	ComplexSurfaceThreshold float32

	// MinOctreeRes and MaxOctreeRes bound a leaf's voxel extent (builder.go,
	// buildRec): a cell is never subdivided once its extent would drop
	// below MinOctreeRes voxels across, regardless of ambiguity/complexity,
	// and is always subdivided while its extent still exceeds MaxOctreeRes
	// voxels across, regardless of how uniform its corner samples are —
	// MaxOctreeRes bounds the coarsest leaf extraction will ever emit, not
	// just the finest (that bound is implicitly 1 voxel, §4.2).
	MinOctreeRes uint8
	MaxOctreeRes uint8

	// QEFStddev is the position/normal standard deviation used when
	// accumulating a leaf's probabilistic plane quadrics (dc_qef.go).
	QEFStddev float32

	// QEFThreshold is the default residual threshold above which the
	// QEF minimiser is rejected in favour of the accumulated average
	// crossing position (dc_qef.go, §4.6).
	QEFThreshold float32

	// QEFThresholdByDepth overrides QEFThreshold per octree depth, used
	// by the DC vertex estimator (dc_qef.go) for a leaf at that depth; a
	// depth absent from the map falls back to QEFThreshold.
	QEFThresholdByDepth map[uint8]float32

	// CrossingRefinementIterations bounds the bisection refinement
	// applied to a linearly-interpolated crossing position (cms_segment.go,
	// dc_qef.go). Zero disables refinement.
	CrossingRefinementIterations uint8
}

// DefaultConfig returns the documented default thresholds (spec.md §6).
func DefaultConfig() Config {
	return Config{
		ComplexSurfaceThreshold:      0.85,
		MinOctreeRes:                 1,
		MaxOctreeRes:                 16,
		QEFStddev:                    0.1,
		QEFThreshold:                 0.01,
		QEFThresholdByDepth:          nil,
		CrossingRefinementIterations: 0,
	}
}

// qefThresholdAt returns the configured residual threshold for the given
// octree depth, falling back to the flat QEFThreshold when the map is
// nil or has no entry for that depth.
func (c Config) qefThresholdAt(depth uint8) float32 {
	if c.QEFThresholdByDepth != nil {
		if t, ok := c.QEFThresholdByDepth[depth]; ok {
			return t
		}
	}
	return c.QEFThreshold
}
