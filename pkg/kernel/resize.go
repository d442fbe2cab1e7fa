package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/heartwood/internal/logger"
)

// ComputeResizeTransform derives the axis-scaling transform that resizes
// the given bounding box to newsize. A zero newsize component leaves that
// axis alone unless its autosize flag is set, in which case the axis
// adopts the scale factor of the axis with the largest requested size (or
// 1 if none is requested). Resizing an axis with zero extent is not
// possible; that case logs a warning and returns the identity transform
// for the whole call. The result is a pure diagonal scale matrix.
func ComputeResizeTransform(bb sdf.Box3, dimension int, newsize v3.Vec, autosize [3]bool) sdf.M44 {
	scale := [3]float64{1, 1, 1}
	bbSize := [3]float64{
		bb.Max.X - bb.Min.X,
		bb.Max.Y - bb.Min.Y,
		bb.Max.Z - bb.Min.Z,
	}
	ns := [3]float64{newsize.X, newsize.Y, newsize.Z}

	if dimension > 3 {
		dimension = 3
	}

	newsizemax := 0
	for i := 0; i < dimension; i++ {
		if ns[i] != 0 {
			if bbSize[i] == 0 {
				logger.Warn("resize in direction normal to flat object is not implemented")
				return sdf.Identity3d()
			}
			scale[i] = ns[i] / bbSize[i]
			if ns[i] > ns[newsizemax] {
				newsizemax = i
			}
		}
	}

	autoscale := 1.0
	if ns[newsizemax] != 0 {
		autoscale = ns[newsizemax] / bbSize[newsizemax]
	}
	for i := 0; i < dimension; i++ {
		if autosize[i] && ns[i] == 0 {
			scale[i] = autoscale
		}
	}

	return sdf.Scale3d(v3.Vec{X: scale[0], Y: scale[1], Z: scale[2]})
}
