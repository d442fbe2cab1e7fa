// Package kernel ties the geometry representations of the solid-modeling
// core together and converts between them. The Geometry interface is a
// closed variant: its implementations are *mesh.Mesh, *nef.Volumetric and
// List, and consumers dispatch over them with an explicit type switch.
// Extending the variant means extending every dispatch site; an unhandled
// type is a programming error and panics.
package kernel

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	"go.uber.org/zap"

	"github.com/chazu/heartwood/internal/affine"
	"github.com/chazu/heartwood/internal/logger"
	"github.com/chazu/heartwood/pkg/mesh"
	"github.com/chazu/heartwood/pkg/nef"
)

// Geometry is the closed variant over the representations handled by the
// kernel: surface mesh, volumetric boundary, or a composite list.
type Geometry interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() sdf.Box3
	// Dimension returns 2 or 3.
	Dimension() int
}

// Compile-time variant checks.
var _ Geometry = (*mesh.Mesh)(nil)
var _ Geometry = (*nef.Volumetric)(nil)
var _ Geometry = (List)(nil)

// List is a composite of geometries treated as one.
type List []Geometry

// BoundingBox returns the union bounding box of all members.
func (l List) BoundingBox() sdf.Box3 {
	var bb sdf.Box3
	first := true
	for _, g := range l {
		sub := g.BoundingBox()
		if first {
			bb = sub
			first = false
			continue
		}
		if sub.Min.X < bb.Min.X {
			bb.Min.X = sub.Min.X
		}
		if sub.Min.Y < bb.Min.Y {
			bb.Min.Y = sub.Min.Y
		}
		if sub.Min.Z < bb.Min.Z {
			bb.Min.Z = sub.Min.Z
		}
		if sub.Max.X > bb.Max.X {
			bb.Max.X = sub.Max.X
		}
		if sub.Max.Y > bb.Max.Y {
			bb.Max.Y = sub.Max.Y
		}
		if sub.Max.Z > bb.Max.Z {
			bb.Max.Z = sub.Max.Z
		}
	}
	return bb
}

// Dimension returns 3 if any member is three-dimensional, else 2.
func (l List) Dimension() int {
	for _, g := range l {
		if g.Dimension() == 3 {
			return 3
		}
	}
	return 2
}

// AsVolumetric returns the volumetric form of a geometry, converting a
// mesh if needed. Composite lists cannot be merged without the boolean
// engine and yield nil, as does a nil input.
func AsVolumetric(g Geometry) *nef.Volumetric {
	switch t := g.(type) {
	case nil:
		return nil
	case *nef.Volumetric:
		return t
	case *mesh.Mesh:
		return MeshToVolumetric(t)
	case List:
		return nil
	default:
		panic(fmt.Sprintf("kernel: unhandled geometry type %T", g))
	}
}

// AsMesh returns the surface-mesh form of a geometry, converting a
// volumetric if needed. Composite lists and nil yield nil.
func AsMesh(g Geometry) *mesh.Mesh {
	switch t := g.(type) {
	case nil:
		return nil
	case *mesh.Mesh:
		return t
	case *nef.Volumetric:
		if t.IsEmpty() {
			return mesh.New(3)
		}
		out, _, err := VolumetricToMesh(t)
		if err != nil {
			logger.Error("volumetric to mesh conversion failed", zap.Error(err))
			return mesh.New(3)
		}
		return out
	case List:
		return nil
	default:
		panic(fmt.Sprintf("kernel: unhandled geometry type %T", g))
	}
}

// ApplyAffine applies an affine transform to a geometry in place. The
// matrix must be invertible; a zero determinant is a programming error and
// panics.
func ApplyAffine(g Geometry, m sdf.M44) {
	if affine.Determinant(m) == 0 {
		panic("kernel: transform matrix is not invertible")
	}
	switch t := g.(type) {
	case *mesh.Mesh:
		t.Transform(m)
	case *nef.Volumetric:
		t.Transform(m)
	case List:
		for _, sub := range t {
			ApplyAffine(sub, m)
		}
	default:
		panic(fmt.Sprintf("kernel: unhandled geometry type %T", g))
	}
}
