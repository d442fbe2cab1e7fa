// Package mesh provides the unindexed polygon-soup surface mesh used by the
// geometry kernel, along with vertex reindexing, manifold validation and
// approximate convexity classification.
//
// A Mesh is produced by upstream modeling operations and consumed by exactly
// one conversion call. A finished mesh may be shared for concurrent
// read-only use; no concurrent mutation is supported.
package mesh

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/heartwood/internal/affine"
)

// Polygon is one face of a mesh: an ordered vertex loop plus a mark flag
// recording inside/outside provenance through boolean operations.
type Polygon struct {
	Vertices []v3.Vec
	Marked   bool
}

// Mesh is an ordered sequence of polygons. The dimension tag (2 or 3) is
// fixed for the lifetime of the mesh. The convexity hint is advisory and
// carried through conversions for downstream renderers.
type Mesh struct {
	Polygons  []Polygon
	dim       int
	convexity int
}

// New returns an empty mesh with the given dimension tag.
// The dimension must be 2 or 3.
func New(dim int) *Mesh {
	if dim != 2 && dim != 3 {
		panic(fmt.Sprintf("mesh: invalid dimension %d", dim))
	}
	return &Mesh{dim: dim, convexity: 1}
}

// Dimension returns the dimension tag (2 or 3).
func (m *Mesh) Dimension() int {
	return m.dim
}

// IsEmpty returns true if the mesh has no polygons.
func (m *Mesh) IsEmpty() bool {
	return len(m.Polygons) == 0
}

// Convexity returns the convexity hint.
func (m *Mesh) Convexity() int {
	return m.convexity
}

// SetConvexity sets the convexity hint.
func (m *Mesh) SetConvexity(c int) {
	if c < 1 {
		c = 1
	}
	m.convexity = c
}

// AppendPolygon appends a face built from the given vertex loop.
func (m *Mesh) AppendPolygon(marked bool, verts ...v3.Vec) {
	loop := make([]v3.Vec, len(verts))
	copy(loop, verts)
	m.Polygons = append(m.Polygons, Polygon{Vertices: loop, Marked: marked})
}

// Copy returns a deep copy of the mesh.
func (m *Mesh) Copy() *Mesh {
	out := &Mesh{dim: m.dim, convexity: m.convexity}
	out.Polygons = make([]Polygon, len(m.Polygons))
	for i, poly := range m.Polygons {
		verts := make([]v3.Vec, len(poly.Vertices))
		copy(verts, poly.Vertices)
		out.Polygons[i] = Polygon{Vertices: verts, Marked: poly.Marked}
	}
	return out
}

// VertexCount returns the total vertex count over all polygons.
func (m *Mesh) VertexCount() int {
	n := 0
	for _, poly := range m.Polygons {
		n += len(poly.Vertices)
	}
	return n
}

// BoundingBox returns the axis-aligned bounding box of all vertices.
// An empty mesh yields the zero box.
func (m *Mesh) BoundingBox() sdf.Box3 {
	var bb sdf.Box3
	first := true
	for _, poly := range m.Polygons {
		for _, v := range poly.Vertices {
			if first {
				bb = sdf.Box3{Min: v, Max: v}
				first = false
				continue
			}
			if v.X < bb.Min.X {
				bb.Min.X = v.X
			}
			if v.Y < bb.Min.Y {
				bb.Min.Y = v.Y
			}
			if v.Z < bb.Min.Z {
				bb.Min.Z = v.Z
			}
			if v.X > bb.Max.X {
				bb.Max.X = v.X
			}
			if v.Y > bb.Max.Y {
				bb.Max.Y = v.Y
			}
			if v.Z > bb.Max.Z {
				bb.Max.Z = v.Z
			}
		}
	}
	return bb
}

// Transform applies an affine transform to every vertex in place.
// The matrix must be invertible; a zero determinant is a programming error
// and panics. A negative determinant mirrors the mesh, so the vertex order
// of each polygon is reversed to keep outward-facing windings.
func (m *Mesh) Transform(t sdf.M44) {
	det := affine.Determinant(t)
	if det == 0 {
		panic("mesh: transform matrix is not invertible")
	}
	for i := range m.Polygons {
		verts := m.Polygons[i].Vertices
		for j, v := range verts {
			verts[j] = t.MulPosition(v)
		}
		if det < 0 {
			for a, b := 0, len(verts)-1; a < b; a, b = a+1, b-1 {
				verts[a], verts[b] = verts[b], verts[a]
			}
		}
	}
}
