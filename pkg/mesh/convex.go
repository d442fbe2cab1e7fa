package mesh

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NewellNormal estimates the normal of a (possibly slightly non-planar)
// vertex loop using Newell's method. Unlike a raw 3-point cross product it
// tolerates collinear runs and coordinate noise. The result is not
// normalized.
func NewellNormal(verts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, cur := range verts {
		next := verts[(i+1)%len(verts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// facetPlane is a face plane through point with the given (unnormalized)
// normal.
type facetPlane struct {
	point  v3.Vec
	normal v3.Vec
	valid  bool
}

// onPositiveSide reports whether p lies strictly on the positive side.
func (pl facetPlane) onPositiveSide(p v3.Vec) bool {
	return pl.normal.Dot(p.Sub(pl.point)) > 0
}

// coordEdge is a directed edge keyed by vertex coordinates. Quantized
// meshes share exact coordinate values across faces, so coordinate keys
// give the same adjacency as index keys without requiring indexing first.
type coordEdge struct {
	a, b v3.Vec
}

// IsApproximatelyConvex reports whether the mesh is closed, manifold and
// convex within 0.1 degrees. The mesh should already be fully triangulated:
// non-planar faces can produce false positives.
//
// The check proceeds in three passes: directed-edge uniqueness (repeat
// means non-manifold), per-edge dihedral test against the neighbor's plane,
// and breadth-first reachability over the face adjacency graph from face 0.
func IsApproximatelyConvex(m *Mesh) bool {
	if len(m.Polygons) == 0 {
		return true
	}

	angleThreshold := math.Cos(0.1 * math.Pi / 180)

	edgeToFacet := make(map[coordEdge]int)
	planes := make([]facetPlane, 0, len(m.Polygons))

	for i, poly := range m.Polygons {
		var pl facetPlane
		n := len(poly.Vertices)
		if n >= 3 {
			for j := 0; j < n; j++ {
				e := coordEdge{poly.Vertices[j], poly.Vertices[(j+1)%n]}
				if _, dup := edgeToFacet[e]; dup {
					return false // edge already exists: nonmanifold
				}
				edgeToFacet[e] = i
			}
			pl = facetPlane{point: poly.Vertices[0], normal: NewellNormal(poly.Vertices), valid: true}
		}
		planes = append(planes, pl)
	}

	for i, poly := range m.Polygons {
		n := len(poly.Vertices)
		if n < 3 {
			continue
		}
		for j := 0; j < n; j++ {
			rev := coordEdge{poly.Vertices[(j+1)%n], poly.Vertices[j]}
			neighbor, ok := edgeToFacet[rev]
			if !ok {
				return false // open boundary: not a closed manifold
			}
			p := poly.Vertices[(j+2)%n]
			if planes[neighbor].onPositiveSide(p) {
				// Reflex candidate: reject unless the dihedral angle is
				// within tessellation-noise tolerance.
				u := planes[neighbor].normal
				v := planes[i].normal
				cosAngle := u.Dot(v) / (u.Length() * v.Length())
				if cosAngle < angleThreshold {
					return false
				}
			}
		}
	}

	// All faces must be reachable from face 0 via reverse-edge links.
	reached := roaring.New()
	reached.Add(0)
	queue := []int{0}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		verts := m.Polygons[f].Vertices
		n := len(verts)
		for i := 0; i < n; i++ {
			neighbor, ok := edgeToFacet[coordEdge{verts[(i+1)%n], verts[i]}]
			if !ok {
				return false
			}
			if !reached.Contains(uint32(neighbor)) {
				reached.Add(uint32(neighbor))
				queue = append(queue, neighbor)
			}
		}
	}
	return reached.GetCardinality() == uint64(len(m.Polygons))
}
