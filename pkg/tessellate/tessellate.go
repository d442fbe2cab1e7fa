// Package tessellate turns faces-with-holes into simple triangles.
//
// Faces are projected onto the plane estimated from the outer loop, holes
// are bridged into the outer boundary, and the resulting simple polygon is
// ear-clipped. Failures are reported per face and never panic; callers drop
// the offending face and proceed.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/chazu/heartwood/internal/logger"
	"github.com/chazu/heartwood/pkg/mesh"
)

// ErrDegenerateFace is returned when a face has no usable plane, for
// example when all its vertices are collinear.
var ErrDegenerateFace = errors.New("tessellate: degenerate face")

// point2 is a loop vertex projected onto the face plane. orig is the index
// into the caller's vertex array.
type point2 struct {
	x, y float64
	orig int
}

// PolygonWithHoles triangulates one face. faces[0] is the outer boundary,
// the remaining loops are holes. The returned triangles index into verts.
// Loop orientation does not matter; the output follows the outer loop's
// winding as seen along its Newell normal.
func PolygonWithHoles(verts []v3.Vec, faces []mesh.IndexedFace) ([]mesh.IndexedTriangle, error) {
	if len(faces) == 0 || len(faces[0]) < 3 {
		return nil, ErrDegenerateFace
	}

	// A lone triangle needs no work.
	if len(faces) == 1 && len(faces[0]) == 3 {
		return []mesh.IndexedTriangle{{faces[0][0], faces[0][1], faces[0][2]}}, nil
	}

	outer3 := make([]v3.Vec, len(faces[0]))
	for i, idx := range faces[0] {
		outer3[i] = verts[idx]
	}
	normal := mesh.NewellNormal(outer3)
	if normal.Length() == 0 {
		return nil, ErrDegenerateFace
	}
	u, w := planeBasis(normal)

	project := func(loop mesh.IndexedFace) []point2 {
		out := make([]point2, len(loop))
		for i, idx := range loop {
			p := verts[idx]
			out[i] = point2{x: p.Dot(u), y: p.Dot(w), orig: idx}
		}
		return out
	}

	outer := project(faces[0])
	if signedArea(outer) < 0 {
		reverse(outer)
	}

	// Holes wind opposite to the outer loop before bridging.
	var holes [][]point2
	for _, loop := range faces[1:] {
		if len(loop) < 3 {
			continue
		}
		h := project(loop)
		if signedArea(h) > 0 {
			reverse(h)
		}
		holes = append(holes, h)
	}

	polygon, err := bridgeHoles(outer, holes)
	if err != nil {
		return nil, err
	}

	return earClip(polygon)
}

// Faces returns a fully triangulated copy of the mesh. Triangles pass
// through untouched; larger faces are triangulated individually. Faces that
// fail to triangulate are dropped with a log line so the rest of the mesh
// survives.
func Faces(m *mesh.Mesh) *mesh.Mesh {
	out := mesh.New(m.Dimension())
	out.SetConvexity(m.Convexity())

	for i, poly := range m.Polygons {
		n := len(poly.Vertices)
		if n < 3 {
			continue
		}
		if n == 3 {
			out.AppendPolygon(poly.Marked, poly.Vertices...)
			continue
		}

		r := mesh.NewReindexer()
		face := make(mesh.IndexedFace, 0, n)
		for _, v := range poly.Vertices {
			idx := r.Lookup(v)
			if len(face) == 0 || face[len(face)-1] != idx {
				face = append(face, idx)
			}
		}
		if len(face) > 1 && face[0] == face[len(face)-1] {
			face = face[:len(face)-1]
		}
		if len(face) < 3 {
			continue
		}

		tris, err := PolygonWithHoles(r.Vertices(), []mesh.IndexedFace{face})
		if err != nil {
			logger.Warn("dropping untessellatable face",
				zap.Int("face", i), zap.Error(err))
			continue
		}
		pts := r.Vertices()
		for _, t := range tris {
			out.AppendPolygon(poly.Marked, pts[t[0]], pts[t[1]], pts[t[2]])
		}
	}
	return out
}

// planeBasis returns an orthonormal basis (u, w) spanning the plane with
// the given normal, chosen so that (u, w, normal) is right-handed.
func planeBasis(normal v3.Vec) (u, w v3.Vec) {
	n := normal.Normalize()
	// Seed with the world axis least aligned with the normal.
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	seed := v3.Vec{X: 1}
	if ay <= ax && ay <= az {
		seed = v3.Vec{Y: 1}
	} else if az <= ax && az <= ay {
		seed = v3.Vec{Z: 1}
	}
	u = n.Cross(seed).Normalize()
	w = n.Cross(u)
	return u, w
}

func signedArea(loop []point2) float64 {
	area := 0.0
	for i, p := range loop {
		q := loop[(i+1)%len(loop)]
		area += p.x*q.y - q.x*p.y
	}
	return area / 2
}

func reverse(loop []point2) {
	for a, b := 0, len(loop)-1; a < b; a, b = a+1, b-1 {
		loop[a], loop[b] = loop[b], loop[a]
	}
}

// bridgeHoles splices every hole into the outer loop through a bridge edge,
// producing one simple polygon. Holes are processed right-to-left so that
// an earlier bridge cannot block a later one.
func bridgeHoles(outer []point2, holes [][]point2) ([]point2, error) {
	if len(holes) == 0 {
		return outer, nil
	}

	// Rightmost holes first.
	ordered := make([][]point2, len(holes))
	copy(ordered, holes)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && maxX(ordered[j]) > maxX(ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	polygon := outer
	for _, hole := range ordered {
		var err error
		polygon, err = spliceHole(polygon, hole)
		if err != nil {
			return nil, err
		}
	}
	return polygon, nil
}

func maxX(loop []point2) float64 {
	mx := loop[0].x
	for _, p := range loop[1:] {
		if p.x > mx {
			mx = p.x
		}
	}
	return mx
}

// spliceHole connects the hole's rightmost vertex to a visible polygon
// vertex and merges the hole loop into the polygon, duplicating the two
// bridge endpoints.
func spliceHole(polygon, hole []point2) ([]point2, error) {
	hi := 0
	for i, p := range hole {
		if p.x > hole[hi].x {
			hi = i
		}
	}
	h := hole[hi]

	// Nearest polygon vertex with an unobstructed bridge segment.
	best := -1
	bestDist := math.Inf(1)
	for i, p := range polygon {
		d := (p.x-h.x)*(p.x-h.x) + (p.y-h.y)*(p.y-h.y)
		if d >= bestDist {
			continue
		}
		if segmentClear(h, p, polygon) && segmentClear(h, p, hole) {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("tessellate: no visible bridge vertex for hole")
	}

	merged := make([]point2, 0, len(polygon)+len(hole)+2)
	merged = append(merged, polygon[:best+1]...)
	for k := 0; k <= len(hole); k++ {
		merged = append(merged, hole[(hi+k)%len(hole)])
	}
	merged = append(merged, polygon[best:]...)
	return merged, nil
}

// segmentClear reports whether segment ab crosses no edge of the loop.
// Edges sharing an endpoint with a or b do not count as crossings.
func segmentClear(a, b point2, loop []point2) bool {
	for i, p := range loop {
		q := loop[(i+1)%len(loop)]
		if samePoint(p, a) || samePoint(p, b) || samePoint(q, a) || samePoint(q, b) {
			continue
		}
		if segmentsCross(a, b, p, q) {
			return false
		}
	}
	return true
}

func samePoint(a, b point2) bool {
	return a.x == b.x && a.y == b.y
}

func cross2(o, a, b point2) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// segmentsCross reports proper intersection of segments ab and pq.
func segmentsCross(a, b, p, q point2) bool {
	d1 := cross2(a, b, p)
	d2 := cross2(a, b, q)
	d3 := cross2(p, q, a)
	d4 := cross2(p, q, b)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// earClip triangulates a simple CCW polygon. Collinear ears are skipped
// while proper ears remain, then accepted to drain degenerate runs.
func earClip(polygon []point2) ([]mesh.IndexedTriangle, error) {
	n := len(polygon)
	if n < 3 {
		return nil, ErrDegenerateFace
	}

	work := make([]point2, n)
	copy(work, polygon)

	tris := make([]mesh.IndexedTriangle, 0, n-2)
	allowCollinear := false
	for len(work) > 3 {
		clipped := false
		for i := 0; i < len(work); i++ {
			prev := work[(i-1+len(work))%len(work)]
			cur := work[i]
			next := work[(i+1)%len(work)]

			turn := cross2(prev, cur, next)
			if turn < 0 {
				continue // reflex
			}
			if turn == 0 && !allowCollinear {
				continue
			}
			if turn > 0 && containsOther(prev, cur, next, work) {
				continue
			}

			if turn > 0 {
				tris = append(tris, mesh.IndexedTriangle{prev.orig, cur.orig, next.orig})
			}
			work = append(work[:i], work[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			if !allowCollinear {
				allowCollinear = true
				continue
			}
			return nil, fmt.Errorf("tessellate: stuck with %d vertices remaining", len(work))
		}
		allowCollinear = false
	}

	if turn := cross2(work[0], work[1], work[2]); turn > 0 {
		tris = append(tris, mesh.IndexedTriangle{work[0].orig, work[1].orig, work[2].orig})
	}
	if len(tris) == 0 {
		return nil, ErrDegenerateFace
	}
	return tris, nil
}

// containsOther reports whether any other polygon vertex lies strictly
// inside the candidate ear (prev, cur, next).
func containsOther(prev, cur, next point2, polygon []point2) bool {
	for _, p := range polygon {
		if samePoint(p, prev) || samePoint(p, cur) || samePoint(p, next) {
			continue
		}
		if cross2(prev, cur, p) > 0 && cross2(cur, next, p) > 0 && cross2(next, prev, p) > 0 {
			return true
		}
	}
	return false
}
