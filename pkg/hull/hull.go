// Package hull computes the convex hull of a 3D point cloud.
//
// The hull is grown incrementally: an initial tetrahedron of extreme points
// is expanded point by point, replacing the faces visible from each new
// point with a fan over the horizon edges. The output is a closed,
// outward-oriented triangle boundary.
package hull

import (
	"errors"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrDegenerate is returned when the input spans fewer than three
// dimensions: under four distinct points, or all points collinear or
// coplanar.
var ErrDegenerate = errors.New("hull: input does not span three dimensions")

// face is a hull triangle with precomputed plane data.
type face struct {
	a, b, c int
	normal  v3.Vec
	offset  float64
	dead    bool
}

func newFace(pts []v3.Vec, a, b, c int) face {
	n := pts[b].Sub(pts[a]).Cross(pts[c].Sub(pts[a]))
	return face{a: a, b: b, c: c, normal: n, offset: n.Dot(pts[a])}
}

// distance is the signed distance of p from the face plane, scaled by the
// normal length. Positive means p sees the face from outside.
func (f *face) distance(p v3.Vec) float64 {
	return f.normal.Dot(p) - f.offset
}

// ConvexHull returns the convex hull boundary of the points as
// outward-oriented triangles. Duplicate points are ignored. Degenerate
// input (fewer than four affinely independent points) returns
// ErrDegenerate.
func ConvexHull(points []v3.Vec) ([]sdf.Triangle3, error) {
	pts := dedupe(points)
	if len(pts) < 4 {
		return nil, ErrDegenerate
	}

	// Tolerance scales with the cloud extent.
	eps := extent(pts) * 1e-10
	if eps == 0 {
		return nil, ErrDegenerate
	}

	i0, i1, i2, i3, err := initialTetrahedron(pts, eps)
	if err != nil {
		return nil, err
	}

	// Orient the first face away from the fourth vertex, then seed the
	// tetrahedron boundary.
	f0 := newFace(pts, i0, i1, i2)
	if f0.distance(pts[i3]) > 0 {
		i1, i2 = i2, i1
	}
	faces := []face{
		newFace(pts, i0, i1, i2),
		newFace(pts, i0, i2, i3),
		newFace(pts, i2, i1, i3),
		newFace(pts, i1, i0, i3),
	}

	used := map[int]bool{i0: true, i1: true, i2: true, i3: true}
	for pi := range pts {
		if used[pi] {
			continue
		}
		faces = addPoint(pts, faces, pi, eps)
	}

	var tris []sdf.Triangle3
	for i := range faces {
		if faces[i].dead {
			continue
		}
		tris = append(tris, sdf.Triangle3{pts[faces[i].a], pts[faces[i].b], pts[faces[i].c]})
	}
	return tris, nil
}

// addPoint expands the hull to cover pts[pi]. Faces visible from the point
// are removed and replaced by a fan from the horizon to the point. A point
// inside the current hull leaves it unchanged.
func addPoint(pts []v3.Vec, faces []face, pi int, eps float64) []face {
	p := pts[pi]

	type edge struct{ a, b int }
	horizon := make(map[edge]bool)
	visible := false

	for i := range faces {
		f := &faces[i]
		if f.dead || f.distance(p) <= eps {
			continue
		}
		visible = true
		f.dead = true
		for _, e := range [3]edge{{f.a, f.b}, {f.b, f.c}, {f.c, f.a}} {
			// An edge shared by two visible faces appears in both
			// directions and cancels; the survivors form the horizon.
			if horizon[edge{e.b, e.a}] {
				delete(horizon, edge{e.b, e.a})
			} else {
				horizon[e] = true
			}
		}
	}
	if !visible {
		return faces
	}

	for e := range horizon {
		faces = append(faces, newFace(pts, e.a, e.b, pi))
	}
	return faces
}

// initialTetrahedron picks four affinely independent seed points: the
// farthest axis-extreme pair, the point farthest from their line, and the
// point farthest from the resulting plane.
func initialTetrahedron(pts []v3.Vec, eps float64) (int, int, int, int, error) {
	ext := extremes(pts)
	i0, i1 := ext[0], ext[1]
	bestDist := -1.0
	for _, a := range ext {
		for _, b := range ext {
			d := pts[a].Sub(pts[b]).Length()
			if d > bestDist {
				bestDist = d
				i0, i1 = a, b
			}
		}
	}
	if bestDist <= eps {
		return 0, 0, 0, 0, ErrDegenerate
	}

	dir := pts[i1].Sub(pts[i0])
	i2, bestDist := -1, eps
	for i, p := range pts {
		d := dir.Cross(p.Sub(pts[i0])).Length() / dir.Length()
		if d > bestDist {
			bestDist = d
			i2 = i
		}
	}
	if i2 < 0 {
		return 0, 0, 0, 0, ErrDegenerate
	}

	n := dir.Cross(pts[i2].Sub(pts[i0])).Normalize()
	i3, bestDist := -1, eps
	for i, p := range pts {
		d := math.Abs(n.Dot(p.Sub(pts[i0])))
		if d > bestDist {
			bestDist = d
			i3 = i
		}
	}
	if i3 < 0 {
		return 0, 0, 0, 0, ErrDegenerate
	}
	return i0, i1, i2, i3, nil
}

// extremes returns the index of the minimum and maximum point along each
// axis.
func extremes(pts []v3.Vec) [6]int {
	var ext [6]int
	for i, p := range pts {
		if p.X < pts[ext[0]].X {
			ext[0] = i
		}
		if p.X > pts[ext[1]].X {
			ext[1] = i
		}
		if p.Y < pts[ext[2]].Y {
			ext[2] = i
		}
		if p.Y > pts[ext[3]].Y {
			ext[3] = i
		}
		if p.Z < pts[ext[4]].Z {
			ext[4] = i
		}
		if p.Z > pts[ext[5]].Z {
			ext[5] = i
		}
	}
	return ext
}

func extent(pts []v3.Vec) float64 {
	ext := extremes(pts)
	dx := pts[ext[1]].X - pts[ext[0]].X
	dy := pts[ext[3]].Y - pts[ext[2]].Y
	dz := pts[ext[5]].Z - pts[ext[4]].Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func dedupe(points []v3.Vec) []v3.Vec {
	seen := make(map[v3.Vec]bool, len(points))
	out := make([]v3.Vec, 0, len(points))
	for _, p := range points {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
