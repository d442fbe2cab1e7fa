// Package nef provides the volumetric boundary representation consumed by
// exact boolean algebra. Coordinates are exact rationals so that plane
// membership and closedness are decidable without floating-point tolerance.
//
// A Volumetric is built from an explicit face boundary (FromFaces) or from
// indexed cycles (FromCycles) and exposes half-facet iteration, emptiness,
// bounding box and in-place affine transform. Each half-facet carries an
// exact plane equation, a mark bit, one or more boundary cycles (the first
// is the outer boundary, the rest are holes) and the mark of its incident
// volume.
package nef

import (
	"math/big"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/heartwood/internal/affine"
)

// Point is an exact rational 3D point.
type Point struct {
	X, Y, Z *big.Rat
}

// PointFromVec converts a double-precision point to an exact point.
func PointFromVec(v v3.Vec) Point {
	return Point{
		X: new(big.Rat).SetFloat64(v.X),
		Y: new(big.Rat).SetFloat64(v.Y),
		Z: new(big.Rat).SetFloat64(v.Z),
	}
}

// Vec reduces the point to double precision.
func (p Point) Vec() v3.Vec {
	x, _ := p.X.Float64()
	y, _ := p.Y.Float64()
	z, _ := p.Z.Float64()
	return v3.Vec{X: x, Y: y, Z: z}
}

// Plane is an exact plane A*x + B*y + C*z + D = 0. The normal (A, B, C)
// points out of the incident volume of the owning half-facet.
type Plane struct {
	A, B, C, D *big.Rat
}

// Eval returns the exact plane expression value at p.
func (pl Plane) Eval(p Point) *big.Rat {
	v := new(big.Rat).Mul(pl.A, p.X)
	v.Add(v, new(big.Rat).Mul(pl.B, p.Y))
	v.Add(v, new(big.Rat).Mul(pl.C, p.Z))
	return v.Add(v, pl.D)
}

// Has reports whether p lies exactly on the plane.
func (pl Plane) Has(p Point) bool {
	return pl.Eval(p).Sign() == 0
}

// Halffacet is one oriented facet of the boundary. Cycles index into the
// owning Volumetric's vertex array; the first cycle is the outer boundary,
// subsequent cycles are holes.
type Halffacet struct {
	Plane      Plane
	Mark       bool
	VolumeMark bool // mark of the incident volume; false is outside space
	Cycles     [][]int
}

// Volumetric is a solid represented by its marked half-facet boundary.
// It is exclusively owned by its current conversion or boolean call; a
// finished value may be shared read-only.
type Volumetric struct {
	verts     []Point
	facets    []Halffacet
	convexity int
}

// Empty returns the empty volumetric.
func Empty() *Volumetric {
	return &Volumetric{}
}

// IsEmpty reports whether the volumetric bounds no space.
func (n *Volumetric) IsEmpty() bool {
	return len(n.facets) == 0
}

// Dimension returns 3; a volumetric is always a solid.
func (n *Volumetric) Dimension() int {
	return 3
}

// Convexity returns the rendering convexity hint carried through
// conversions.
func (n *Volumetric) Convexity() int {
	if n.convexity < 1 {
		return 1
	}
	return n.convexity
}

// SetConvexity sets the convexity hint.
func (n *Volumetric) SetConvexity(c int) {
	if c < 1 {
		c = 1
	}
	n.convexity = c
}

// VertexCount returns the number of distinct vertices.
func (n *Volumetric) VertexCount() int {
	return len(n.verts)
}

// Vertex returns vertex i.
func (n *Volumetric) Vertex(i int) Point {
	return n.verts[i]
}

// VertexVec returns vertex i reduced to double precision.
func (n *Volumetric) VertexVec(i int) v3.Vec {
	return n.verts[i].Vec()
}

// Halffacets returns the half-facet list. The slice is owned by the
// volumetric and must not be mutated.
func (n *Volumetric) Halffacets() []Halffacet {
	return n.facets
}

// BoundingBox returns the axis-aligned bounding box of all vertices in
// double precision. The empty volumetric yields the zero box.
func (n *Volumetric) BoundingBox() sdf.Box3 {
	var bb sdf.Box3
	for i, p := range n.verts {
		v := p.Vec()
		if i == 0 {
			bb = sdf.Box3{Min: v, Max: v}
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
	return bb
}

// Transform applies an affine transform to every vertex in place, in exact
// arithmetic, and rebuilds the facet planes. The matrix must be invertible;
// a zero determinant is a programming error and panics.
func (n *Volumetric) Transform(m sdf.M44) {
	if affine.Determinant(m) == 0 {
		panic("nef: transform matrix is not invertible")
	}

	cx, cy, cz, t := affine.Columns(m)
	rcx, rcy, rcz, rt := PointFromVec(cx), PointFromVec(cy), PointFromVec(cz), PointFromVec(t)

	for i, p := range n.verts {
		n.verts[i] = Point{
			X: dot4(rcx.X, p.X, rcy.X, p.Y, rcz.X, p.Z, rt.X),
			Y: dot4(rcx.Y, p.X, rcy.Y, p.Y, rcz.Y, p.Z, rt.Y),
			Z: dot4(rcx.Z, p.X, rcy.Z, p.Y, rcz.Z, p.Z, rt.Z),
		}
	}

	// A mirroring transform reverses winding handedness; reversing every
	// cycle restores the outward orientation invariant.
	if affine.Determinant(m) < 0 {
		for i := range n.facets {
			for _, cycle := range n.facets[i].Cycles {
				for a, b := 0, len(cycle)-1; a < b; a, b = a+1, b-1 {
					cycle[a], cycle[b] = cycle[b], cycle[a]
				}
			}
		}
	}

	// The affine map preserves exact coplanarity, so planes can be
	// re-derived from the transformed outer cycles.
	for i := range n.facets {
		f := &n.facets[i]
		if len(f.Cycles) == 0 || len(f.Cycles[0]) < 3 {
			continue
		}
		if pl, ok := CyclePlane(n.verts, f.Cycles[0]); ok {
			f.Plane = pl
		}
	}
}

// dot4 returns a*b + c*d + e*f + g.
func dot4(a, b, c, d, e, f, g *big.Rat) *big.Rat {
	v := new(big.Rat).Mul(a, b)
	v.Add(v, new(big.Rat).Mul(c, d))
	v.Add(v, new(big.Rat).Mul(e, f))
	return v.Add(v, g)
}

// CyclePlane derives the exact plane of a vertex-index cycle using
// Newell's method in rational arithmetic. The plane normal follows the
// cycle winding by the right-hand rule. Returns false when the cycle
// spans no area.
func CyclePlane(verts []Point, cycle []int) (Plane, bool) {
	nx, ny, nz := new(big.Rat), new(big.Rat), new(big.Rat)
	tmp := new(big.Rat)
	for i, idx := range cycle {
		cur := verts[idx]
		next := verts[cycle[(i+1)%len(cycle)]]
		// nx += (cur.y - next.y) * (cur.z + next.z), and cyclically.
		nx.Add(nx, tmp.Mul(new(big.Rat).Sub(cur.Y, next.Y), new(big.Rat).Add(cur.Z, next.Z)))
		ny.Add(ny, tmp.Mul(new(big.Rat).Sub(cur.Z, next.Z), new(big.Rat).Add(cur.X, next.X)))
		nz.Add(nz, tmp.Mul(new(big.Rat).Sub(cur.X, next.X), new(big.Rat).Add(cur.Y, next.Y)))
	}
	if nx.Sign() == 0 && ny.Sign() == 0 && nz.Sign() == 0 {
		return Plane{}, false
	}
	a := verts[cycle[0]]
	d := new(big.Rat).Neg(dot4(nx, a.X, ny, a.Y, nz, a.Z, new(big.Rat)))
	return Plane{A: nx, B: ny, C: nz, D: d}, true
}
