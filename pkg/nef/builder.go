package nef

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Boundary construction failure classes. ErrNonPlanar is the distinguished
// precision failure: callers may retry construction once with tessellated
// faces. The others are invalid input geometry.
var (
	// ErrFace reports a face that cannot be assembled at all, such as a
	// loop that collapses below three distinct vertices.
	ErrFace = errors.New("nef: face assembly failed")

	// ErrNonPlanar reports a face whose vertices do not lie exactly on a
	// common plane. Exact construction cannot proceed on such input.
	ErrNonPlanar = errors.New("nef: non-planar face")

	// ErrNotClosed reports a boundary with unpaired edges.
	ErrNotClosed = errors.New("nef: boundary is not closed")

	// ErrInvalid reports a combinatorially invalid boundary, such as a
	// directed edge used by two faces.
	ErrInvalid = errors.New("nef: boundary is not valid")
)

// Face is one input boundary polygon. Vertices wind counterclockwise as
// seen from outside the solid.
type Face struct {
	Vertices []v3.Vec
	Marked   bool
}

// FacetSpec describes one facet by vertex-index cycles. The first cycle is
// the outer boundary, subsequent cycles are holes.
type FacetSpec struct {
	Cycles [][]int
	Marked bool
}

// FromFaces assembles a volumetric from an explicit face boundary. The
// boundary must be closed and valid; faces must be exactly planar
// (ErrNonPlanar otherwise, which callers typically answer by retrying with
// tessellated faces).
func FromFaces(faces []Face) (*Volumetric, error) {
	if len(faces) == 0 {
		return Empty(), nil
	}

	indices := make(map[v3.Vec]int)
	var verts []v3.Vec
	specs := make([]FacetSpec, 0, len(faces))

	for i, f := range faces {
		cycle := make([]int, 0, len(f.Vertices))
		for _, v := range f.Vertices {
			idx, ok := indices[v]
			if !ok {
				idx = len(verts)
				indices[v] = idx
				verts = append(verts, v)
			}
			if len(cycle) == 0 || cycle[len(cycle)-1] != idx {
				cycle = append(cycle, idx)
			}
		}
		for len(cycle) > 1 && cycle[0] == cycle[len(cycle)-1] {
			cycle = cycle[:len(cycle)-1]
		}
		if len(cycle) < 3 {
			return nil, fmt.Errorf("nef: face %d collapsed to %d vertices: %w", i, len(cycle), ErrFace)
		}
		specs = append(specs, FacetSpec{Cycles: [][]int{cycle}, Marked: f.Marked})
	}

	return FromCycles(verts, specs)
}

// FromCycles assembles a volumetric from indexed facet cycles. For each
// input facet an interior-facing half-facet keeps the input orientation
// and an exterior-facing twin is generated with reversed cycles.
func FromCycles(verts []v3.Vec, facets []FacetSpec) (*Volumetric, error) {
	if len(facets) == 0 {
		return Empty(), nil
	}

	exact := make([]Point, len(verts))
	for i, v := range verts {
		exact[i] = PointFromVec(v)
	}

	// Face assembly.
	for i, spec := range facets {
		if len(spec.Cycles) == 0 || len(spec.Cycles[0]) < 3 {
			return nil, fmt.Errorf("nef: facet %d has no usable outer cycle: %w", i, ErrFace)
		}
		for _, cycle := range spec.Cycles {
			if len(cycle) < 3 {
				return nil, fmt.Errorf("nef: facet %d has a degenerate cycle: %w", i, ErrFace)
			}
			for _, idx := range cycle {
				if idx < 0 || idx >= len(exact) {
					return nil, fmt.Errorf("nef: facet %d references vertex %d: %w", i, idx, ErrFace)
				}
			}
		}
	}

	// Closed-check and validity-check oracles over the directed edges of
	// all cycles.
	type dedge struct{ a, b int }
	counts := make(map[dedge]int)
	for _, spec := range facets {
		for _, cycle := range spec.Cycles {
			for i, a := range cycle {
				b := cycle[(i+1)%len(cycle)]
				counts[dedge{a, b}]++
			}
		}
	}
	for e := range counts {
		if counts[dedge{e.b, e.a}] == 0 {
			return nil, fmt.Errorf("nef: edge (%d,%d) has no twin: %w", e.a, e.b, ErrNotClosed)
		}
	}
	for e, c := range counts {
		if c > 1 {
			return nil, fmt.Errorf("nef: edge (%d,%d) used %d times: %w", e.a, e.b, c, ErrInvalid)
		}
	}

	// Exact plane derivation; the precision oracle requires every cycle
	// vertex to lie exactly on its facet plane.
	planes := make([]Plane, len(facets))
	for i, spec := range facets {
		pl, ok := CyclePlane(exact, spec.Cycles[0])
		if !ok {
			return nil, fmt.Errorf("nef: facet %d spans no area: %w", i, ErrFace)
		}
		for _, cycle := range spec.Cycles {
			for _, idx := range cycle {
				if !pl.Has(exact[idx]) {
					return nil, fmt.Errorf("nef: facet %d: %w", i, ErrNonPlanar)
				}
			}
		}
		planes[i] = pl
	}

	n := &Volumetric{verts: exact}
	n.facets = make([]Halffacet, 0, 2*len(facets))
	for i, spec := range facets {
		interior := Halffacet{
			Plane:      planes[i],
			Mark:       spec.Marked,
			VolumeMark: true,
			Cycles:     copyCycles(spec.Cycles, false),
		}
		twinPlane, _ := CyclePlane(exact, reversed(spec.Cycles[0]))
		exterior := Halffacet{
			Plane:      twinPlane,
			Mark:       spec.Marked,
			VolumeMark: false,
			Cycles:     copyCycles(spec.Cycles, true),
		}
		n.facets = append(n.facets, interior, exterior)
	}
	return n, nil
}

func copyCycles(cycles [][]int, reverse bool) [][]int {
	out := make([][]int, len(cycles))
	for i, c := range cycles {
		if reverse {
			out[i] = reversed(c)
		} else {
			out[i] = append([]int(nil), c...)
		}
	}
	return out
}

func reversed(cycle []int) []int {
	out := make([]int, len(cycle))
	for i, v := range cycle {
		out[len(cycle)-1-i] = v
	}
	return out
}
