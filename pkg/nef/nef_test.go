package nef_test

import (
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/heartwood/pkg/nef"
)

// cubeFaces returns the six quads of the unit cube, counterclockwise as
// seen from outside.
func cubeFaces() []nef.Face {
	quads := [][]v3.Vec{
		{{}, {Y: 1}, {X: 1, Y: 1}, {X: 1}},
		{{Z: 1}, {X: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {Y: 1, Z: 1}},
		{{}, {X: 1}, {X: 1, Z: 1}, {Z: 1}},
		{{X: 1, Y: 1}, {Y: 1}, {Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}},
		{{}, {Z: 1}, {Y: 1, Z: 1}, {Y: 1}},
		{{X: 1}, {X: 1, Y: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Z: 1}},
	}
	faces := make([]nef.Face, len(quads))
	for i, q := range quads {
		faces[i] = nef.Face{Vertices: q, Marked: true}
	}
	return faces
}

func TestFromFacesCube(t *testing.T) {
	n, err := nef.FromFaces(cubeFaces())
	require.NoError(t, err)
	require.False(t, n.IsEmpty())

	assert.Equal(t, 8, n.VertexCount())
	// Every facet appears as an interior/exterior half-facet pair.
	assert.Len(t, n.Halffacets(), 12)

	bb := n.BoundingBox()
	assert.Equal(t, v3.Vec{}, bb.Min)
	assert.Equal(t, v3.Vec{X: 1, Y: 1, Z: 1}, bb.Max)

	// Interior half-facet planes point out of the solid.
	center := nef.PointFromVec(v3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
	for _, hf := range n.Halffacets() {
		if !hf.VolumeMark {
			continue
		}
		assert.Negative(t, hf.Plane.Eval(center).Sign(),
			"interior facet plane should keep the solid on its negative side")
	}
}

func TestFromFacesEmpty(t *testing.T) {
	n, err := nef.FromFaces(nil)
	require.NoError(t, err)
	assert.True(t, n.IsEmpty())
}

func TestFromFacesNotClosed(t *testing.T) {
	_, err := nef.FromFaces(cubeFaces()[:5])
	require.ErrorIs(t, err, nef.ErrNotClosed)
}

func TestFromFacesInvalid(t *testing.T) {
	faces := cubeFaces()
	faces = append(faces, faces[0]) // duplicated facet reuses its edges
	_, err := nef.FromFaces(faces)
	require.ErrorIs(t, err, nef.ErrInvalid)
}

func TestFromFacesNonPlanar(t *testing.T) {
	// Pull one corner of the cube inward; the three adjacent quads become
	// non-planar while the boundary stays closed.
	faces := cubeFaces()
	dent := func(v v3.Vec) v3.Vec {
		if v == (v3.Vec{X: 1, Y: 1, Z: 1}) {
			return v3.Vec{X: 1, Y: 1, Z: 0.5}
		}
		return v
	}
	for i := range faces {
		for j := range faces[i].Vertices {
			faces[i].Vertices[j] = dent(faces[i].Vertices[j])
		}
	}
	_, err := nef.FromFaces(faces)
	require.ErrorIs(t, err, nef.ErrNonPlanar)
}

func TestFromFacesDegenerateFace(t *testing.T) {
	faces := cubeFaces()
	faces[0].Vertices = []v3.Vec{{}, {}, {}}
	_, err := nef.FromFaces(faces)
	require.ErrorIs(t, err, nef.ErrFace)
}

func TestTransformTranslate(t *testing.T) {
	n, err := nef.FromFaces(cubeFaces())
	require.NoError(t, err)

	n.Transform(sdf.Translate3d(v3.Vec{X: 10, Y: 0, Z: -2}))
	bb := n.BoundingBox()
	assert.Equal(t, v3.Vec{X: 10, Y: 0, Z: -2}, bb.Min)
	assert.Equal(t, v3.Vec{X: 11, Y: 1, Z: -1}, bb.Max)
}

func TestTransformMirrorKeepsOrientation(t *testing.T) {
	n, err := nef.FromFaces(cubeFaces())
	require.NoError(t, err)

	n.Transform(sdf.Scale3d(v3.Vec{X: -1, Y: 1, Z: 1}))
	bb := n.BoundingBox()
	assert.Equal(t, -1.0, bb.Min.X)
	assert.Equal(t, 0.0, bb.Max.X)

	// Winding reversal must restore outward-facing interior planes.
	center := nef.PointFromVec(v3.Vec{X: -0.5, Y: 0.5, Z: 0.5})
	for _, hf := range n.Halffacets() {
		if !hf.VolumeMark {
			continue
		}
		assert.Negative(t, hf.Plane.Eval(center).Sign())
	}
}

func TestTransformSingularPanics(t *testing.T) {
	n, err := nef.FromFaces(cubeFaces())
	require.NoError(t, err)
	assert.Panics(t, func() {
		n.Transform(sdf.Scale3d(v3.Vec{X: 1, Y: 0, Z: 1}))
	})
}

// tunnelSolid builds a slab with a rectangular tunnel through it, using
// explicit facet cycles so the top and bottom facets carry hole cycles.
func tunnelSolid(t *testing.T) *nef.Volumetric {
	t.Helper()
	verts := []v3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 3, Y: 0, Z: 0}, {X: 3, Y: 3, Z: 0}, {X: 0, Y: 3, Z: 0}, // 0-3 outer bottom
		{X: 0, Y: 0, Z: 1}, {X: 3, Y: 0, Z: 1}, {X: 3, Y: 3, Z: 1}, {X: 0, Y: 3, Z: 1}, // 4-7 outer top
		{X: 1, Y: 1, Z: 0}, {X: 2, Y: 1, Z: 0}, {X: 2, Y: 2, Z: 0}, {X: 1, Y: 2, Z: 0}, // 8-11 inner bottom
		{X: 1, Y: 1, Z: 1}, {X: 2, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 1}, {X: 1, Y: 2, Z: 1}, // 12-15 inner top
	}
	specs := []nef.FacetSpec{
		{Cycles: [][]int{{0, 3, 2, 1}, {8, 9, 10, 11}}, Marked: true},   // bottom with hole
		{Cycles: [][]int{{4, 5, 6, 7}, {12, 15, 14, 13}}, Marked: true}, // top with hole
		{Cycles: [][]int{{0, 1, 5, 4}}, Marked: true},                   // outer sides
		{Cycles: [][]int{{1, 2, 6, 5}}, Marked: true},
		{Cycles: [][]int{{2, 3, 7, 6}}, Marked: true},
		{Cycles: [][]int{{3, 0, 4, 7}}, Marked: true},
		{Cycles: [][]int{{9, 8, 12, 13}}, Marked: true}, // tunnel walls
		{Cycles: [][]int{{10, 9, 13, 14}}, Marked: true},
		{Cycles: [][]int{{11, 10, 14, 15}}, Marked: true},
		{Cycles: [][]int{{8, 11, 15, 12}}, Marked: true},
	}
	n, err := nef.FromCycles(verts, specs)
	require.NoError(t, err)
	return n
}

func TestFromCyclesWithHoles(t *testing.T) {
	n := tunnelSolid(t)
	require.False(t, n.IsEmpty())
	assert.Equal(t, 16, n.VertexCount())
	assert.Len(t, n.Halffacets(), 20)

	holes := 0
	for _, hf := range n.Halffacets() {
		if hf.VolumeMark && len(hf.Cycles) > 1 {
			holes++
		}
	}
	assert.Equal(t, 2, holes, "top and bottom facets carry a hole cycle")
}

func TestCyclePlane(t *testing.T) {
	verts := []nef.Point{
		nef.PointFromVec(v3.Vec{}),
		nef.PointFromVec(v3.Vec{X: 1}),
		nef.PointFromVec(v3.Vec{X: 1, Y: 1}),
		nef.PointFromVec(v3.Vec{Y: 1}),
	}
	pl, ok := nef.CyclePlane(verts, []int{0, 1, 2, 3})
	require.True(t, ok)
	assert.Zero(t, pl.A.Sign())
	assert.Zero(t, pl.B.Sign())
	assert.Positive(t, pl.C.Sign())
	assert.True(t, pl.Has(nef.PointFromVec(v3.Vec{X: 0.25, Y: 0.75})))
	assert.False(t, pl.Has(nef.PointFromVec(v3.Vec{Z: 1e-12})))

	_, ok = nef.CyclePlane(verts[:2], []int{0, 1})
	assert.False(t, ok, "a cycle without area has no plane")
}
