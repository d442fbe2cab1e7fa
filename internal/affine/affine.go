// Package affine provides column access and determinant computation for
// 4x4 affine transform matrices. The matrix type keeps its entries private,
// so the columns are recovered by applying the transform to the basis
// vectors.
package affine

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Columns returns the three linear columns and the translation column of
// an affine transform.
func Columns(m sdf.M44) (cx, cy, cz, t v3.Vec) {
	t = m.MulPosition(v3.Vec{})
	cx = m.MulPosition(v3.Vec{X: 1}).Sub(t)
	cy = m.MulPosition(v3.Vec{Y: 1}).Sub(t)
	cz = m.MulPosition(v3.Vec{Z: 1}).Sub(t)
	return cx, cy, cz, t
}

// Determinant returns the determinant of the linear part of an affine
// transform. For an affine matrix this equals the full 4x4 determinant.
func Determinant(m sdf.M44) float64 {
	cx, cy, cz, _ := Columns(m)
	return cx.Dot(cy.Cross(cz))
}
