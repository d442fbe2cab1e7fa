package mesh

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// gridFine is the quantization grid pitch (2^-20). Vertices closer than
// half a grid cell per axis merge to the same representative.
const gridFine = 0.00000095367431640625

// Quantize snaps a point to the fine quantization grid.
func Quantize(v v3.Vec) v3.Vec {
	return v3.Vec{
		X: math.Round(v.X/gridFine) * gridFine,
		Y: math.Round(v.Y/gridFine) * gridFine,
		Z: math.Round(v.Z/gridFine) * gridFine,
	}
}

// SinglePrecision reduces a point to float32 precision per axis. Used when
// converting exact volumetric coordinates down to mesh precision, where
// nearby vertices may merge.
func SinglePrecision(v v3.Vec) v3.Vec {
	return v3.Vec{
		X: float64(float32(v.X)),
		Y: float64(float32(v.Y)),
		Z: float64(float32(v.Z)),
	}
}

// Reindexer deduplicates points into a compact index space. Insertion order
// is preserved and is the only ordering guarantee. Callers reduce precision
// (Quantize, SinglePrecision) before lookup if near-duplicates should merge.
type Reindexer struct {
	indices map[v3.Vec]int
	verts   []v3.Vec
}

// NewReindexer returns an empty reindexer.
func NewReindexer() *Reindexer {
	return &Reindexer{indices: make(map[v3.Vec]int)}
}

// Lookup returns the index for the point, appending it if unseen.
func (r *Reindexer) Lookup(v v3.Vec) int {
	if idx, ok := r.indices[v]; ok {
		return idx
	}
	idx := len(r.verts)
	r.indices[v] = idx
	r.verts = append(r.verts, v)
	return idx
}

// Len returns the number of distinct points seen.
func (r *Reindexer) Len() int {
	return len(r.verts)
}

// Vertices returns the deduplicated points in insertion order. The returned
// slice is owned by the reindexer and must not be mutated.
func (r *Reindexer) Vertices() []v3.Vec {
	return r.verts
}

// QuantizeVertices snaps every vertex to the quantization grid in place,
// merging near-duplicates. Consecutive duplicate vertices created by the
// merge are collapsed and faces that degenerate below 3 vertices are
// dropped. It returns the deduplicated point cloud.
func (m *Mesh) QuantizeVertices() []v3.Vec {
	r := NewReindexer()
	kept := m.Polygons[:0]
	for _, poly := range m.Polygons {
		loop := poly.Vertices[:0]
		for _, v := range poly.Vertices {
			q := r.verts[r.Lookup(Quantize(v))]
			if len(loop) == 0 || q != loop[len(loop)-1] {
				loop = append(loop, q)
			}
		}
		for len(loop) > 1 && loop[0] == loop[len(loop)-1] {
			loop = loop[:len(loop)-1]
		}
		if len(loop) >= 3 {
			kept = append(kept, Polygon{Vertices: loop, Marked: poly.Marked})
		}
	}
	m.Polygons = kept
	return r.Vertices()
}
