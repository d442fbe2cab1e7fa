package kernel

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/chazu/heartwood/internal/logger"
	"github.com/chazu/heartwood/pkg/hull"
	"github.com/chazu/heartwood/pkg/mesh"
	"github.com/chazu/heartwood/pkg/nef"
	"github.com/chazu/heartwood/pkg/tessellate"
)

// MeshToVolumetric converts a surface mesh to its volumetric boundary
// form. Conversion is best-effort: invalid input geometry is reported
// through the logger and yields the empty volumetric rather than an error,
// so a failed part never aborts the surrounding modeling operation.
//
// Convex meshes take a convex-hull fast path over the deduplicated point
// cloud. Non-convex meshes go through explicit boundary construction; if
// that fails with the non-planar precision error, construction is retried
// once with fully tessellated faces.
//
// The mesh must be three-dimensional; a 2D mesh is a programming error and
// panics.
func MeshToVolumetric(m *mesh.Mesh) *nef.Volumetric {
	if m == nil || m.IsEmpty() {
		return nef.Empty()
	}
	if m.Dimension() != 3 {
		panic(fmt.Sprintf("kernel: cannot convert %d-dimensional mesh to volumetric", m.Dimension()))
	}

	// Convexity does not cope with non-planar faces, so classify a fully
	// tessellated copy of the quantized mesh.
	psq := m.Copy()
	points := psq.QuantizeVertices()
	psTri := tessellate.Faces(psq)

	if mesh.IsApproximatelyConvex(psTri) {
		if len(points) <= 3 {
			return nef.Empty()
		}
		tris, err := hull.ConvexHull(points)
		if err != nil {
			logger.Error("convex hull construction failed", zap.Error(err))
			return nef.Empty()
		}
		faces := make([]nef.Face, len(tris))
		for i, t := range tris {
			faces[i] = nef.Face{Vertices: []v3.Vec{t[0], t[1], t[2]}, Marked: true}
		}
		n, err := nef.FromFaces(faces)
		if err != nil {
			logger.Error("volumetric construction from hull failed", zap.Error(err))
			return nef.Empty()
		}
		n.SetConvexity(m.Convexity())
		return n
	}

	n, err := nef.FromFaces(boundaryFaces(psq))
	if err == nil {
		n.SetConvexity(m.Convexity())
		return n
	}

	switch {
	case errors.Is(err, nef.ErrNonPlanar):
		// Precision failure: one retry with tessellated faces.
		logger.Info("mesh has nonplanar faces, attempting alternate construction")
		n, err = nef.FromFaces(boundaryFaces(psTri))
		if err != nil {
			logger.Error("alternate construction failed", zap.Error(err))
			return nef.Empty()
		}
		n.SetConvexity(m.Convexity())
		return n
	case errors.Is(err, nef.ErrNotClosed):
		logger.Error("the given mesh is not closed, unable to convert to volumetric")
	case errors.Is(err, nef.ErrInvalid), errors.Is(err, nef.ErrFace):
		logger.Error("the given mesh is invalid, unable to convert to volumetric", zap.Error(err))
	default:
		logger.Error("volumetric construction failed", zap.Error(err))
	}
	return nef.Empty()
}

func boundaryFaces(m *mesh.Mesh) []nef.Face {
	faces := make([]nef.Face, len(m.Polygons))
	for i, poly := range m.Polygons {
		faces[i] = nef.Face{Vertices: poly.Vertices, Marked: poly.Marked}
	}
	return faces
}

// Report accumulates the non-fatal diagnostics of a volumetric-to-mesh
// conversion: dangling edge counts from the two manifoldness checks and
// the indices of faces dropped because they failed to triangulate.
type Report struct {
	UnconnectedEdges         int
	UnconnectedTriangleEdges int
	DroppedFaces             []int
}

// VolumetricToMesh converts a volumetric boundary back to a triangle
// surface mesh.
//
// Half-facets of a volumetric may carry holes, which surface meshes do not
// allow, so every retained half-facet is handed to the tessellator as a
// face-with-holes. Faces that fail to triangulate are dropped individually
// and recorded in the report; the remaining faces proceed. Manifoldness is
// validated before and after triangulation, logged, and reported, but is
// never fatal. The returned error is non-nil only for a nil input.
func VolumetricToMesh(n *nef.Volumetric) (*mesh.Mesh, Report, error) {
	var report Report
	if n == nil {
		return nil, report, errors.New("kernel: nil volumetric")
	}

	out := mesh.New(3)
	out.SetConvexity(n.Convexity())
	if n.IsEmpty() {
		return out, report, nil
	}

	// Build the indexed poly mesh. Internal coordinates are reduced to
	// mesh precision, which can merge neighboring vertices, so collapse
	// consecutive duplicates and cull cycles that degenerate below a
	// triangle.
	r := mesh.NewReindexer()
	var polygons [][]mesh.IndexedFace
	var marked []bool
	for _, hf := range n.Halffacets() {
		// The unmarked volume is the empty space outside the solid;
		// facets incident to it mirror the interior ones.
		if !hf.VolumeMark {
			continue
		}
		var faces []mesh.IndexedFace
		for _, cycle := range hf.Cycles {
			var cur mesh.IndexedFace
			for _, vi := range cycle {
				idx := r.Lookup(mesh.SinglePrecision(n.VertexVec(vi)))
				if len(cur) == 0 || idx != cur[len(cur)-1] {
					cur = append(cur, idx)
				}
			}
			for len(cur) > 1 && cur[0] == cur[len(cur)-1] {
				cur = cur[:len(cur)-1]
			}
			if len(cur) >= 3 {
				faces = append(faces, cur)
			}
		}
		if len(faces) > 0 {
			polygons = append(polygons, faces)
			marked = append(marked, hf.Mark)
		}
	}

	report.UnconnectedEdges = mesh.UnconnectedEdges(polygons)
	if report.UnconnectedEdges > 0 {
		logger.Error("non-manifold mesh encountered",
			zap.Int("unconnected_edges", report.UnconnectedEdges))
	}

	// Triangulate each face-with-holes.
	verts := r.Vertices()
	var allTriangles []mesh.IndexedTriangle
	var triangleMarked []bool
	for i, faces := range polygons {
		tris, err := tessellate.PolygonWithHoles(verts, faces)
		if err != nil {
			report.DroppedFaces = append(report.DroppedFaces, i)
			logger.Warn("dropping face that failed to triangulate",
				zap.Int("face", i), zap.Error(err))
			continue
		}
		for _, t := range tris {
			allTriangles = append(allTriangles, t)
			triangleMarked = append(triangleMarked, marked[i])
		}
	}

	report.UnconnectedTriangleEdges = mesh.UnconnectedTriangleEdges(allTriangles)
	if report.UnconnectedTriangleEdges > 0 {
		logger.Error("non-manifold mesh created",
			zap.Int("unconnected_edges", report.UnconnectedTriangleEdges))
	}

	for i, t := range allTriangles {
		out.AppendPolygon(triangleMarked[i], verts[t[0]], verts[t[1]], verts[t[2]])
	}
	return out, report, nil
}
