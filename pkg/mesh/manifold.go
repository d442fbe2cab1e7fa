package mesh

// IndexedFace is an ordered vertex-index loop. Within a face group the
// first loop is the outer boundary and subsequent loops are holes.
type IndexedFace []int

// IndexedTriangle is a triangle as three vertex indices.
type IndexedTriangle [3]int

// directedEdge is an ordered vertex-index pair used as an adjacency key.
// In a closed, correctly-oriented manifold every directed edge (a,b)
// appears exactly once and its reverse (b,a) appears exactly once on the
// neighboring face.
type directedEdge struct {
	a, b int
}

// edgeCounter accumulates directed edge multiplicities.
type edgeCounter map[directedEdge]int

func (ec edgeCounter) addLoop(loop []int) {
	n := len(loop)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		ec[directedEdge{loop[i], loop[(i+1)%n]}]++
	}
}

// unconnected counts directed edges that lack a reverse partner. Each
// surplus directed edge counts once, so a single open boundary edge
// reports exactly 1.
func (ec edgeCounter) unconnected() int {
	count := 0
	for e, n := range ec {
		rev := ec[directedEdge{e.b, e.a}]
		if n > rev {
			count += n - rev
		}
	}
	return count
}

// UnconnectedEdges counts dangling directed edges over a set of indexed
// faces-with-holes. A non-zero result means the loop set is not a closed
// manifold.
func UnconnectedEdges(polygons [][]IndexedFace) int {
	ec := make(edgeCounter)
	for _, faces := range polygons {
		for _, loop := range faces {
			ec.addLoop(loop)
		}
	}
	return ec.unconnected()
}

// UnconnectedTriangleEdges counts dangling directed edges over a triangle
// set.
func UnconnectedTriangleEdges(tris []IndexedTriangle) int {
	ec := make(edgeCounter)
	for _, t := range tris {
		ec.addLoop(t[:])
	}
	return ec.unconnected()
}
