package mesh

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		name string
		in   v3.Vec
		want v3.Vec
	}{
		{"exact", v3.Vec{X: 0.5, Y: -1, Z: 2}, v3.Vec{X: 0.5, Y: -1, Z: 2}},
		{"jitter", v3.Vec{X: 0.5 + 1e-9}, v3.Vec{X: 0.5}},
		{"negative jitter", v3.Vec{Y: -0.25 - 1e-9}, v3.Vec{Y: -0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quantize(tt.in); got != tt.want {
				t.Errorf("Quantize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestReindexerAssignsInInsertionOrder(t *testing.T) {
	r := NewReindexer()
	a := v3.Vec{X: 1}
	b := v3.Vec{Y: 1}
	if got := r.Lookup(a); got != 0 {
		t.Errorf("first Lookup = %d, want 0", got)
	}
	if got := r.Lookup(b); got != 1 {
		t.Errorf("second Lookup = %d, want 1", got)
	}
	if got := r.Lookup(a); got != 0 {
		t.Errorf("repeated Lookup = %d, want 0", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	verts := r.Vertices()
	if verts[0] != a || verts[1] != b {
		t.Errorf("Vertices() = %v", verts)
	}
}

func TestQuantizeVerticesMergesNearbyPoints(t *testing.T) {
	m := New(3)
	m.AppendPolygon(false,
		v3.Vec{},
		v3.Vec{X: 1},
		v3.Vec{X: 1, Y: 1e-9}, // quantizes onto the previous vertex
		v3.Vec{Y: 1},
	)
	points := m.QuantizeVertices()
	if len(points) != 3 {
		t.Fatalf("distinct points = %d, want 3", len(points))
	}
	if got := len(m.Polygons[0].Vertices); got != 3 {
		t.Errorf("polygon vertices after merge = %d, want 3", got)
	}
}

func TestQuantizeVerticesDropsDegeneratePolygons(t *testing.T) {
	m := New(3)
	// Collapses to a single point.
	m.AppendPolygon(false, v3.Vec{}, v3.Vec{X: 1e-9}, v3.Vec{Y: 1e-9})
	m.AppendPolygon(false, v3.Vec{}, v3.Vec{X: 1}, v3.Vec{Y: 1})
	m.QuantizeVertices()
	if len(m.Polygons) != 1 {
		t.Fatalf("polygons after quantize = %d, want 1", len(m.Polygons))
	}
}

func TestSinglePrecision(t *testing.T) {
	v := SinglePrecision(v3.Vec{X: 1 + 1e-10, Y: 2, Z: -3})
	if v.X != 1 {
		t.Errorf("X = %v, want 1 after float32 reduction", v.X)
	}
	if v.Y != 2 || v.Z != -3 {
		t.Errorf("exact coordinates changed: %v", v)
	}
}
