package kernel_test

import (
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"

	"github.com/chazu/heartwood/pkg/kernel"
)

func unitBox() sdf.Box3 {
	return sdf.Box3{Max: v3.Vec{X: 1, Y: 1, Z: 1}}
}

func TestComputeResizeTransform(t *testing.T) {
	probe := v3.Vec{X: 1, Y: 1, Z: 1}
	tests := []struct {
		name     string
		bb       sdf.Box3
		dim      int
		newsize  v3.Vec
		autosize [3]bool
		want     v3.Vec // image of the probe point
	}{
		{
			name:    "single axis",
			bb:      unitBox(),
			dim:     3,
			newsize: v3.Vec{X: 2},
			want:    v3.Vec{X: 2, Y: 1, Z: 1},
		},
		{
			name:     "autosize follows largest requested axis",
			bb:       unitBox(),
			dim:      3,
			newsize:  v3.Vec{X: 2},
			autosize: [3]bool{false, true, true},
			want:     v3.Vec{X: 2, Y: 2, Z: 2},
		},
		{
			name:     "all zero with autosize is identity",
			bb:       unitBox(),
			dim:      3,
			autosize: [3]bool{true, true, true},
			want:     probe,
		},
		{
			name: "all zero without autosize is identity",
			bb:   unitBox(),
			dim:  3,
			want: probe,
		},
		{
			name:     "autoscale from explicit axes",
			bb:       unitBox(),
			dim:      3,
			newsize:  v3.Vec{X: 2, Y: 3},
			autosize: [3]bool{false, false, true},
			want:     v3.Vec{X: 2, Y: 3, Z: 3},
		},
		{
			name: "uneven box",
			bb:   sdf.Box3{Max: v3.Vec{X: 2, Y: 4, Z: 8}},
			dim:  3,
			newsize: v3.Vec{X: 1, Y: 1, Z: 1},
			want:    v3.Vec{X: 0.5, Y: 0.25, Z: 0.125},
		},
		{
			name:    "2d ignores z",
			bb:      sdf.Box3{Max: v3.Vec{X: 1, Y: 1}},
			dim:     2,
			newsize: v3.Vec{X: 2, Y: 2, Z: 5},
			want:    v3.Vec{X: 2, Y: 2, Z: 1},
		},
		{
			name:    "flat axis cannot be resized",
			bb:      sdf.Box3{Max: v3.Vec{X: 1, Y: 1}}, // zero extent in z
			dim:     3,
			newsize: v3.Vec{X: 2, Y: 2, Z: 5},
			want:    probe, // whole resize degrades to identity
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := kernel.ComputeResizeTransform(tt.bb, tt.dim, tt.newsize, tt.autosize)
			assert.Equal(t, tt.want, m.MulPosition(probe))
		})
	}
}
