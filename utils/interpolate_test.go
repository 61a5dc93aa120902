// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{"start returns y1", 0, 1, 2, 3, 0, 1, 0.001},
		{"end returns y2", 0, 1, 2, 3, 1, 2, 0.001},
		{"linear data stays linear", 1, 2, 3, 4, 0.25, 2.25, 0.01},
		{"zero values", 0, 0, 0, 0, 0.5, 0, 0.001},
		{"symmetric crossing", -1, -0.5, 0.5, 1, 0.5, 0, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if diff := float32(math.Abs(float64(got - tt.want))); diff > tt.tolerance {
				t.Errorf("CubicInterpolate() = %v, want %v (diff %v)", got, tt.want, diff)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	t.Parallel()

	if got := Lerp(0, 1, 0.25); got != 0.25 {
		t.Errorf("Lerp(0,1,0.25) = %v", got)
	}
	if got := Lerp(1, 0, 1); got != 0 {
		t.Errorf("Lerp(1,0,1) = %v", got)
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	var result float32
	b.ReportAllocs()
	for range b.N {
		result = CubicInterpolate(0.5, 1.0, 0.8, 0.3, 0.5)
	}
	_ = result
}
