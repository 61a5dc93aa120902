// SPDX-License-Identifier: EPL-2.0

package render

import (
	"math"
	"testing"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/transport"
)

func approx(a, b, eps float32) bool { return math.Abs(float64(a-b)) <= float64(eps) }

func TestRoutes_MatchChannelCounts(t *testing.T) {
	t.Parallel()

	for m := audio.ChannelMap(0); m < audio.INVALID; m++ {
		if got := len(Routes(m)); got != m.NumChannels() {
			t.Errorf("len(Routes(%v)) = %d, want %d", m, got, m.NumChannels())
		}
	}
	if Routes(audio.INVALID) != nil {
		t.Error("Routes(INVALID) is not nil")
	}

	r := Routes(audio.TBE_8_2)
	if r[7] != 7 || !r[8].HeadLocked() || !r[9].HeadLocked() {
		t.Errorf("TBE_8_2 routes = %v", r)
	}
	if r := Routes(audio.TBE_8_PAIR2); r[0] != 4 || r[1] != 5 {
		t.Errorf("TBE_8_PAIR2 routes = %v", r)
	}
}

// render a plane wave from dir through the field matrix of AMBIX_4
func planeWave(r *Renderer, dir geom.Vector, p FieldParams) (left, right float32) {
	var m Matrix
	r.FieldMatrix(audio.AMBIX_4, p, &m)
	y := harmonics(dir)
	for c := range 4 {
		left += y[c] * m[c][0]
		right += y[c] * m[c][1]
	}
	return left, right
}

func defaultParams() FieldParams {
	return FieldParams{Listener: geom.Identity, Field: geom.Identity}
}

func TestFieldMatrix_OmniIsUnity(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{Ambisonic, VirtualSpeaker} {
		var m Matrix
		NewRenderer(kind).FieldMatrix(audio.AMBIX_9, defaultParams(), &m)
		if !approx(m[0][0], 1, 1e-4) || !approx(m[0][1], 1, 1e-4) {
			t.Errorf("%v: W gains = %v, want unity", kind, m[0])
		}
	}
}

func TestFieldMatrix_Direction(t *testing.T) {
	t.Parallel()

	r := NewRenderer(Ambisonic)

	tests := []struct {
		name      string
		dir       geom.Vector
		listener  geom.Quat
		wantRight bool
	}{
		{"source right", geom.Right, geom.Identity, true},
		{"source left", geom.Vector{X: -1}, geom.Identity, false},
		{"source right, listener turned around", geom.Right, geom.FromEuler(180, 0, 0), false},
		{"source ahead, listener turned left", geom.Forward, geom.FromEuler(-90, 0, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := defaultParams()
			p.Listener = tt.listener
			l, rr := planeWave(r, tt.dir, p)
			if (rr > l) != tt.wantRight {
				t.Errorf("left %v right %v, want louder right = %v", l, rr, tt.wantRight)
			}
		})
	}
}

func TestFieldMatrix_FieldRotationCancelsListener(t *testing.T) {
	t.Parallel()

	r := NewRenderer(Ambisonic)
	turn := geom.FromEuler(70, 10, 0)

	base := defaultParams()
	l0, r0 := planeWave(r, geom.Right, base)

	both := defaultParams()
	both.Listener = turn
	both.Field = turn
	l1, r1 := planeWave(r, geom.Right, both)

	if !approx(l0, l1, 1e-3) || !approx(r0, r1, 1e-3) {
		t.Errorf("rotated pair = %v/%v, want %v/%v", l1, r1, l0, r0)
	}
}

func TestFieldMatrix_Focus(t *testing.T) {
	t.Parallel()

	r := NewRenderer(Ambisonic)

	p := defaultParams()
	lFront, rFront := planeWave(r, geom.Forward, p)
	lBack, rBack := planeWave(r, geom.Vector{Z: -1}, p)

	p.Focus = transport.FocusParams{
		Enabled:        true,
		FollowListener: true,
		OffFocusDB:     -24,
		WidthDegrees:   90,
		Orientation:    geom.Identity,
	}
	lfFront, rfFront := planeWave(r, geom.Forward, p)
	lfBack, rfBack := planeWave(r, geom.Vector{Z: -1}, p)

	frontRatio := (lfFront + rfFront) / (lFront + rFront)
	backRatio := (lfBack + rfBack) / (lBack + rBack)
	if backRatio >= frontRatio {
		t.Errorf("focus ratios front %v back %v, want back attenuated more", frontRatio, backRatio)
	}
}

func TestFieldMatrix_HeadLockedBypass(t *testing.T) {
	t.Parallel()

	p := defaultParams()
	p.Listener = geom.FromEuler(123, 0, 0)

	var m Matrix
	NewRenderer(Ambisonic).FieldMatrix(audio.TBE_8_2, p, &m)
	if m[8] != [2]float32{1, 0} || m[9] != [2]float32{0, 1} {
		t.Errorf("head-locked gains = %v %v", m[8], m[9])
	}
	if m[10] != [2]float32{} {
		t.Errorf("unused channel gain = %v", m[10])
	}
}

func TestAttenuation(t *testing.T) {
	t.Parallel()

	props := DefaultAttenuation
	muted := props
	muted.MaximumDistance = 10
	muted.MaxDistanceMute = true
	linear := AttenuationProps{MinimumDistance: 1, MaximumDistance: 11, Factor: 1}

	tests := []struct {
		name  string
		mode  AttenuationMode
		props AttenuationProps
		d     float32
		want  float32
	}{
		{"inside minimum", Logarithmic, props, 0.5, 1},
		{"log doubling", Logarithmic, props, 2, 0.5},
		{"log 4x", Logarithmic, props, 4, 0.25},
		{"disabled", Disable, props, 100, 1},
		{"max distance mute", Logarithmic, muted, 10, 0},
		{"clamped at max", Logarithmic, AttenuationProps{MinimumDistance: 1, MaximumDistance: 2, Factor: 1}, 8, 0.5},
		{"linear halfway", Linear, linear, 6, 0.5},
		{"linear end", Linear, linear, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Attenuation(tt.mode, tt.props, tt.d); !approx(got, tt.want, 1e-5) {
				t.Errorf("Attenuation(%v, %v) = %v, want %v", tt.mode, tt.d, got, tt.want)
			}
		})
	}
}

func TestObjectMatrix(t *testing.T) {
	t.Parallel()

	p := ObjectParams{
		Listener:    geom.Identity,
		Position:    geom.Vector{X: 2},
		Spatialise:  true,
		Mode:        Logarithmic,
		Attenuation: DefaultAttenuation,
	}

	var m Matrix
	ObjectMatrix(1, p, &m)
	if m[0][0] > 1e-6 || !approx(m[0][1], 0.5, 1e-5) {
		t.Errorf("hard right at 2 units = %v, want {0, 0.5}", m[0])
	}

	p.Listener = geom.FromEuler(180, 0, 0)
	ObjectMatrix(1, p, &m)
	if m[0][0] <= m[0][1] {
		t.Errorf("listener turned around = %v, want louder left", m[0])
	}

	p.Spatialise = false
	ObjectMatrix(2, p, &m)
	if m[0] != [2]float32{1, 0} || m[1] != [2]float32{0, 1} {
		t.Errorf("passthrough = %v %v", m[0], m[1])
	}
}

func TestMixInto_Interpolates(t *testing.T) {
	t.Parallel()

	in := []float32{1, 1, 1, 1}
	out := make([]float32, 8)

	var prev, next Matrix
	prev[0] = [2]float32{0, 1}
	next[0] = [2]float32{1, 1}

	MixInto(out, in, 1, 4, &prev, &next, 1, 1)

	want := []float32{0.25, 1, 0.5, 1, 0.75, 1, 1, 1}
	for i := range want {
		if !approx(out[i], want[i], 1e-6) {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}

	// adds rather than overwrites
	MixInto(out, in, 1, 4, &next, &next, 0, 0)
	if out[7] != 1 {
		t.Errorf("zero gain mix changed output: %v", out)
	}
}

func BenchmarkFieldMatrix(b *testing.B) {
	r := NewRenderer(Ambisonic)
	p := defaultParams()
	p.Listener = geom.FromEuler(30, 10, 0)
	var m Matrix

	b.ReportAllocs()
	for range b.N {
		r.FieldMatrix(audio.TBE_8_2, p, &m)
	}
}
