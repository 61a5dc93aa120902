// SPDX-License-Identifier: EPL-2.0

package loudness

import "math"

// biquad is a direct form II transposed second order section.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	z1, z2             float64
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.z1
	f.z1 = f.b1*x - f.a1*y + f.z2
	f.z2 = f.b2*x - f.a2*y
	return y
}

func (f *biquad) reset() { f.z1, f.z2 = 0, 0 }

// kWeighting is the BS.1770 pre-filter: a high shelf modelling the head
// followed by the RLB high-pass.
type kWeighting struct {
	shelf, highpass biquad
}

func newKWeighting(rate int) kWeighting {
	fs := float64(rate)

	// shelf
	f0 := 1681.974450955533
	g := 3.999843853973347
	q := 0.7071752369554196
	k := math.Tan(math.Pi * f0 / fs)
	vh := math.Pow(10, g/20)
	vb := math.Pow(vh, 0.4996667741545416)
	a0 := 1 + k/q + k*k
	shelf := biquad{
		b0: (vh + vb*k/q + k*k) / a0,
		b1: 2 * (k*k - vh) / a0,
		b2: (vh - vb*k/q + k*k) / a0,
		a1: 2 * (k*k - 1) / a0,
		a2: (1 - k/q + k*k) / a0,
	}

	// high-pass
	f0 = 38.13547087602444
	q = 0.5003270373238773
	k = math.Tan(math.Pi * f0 / fs)
	a0 = 1 + k/q + k*k
	highpass := biquad{
		b0: 1,
		b1: -2,
		b2: 1,
		a1: 2 * (k*k - 1) / a0,
		a2: (1 - k/q + k*k) / a0,
	}

	return kWeighting{shelf: shelf, highpass: highpass}
}

func (k *kWeighting) process(x float64) float64 {
	return k.highpass.process(k.shelf.process(x))
}

func (k *kWeighting) reset() {
	k.shelf.reset()
	k.highpass.reset()
}
