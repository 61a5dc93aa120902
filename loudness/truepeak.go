// SPDX-License-Identifier: EPL-2.0

package loudness

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

const (
	tpWindow     = 512
	tpHop        = tpWindow / 2
	tpOversample = 4
)

// truePeak estimates the inter-sample peak of one channel by band-limited
// oversampling. Overlapping windows are zero-padded in the frequency
// domain and only the middle half of each oversampled window is trusted,
// away from the circular wrap at its edges.
type truePeak struct {
	buf  []float64
	n    int
	up   []complex128
	peak float64
}

func newTruePeak() *truePeak {
	return &truePeak{
		buf: make([]float64, tpWindow),
		up:  make([]complex128, tpWindow*tpOversample),
	}
}

func (t *truePeak) push(x float64) {
	t.buf[t.n] = x
	t.n++
	if t.n < tpWindow {
		return
	}

	t.window()
	copy(t.buf, t.buf[tpHop:])
	t.n = tpWindow - tpHop
}

func (t *truePeak) window() {
	bins := fft.FFTReal(t.buf)

	clear(t.up)
	half := tpWindow / 2
	copy(t.up[:half], bins[:half])
	// split the nyquist bin between both ends
	t.up[half] = bins[half] / 2
	t.up[len(t.up)-half] = bins[half] / 2
	copy(t.up[len(t.up)-half+1:], bins[half+1:])

	out := fft.IFFT(t.up)
	lo, hi := tpWindow*tpOversample/4, tpWindow*tpOversample*3/4
	for _, v := range out[lo:hi] {
		t.peak = max(t.peak, math.Abs(real(v))*tpOversample)
	}
}

func (t *truePeak) reset() {
	clear(t.buf)
	t.n = 0
	t.peak = 0
}
