// SPDX-License-Identifier: EPL-2.0

package render

import "github.com/ik5/spat360/audio"

// Matrix holds the left and right ear gain of every input channel.
type Matrix [audio.MaxChannels][2]float32

// Scale multiplies every gain by g.
func (m *Matrix) Scale(g float32) {
	for c := range m {
		m[c][0] *= g
		m[c][1] *= g
	}
}

// MixInto adds frames of the interleaved input, with ch channels, into the
// interleaved stereo out. Channel gains move linearly from prev to next
// across the block, and the result is further scaled by a gain moving from
// gFrom to gTo.
func MixInto(out, in []float32, ch, frames int, prev, next *Matrix, gFrom, gTo float32) {
	if frames <= 0 || ch <= 0 {
		return
	}
	frames = min(frames, len(out)/2, len(in)/ch)

	inv := 1 / float32(frames)
	gStep := (gTo - gFrom) * inv

	for c := range min(ch, audio.MaxChannels) {
		l0, r0 := prev[c][0], prev[c][1]
		lStep := (next[c][0] - l0) * inv
		rStep := (next[c][1] - r0) * inv
		if l0 == 0 && r0 == 0 && lStep == 0 && rStep == 0 {
			continue
		}

		for i := range frames {
			fi := float32(i + 1)
			g := gFrom + gStep*fi
			v := in[i*ch+c] * g
			out[2*i] += v * (l0 + lStep*fi)
			out[2*i+1] += v * (r0 + rStep*fi)
		}
	}
}
