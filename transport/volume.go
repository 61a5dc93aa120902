// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"math"
	"sync/atomic"

	"github.com/ik5/spat360/utils"
)

type volumeRequest struct {
	start    float32
	setStart bool
	gain     float32
	frames   int64
	force    bool
}

// Volume is a linear gain with timed ramps. Requests are posted from the
// client side and picked up by the next Tick; a request posted before the
// previous one was picked up replaces it.
type Volume struct {
	req    atomic.Pointer[volumeRequest]
	target atomic.Uint32

	// owned by the mix goroutine
	cur, dest, step float32
	remaining       int64
}

func NewVolume() *Volume {
	v := &Volume{}
	v.Reset()
	return v
}

// Reset returns to unity gain with no ramp. The mix goroutine must not be
// ticking v during the call.
func (v *Volume) Reset() {
	v.req.Store(nil)
	v.target.Store(math.Float32bits(1))
	v.cur, v.dest, v.step, v.remaining = 1, 1, 0, 0
}

// Set ramps to gain over frames. With force, a ramp still in flight jumps
// to its destination before the new ramp starts; otherwise the new ramp
// starts from wherever the old one had reached.
func (v *Volume) Set(gain float32, frames int64, force bool) {
	gain = max(gain, 0)
	v.target.Store(math.Float32bits(gain))
	v.req.Store(&volumeRequest{gain: gain, frames: max(frames, 0), force: force})
}

// SetDecibels is Set with the level in dB.
func (v *Volume) SetDecibels(db float32, frames int64, force bool) {
	v.Set(utils.DecibelsToGain(db), frames, force)
}

// Fade jumps to start and ramps to end over frames.
func (v *Volume) Fade(start, end float32, frames int64) {
	end = max(end, 0)
	v.target.Store(math.Float32bits(end))
	v.req.Store(&volumeRequest{start: max(start, 0), setStart: true, gain: end, frames: max(frames, 0)})
}

// Target returns the most recently requested gain.
func (v *Volume) Target() float32 {
	return math.Float32frombits(v.target.Load())
}

// TargetDecibels is Target in dB.
func (v *Volume) TargetDecibels() float32 {
	return utils.GainToDecibels(v.Target())
}

// Tick advances the ramp by frames and returns the gain at the start and
// end of the tick. Mix goroutine only.
func (v *Volume) Tick(frames int) (from, to float32) {
	if r := v.req.Swap(nil); r != nil {
		if r.force && v.remaining > 0 {
			v.cur = v.dest
		}
		if r.setStart {
			v.cur = r.start
		}
		v.dest = r.gain
		if r.frames == 0 {
			v.cur, v.remaining = v.dest, 0
		} else {
			v.remaining = r.frames
			v.step = (v.dest - v.cur) / float32(r.frames)
		}
	}

	from = v.cur
	if v.remaining > 0 {
		n := min(int64(frames), v.remaining)
		v.cur += v.step * float32(n)
		v.remaining -= n
		if v.remaining == 0 {
			v.cur = v.dest
		}
	}
	return from, v.cur
}
