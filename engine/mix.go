// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"time"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/events"
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/transport"
)

// maxPitch bounds how many input frames one output frame may consume.
const maxPitch = 4

// tick is the state shared by every source while one block is mixed.
type tick struct {
	now      uint64
	seq      uint64
	frames   int
	out      []float32
	listener transport.Pose
	tracking geom.Vector

	// in holds one source's input block, up to MaxChannels wide.
	in []float32
	// peek holds the input of a varispeed read, one history frame
	// included.
	peek []float32
}

func newTick(frames int) tick {
	return tick{
		in:   make([]float32, frames*audio.MaxChannels),
		peek: make([]float32, (maxPitch*frames+2)*2),
	}
}

// mix renders len(out)/2 frames of interleaved stereo, in blocks of at most
// the engine buffer size. It is the device callback.
func (e *Engine) mix(out []float32) {
	block := 2 * e.frames
	for off := 0; off < len(out); off += block {
		end := min(off+block, len(out))
		e.render(out[off:end])
	}
}

// GetAudioMix pulls numSamples interleaved samples of the mix into buf. It
// is only available when the engine runs without a device.
func (e *Engine) GetAudioMix(buf []float32, numSamples, numChannels int) error {
	if e.dev != nil {
		return audio.ErrNotSupported
	}
	if numChannels != 2 {
		return audio.ErrInvalidChannelCount
	}
	if numSamples <= 0 || numSamples%2 != 0 || numSamples > len(buf) {
		return audio.ErrInvalidBufferSize
	}
	e.mix(buf[:numSamples])
	return nil
}

func (e *Engine) render(out []float32) {
	var start time.Time
	if e.dev != nil {
		start = time.Now()
	}

	e.inMix.Store(true)

	frames := len(out) / 2
	clear(out)

	t := &e.t
	t.now = e.dsp.Load()
	t.seq = e.mixSeq.Load()
	t.frames = frames
	t.out = out
	t.listener = e.listener.Load()
	t.tracking = geom.Vector{}
	if tr := e.tracking.Load(); tr != nil {
		t.tracking = t.listener.Position.Sub(tr.initial).ClampAxes(1)
	}

	for _, q := range e.queues.Live() {
		q.render(t)
	}
	for _, f := range e.files.Live() {
		f.render(t)
	}
	for _, o := range e.objects.Live() {
		o.render(t)
	}

	if tone := e.tone.Load(); tone != nil {
		e.renderTone(out, tone)
	}
	if cb := e.mixCallback.Load(); cb != nil {
		(*cb)(out, 2, frames)
	}
	if e.loudOn.Load() {
		e.feedLoudness(out)
	}

	e.dsp.Add(uint64(frames))
	e.mixSeq.Add(1)
	e.inMix.Store(false)

	if e.dev != nil && time.Since(start) > e.bufferDuration(frames) {
		e.dispatch.Post(&e.events, events.ErrorBufferUnderrun, e)
	}
}

func (e *Engine) renderTone(out []float32, tone *testTone) {
	step := 2 * math.Pi * float64(tone.freq) / float64(e.rate)
	for i := 0; i+1 < len(out); i += 2 {
		v := tone.gain * float32(math.Sin(e.tonePhase))
		out[i], out[i+1] = v, v
		e.tonePhase += step
		if e.tonePhase >= 2*math.Pi {
			e.tonePhase -= 2 * math.Pi
		}
	}
}
