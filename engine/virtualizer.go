// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"sync/atomic"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/events"
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/pool"
	"github.com/ik5/spat360/queue"
	"github.com/ik5/spat360/render"
	"github.com/ik5/spat360/transport"
	"github.com/ik5/spat360/utils"
)

// SpeakerPosition names a channel of a loudspeaker layout.
type SpeakerPosition int

const (
	Left SpeakerPosition = iota
	Right
	Center
	LeftSurround
	RightSurround
	LeftBackSurround
	RightBackSurround
	LowFrequencyEffects
	// EndEnum terminates a layout early.
	EndEnum
)

func (s SpeakerPosition) String() string {
	switch s {
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	case Center:
		return "CENTER"
	case LeftSurround:
		return "LEFT_SURROUND"
	case RightSurround:
		return "RIGHT_SURROUND"
	case LeftBackSurround:
		return "LEFT_BACK_SURROUND"
	case RightBackSurround:
		return "RIGHT_BACK_SURROUND"
	case LowFrequencyEffects:
		return "LFE"
	default:
		return "END"
	}
}

// azimuth of each speaker in degrees, clockwise from straight ahead
var speakerAzimuth = [...]float64{
	Left:              -30,
	Right:             30,
	Center:            0,
	LeftSurround:      -110,
	RightSurround:     110,
	LeftBackSurround:  -150,
	RightBackSurround: 150,
}

// Direction is where s sits on the unit circle around the listener. LFE
// has no direction.
func (s SpeakerPosition) Direction() geom.Vector {
	if s < 0 || int(s) >= len(speakerAzimuth) {
		return geom.Vector{}
	}
	rad := speakerAzimuth[s] * math.Pi / 180
	return geom.Vector{X: float32(math.Sin(rad)), Z: float32(math.Cos(rad))}
}

const defaultChannelBufferSize = 8192

// SpeakersVirtualizer renders a multichannel speaker feed through one
// audio object per speaker.
type SpeakersVirtualizer struct {
	*virtualizer
	h pool.Handle
}

type virtualizer struct {
	e      *Engine
	owner  any
	events events.Slot

	speakers []SpeakerPosition
	objs     []*AudioObject
	ring     *queue.Ring[float32]

	detached bool

	writing  atomic.Bool
	eos      atomic.Bool
	dequeued atomic.Uint64
	conv     []float32

	// mix goroutine
	pulled   uint64
	hasPull  bool
	inter    []float32
	chans    [][]float32
	underrun bool
}

func newVirtualizer(e *Engine) *virtualizer {
	return &virtualizer{e: e}
}

// CreateSpeakersVirtualizer builds a virtualizer for layout, read up to the
// first EndEnum. channelBufferSize is the queue depth per speaker in
// frames; 0 picks a default. One audio object is taken from the pool per
// speaker.
func (e *Engine) CreateSpeakersVirtualizer(layout []SpeakerPosition, channelBufferSize int) (*SpeakersVirtualizer, error) {
	var speakers []SpeakerPosition
	for _, s := range layout {
		if s == EndEnum {
			break
		}
		if s < Left || s > LowFrequencyEffects {
			return nil, audio.ErrFail
		}
		speakers = append(speakers, s)
	}
	if channelBufferSize <= 0 {
		channelBufferSize = defaultChannelBufferSize
	}

	sv := &SpeakersVirtualizer{}
	h, v, err := e.virtualizers.Acquire(func(_ pool.Handle, item *virtualizer) {
		item.owner = sv
	})
	if err != nil {
		return nil, err
	}

	objs := make([]*AudioObject, 0, len(speakers))
	for range speakers {
		o, err := e.CreateAudioObject(OptionsDefault)
		if err != nil {
			for _, o := range objs {
				e.DestroyAudioObject(o)
			}
			e.virtualizers.Release(h, func(v *virtualizer) { v.owner = nil })
			e.log.Warn("not enough audio objects for virtualizer", "speakers", len(speakers))
			return nil, audio.ErrNoObjectsInPool
		}
		objs = append(objs, o)
	}

	n := len(speakers)
	v.speakers = speakers
	v.objs = objs
	v.ring = queue.New[float32](channelBufferSize * max(n, 1))
	v.inter = make([]float32, e.frames*n)
	v.chans = make([][]float32, n)
	for i := range v.chans {
		v.chans[i] = make([]float32, e.frames)
	}
	v.conv = make([]float32, 1024*max(n, 1))
	v.hasPull, v.underrun = false, false
	v.eos.Store(false)
	v.dequeued.Store(0)

	for i, s := range speakers {
		o := objs[i]
		_ = o.SetPosition(s.Direction())
		o.ShouldSpatialise(s != LowFrequencyEffects)
		o.SetAttenuationMode(render.Disable)
		k := i
		_ = o.SetAudioBufferCallback(func(buf []float32, _ int) {
			v.pull(len(buf))
			copy(buf, v.chans[k][:len(buf)])
		}, 1)
	}

	sv.virtualizer, sv.h = v, h
	return sv, nil
}

// DestroySpeakersVirtualizer destroys the speaker objects of sv and returns
// it to the pool. Destroying it twice does nothing.
func (e *Engine) DestroySpeakersVirtualizer(sv *SpeakersVirtualizer) {
	if sv == nil {
		return
	}
	e.virtualizers.Release(sv.h, e.releaseVirtualizer)
}

func (v *virtualizer) teardown() {
	for _, o := range v.objs {
		v.e.DestroyAudioObject(o)
	}
	v.e.waitMixIdle()
	v.objs, v.speakers = nil, nil
	v.ring, v.inter, v.chans, v.conv = nil, nil, nil, nil
	v.events.Set(nil)
	v.owner = nil
}

// pull deinterleaves one block for all speakers, once per mix tick.
func (v *virtualizer) pull(frames int) {
	seq := v.e.mixSeq.Load()
	if v.hasPull && v.pulled == seq {
		return
	}
	v.pulled, v.hasPull = seq, true

	n := len(v.speakers)
	want := frames * n
	got := v.ring.Read(v.inter[:want])
	clear(v.inter[got:want])

	for i := range frames {
		for k := range n {
			v.chans[k][i] = v.inter[i*n+k]
		}
	}
	v.dequeued.Add(uint64(got / n))

	short := got < want && !v.eos.Load()
	if short && !v.underrun {
		v.post(events.ErrorBufferUnderrun)
	}
	v.underrun = short
}

func (v *virtualizer) post(ev events.Event) {
	v.e.dispatch.Post(&v.events, ev, v.owner)
}

func (v *virtualizer) SetEventCallback(cb events.Callback) error {
	if v.detached {
		return audio.ErrFail
	}
	v.events.Set(cb)
	return nil
}

// Speakers is the layout v renders.
func (v *virtualizer) Speakers() []SpeakerPosition {
	return append([]SpeakerPosition(nil), v.speakers...)
}

// EnqueueData queues interleaved speaker frames and returns the number of
// samples accepted. It must be called from one goroutine at a time.
func (v *virtualizer) EnqueueData(data []float32) (int, error) {
	n := len(v.speakers)
	if n == 0 {
		return 0, audio.ErrFail
	}
	if len(data)%n != 0 {
		return 0, audio.ErrInvalidBufferSize
	}
	if !v.writing.CompareAndSwap(false, true) {
		return 0, audio.ErrBadThread
	}
	defer v.writing.Store(false)

	return v.enqueue(data)
}

func (v *virtualizer) enqueue(data []float32) (int, error) {
	n := len(v.speakers)
	room := v.ring.Free()
	room -= room % n
	w := v.ring.Write(data[:min(len(data), room)])
	if w < len(data) {
		return w, audio.ErrQueueFull
	}
	return w, nil
}

// EnqueueDataInt16 is EnqueueData for 16-bit samples.
func (v *virtualizer) EnqueueDataInt16(data []int16) (int, error) {
	n := len(v.speakers)
	if n == 0 {
		return 0, audio.ErrFail
	}
	if len(data)%n != 0 {
		return 0, audio.ErrInvalidBufferSize
	}
	if !v.writing.CompareAndSwap(false, true) {
		return 0, audio.ErrBadThread
	}
	defer v.writing.Store(false)

	total := 0
	for total < len(data) {
		chunk := min(len(data)-total, len(v.conv))
		c := utils.Int16sToFloat32s(v.conv[:chunk], data[total:total+chunk])
		w, err := v.enqueue(v.conv[:c])
		total += w
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// FreeSpaceInQueue is the number of samples the queue accepts.
func (v *virtualizer) FreeSpaceInQueue() int {
	n := max(len(v.speakers), 1)
	free := v.ring.Free()
	return free - free%n
}

func (v *virtualizer) QueueSize() int { return v.ring.Len() }

// FlushQueue drops everything queued. Call it while stopped.
func (v *virtualizer) FlushQueue() {
	v.ring.Reset()
	v.eos.Store(false)
}

func (v *virtualizer) SetEndOfStream(eos bool)              { v.eos.Store(eos) }
func (v *virtualizer) EndOfStreamStatus() bool              { return v.eos.Load() }
func (v *virtualizer) NumSamplesDequeuedPerChannel() uint64 { return v.dequeued.Load() }

// each applies fn to every speaker object and returns the first error.
func (v *virtualizer) each(fn func(o *AudioObject) error) error {
	if v.detached {
		return audio.ErrFail
	}
	var first error
	for _, o := range v.objs {
		if err := fn(o); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (v *virtualizer) Play() error  { return v.each((*AudioObject).Play) }
func (v *virtualizer) Pause() error { return v.each((*AudioObject).Pause) }
func (v *virtualizer) Stop() error  { return v.each((*AudioObject).Stop) }

func (v *virtualizer) PlayScheduled(ms float64) error {
	return v.each(func(o *AudioObject) error { return o.PlayScheduled(ms) })
}

func (v *virtualizer) PlayWithFade(ms float64) error {
	return v.each(func(o *AudioObject) error { return o.PlayWithFade(ms) })
}

func (v *virtualizer) PauseScheduled(ms float64) error {
	return v.each(func(o *AudioObject) error { return o.PauseScheduled(ms) })
}

func (v *virtualizer) PauseWithFade(ms float64) error {
	return v.each(func(o *AudioObject) error { return o.PauseWithFade(ms) })
}

func (v *virtualizer) StopScheduled(ms float64) error {
	return v.each(func(o *AudioObject) error { return o.StopScheduled(ms) })
}

func (v *virtualizer) StopWithFade(ms float64) error {
	return v.each(func(o *AudioObject) error { return o.StopWithFade(ms) })
}

func (v *virtualizer) PlayState() transport.PlayState {
	if len(v.objs) == 0 {
		return transport.Stopped
	}
	return v.objs[0].PlayState()
}

func (v *virtualizer) SetVolume(gain, rampMs float32, force bool) {
	for _, o := range v.objs {
		o.SetVolume(gain, rampMs, force)
	}
}

func (v *virtualizer) SetVolumeDecibels(db, rampMs float32, force bool) {
	for _, o := range v.objs {
		o.SetVolumeDecibels(db, rampMs, force)
	}
}

func (v *virtualizer) Volume() float32 {
	if len(v.objs) == 0 {
		return 1
	}
	return v.objs[0].Volume()
}

func (v *virtualizer) VolumeDecibels() float32 {
	return utils.GainToDecibels(v.Volume())
}
