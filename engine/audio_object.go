// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/iostream"
	"github.com/ik5/spat360/pool"
	"github.com/ik5/spat360/render"
	"github.com/ik5/spat360/utils"
)

// BufferCallback fills buf with numChannels interleaved channels of the
// next block of an audio object. It runs on the mix goroutine; buf is
// zeroed before the call.
type BufferCallback func(buf []float32, numChannels int)

type bufferSource struct {
	fn       BufferCallback
	channels int
}

// objectShape is how a point source is heard.
type objectShape struct {
	spatialise bool
	mode       render.AttenuationMode
	props      render.AttenuationProps
}

// AudioObject is a point source in the world, played from an asset or
// filled by a BufferCallback.
type AudioObject struct {
	*audioObject
	h pool.Handle
}

type audioObject struct {
	source
	player *filePlayer

	buffer  atomic.Pointer[bufferSource]
	shapeMu sync.Mutex
	shape   atomic.Pointer[objectShape]

	prev    render.Matrix
	next    render.Matrix
	prime   bool
	reprime atomic.Bool
}

func newAudioObject(e *Engine) *audioObject {
	o := &audioObject{source: newSource(e)}
	capFrames := max(4*e.frames, 4096)
	o.player = newFilePlayer(e, &o.source, 2, capFrames)
	o.onStop = o.player.rewind
	o.shape.Store(defaultShape())
	return o
}

func defaultShape() *objectShape {
	return &objectShape{
		spatialise: true,
		mode:       render.Logarithmic,
		props:      render.DefaultAttenuation,
	}
}

// CreateAudioObject takes an audio object from the pool.
func (e *Engine) CreateAudioObject(opts Options) (*AudioObject, error) {
	o := &AudioObject{}
	h, item, err := e.objects.Acquire(func(_ pool.Handle, item *audioObject) {
		item.owner = o
		item.player.inCB = opts&DecodeInAudioCallback != 0 || !e.cfg.Threads.UseDecoderThread
	})
	if err != nil {
		return nil, err
	}
	o.audioObject, o.h = item, h
	return o, nil
}

// DestroyAudioObject closes the asset of o and returns o to the pool.
// Destroying it twice does nothing.
func (e *Engine) DestroyAudioObject(o *AudioObject) {
	if o == nil {
		return
	}
	e.objects.Release(o.h, e.releaseObject)
}

func (o *audioObject) reset() {
	o.player.close()
	o.buffer.Store(nil)
	o.e.waitMixIdle()
	o.resetSource()
	o.player.looping.Store(false)
	o.player.setPitch(1)
	o.shape.Store(defaultShape())
	o.prime = false
}

// objectChannels keeps mono and stereo assets, and folds wider ones to
// mono.
func objectChannels(ch int) (int, error) {
	switch {
	case ch == 1 || ch == 2:
		return ch, nil
	case ch > 2 && ch <= audio.MaxChannels:
		return 1, nil
	default:
		return 0, fmt.Errorf("%d channels: %w", ch, audio.ErrInvalidChannelCount)
	}
}

// Open plays the asset at path. It replaces a buffer callback.
func (o *audioObject) Open(path string) error {
	if err := checkExt(path); err != nil {
		return err
	}
	s, err := iostream.OpenFile(path)
	if err != nil {
		return audio.Wrap(audio.ErrOpeningFile, err)
	}
	return o.open(s, nil, []io.Closer{s})
}

// OpenAsset plays the asset stored in the byte range ad of the file at
// path.
func (o *audioObject) OpenAsset(path string, ad iostream.AssetDescriptor) error {
	if err := checkExt(path); err != nil {
		return err
	}
	s, err := iostream.OpenFile(path)
	if err != nil {
		return audio.Wrap(audio.ErrOpeningFile, err)
	}
	sec, err := iostream.NewSection(s, ad)
	if err != nil {
		_ = s.Close()
		return audio.Wrap(audio.ErrOpeningFile, err)
	}
	return o.open(sec, nil, []io.Closer{s})
}

// OpenStreams plays streams[0]; streams[1], when set, probes the asset
// first. With own set the streams are closed with the object.
func (o *audioObject) OpenStreams(streams [2]iostream.Stream, own bool) error {
	if streams[0] == nil {
		return audio.ErrFail
	}
	var closers []io.Closer
	if own {
		for _, s := range streams {
			if c, ok := s.(io.Closer); ok {
				closers = append(closers, c)
			}
		}
	}
	return o.open(streams[0], streams[1], closers)
}

func (o *audioObject) open(s, probe iostream.Stream, closers []io.Closer) error {
	o.buffer.Store(nil)
	return o.player.openStreams(s, probe, closers, func(ch int) (int, error) {
		o.reprime.Store(true)
		return objectChannels(ch)
	})
}

// SetAudioBufferCallback makes o play what cb produces, in mono or stereo.
// It closes any open asset; nil removes the callback.
func (o *audioObject) SetAudioBufferCallback(cb BufferCallback, numChannels int) error {
	if err := o.usable(); err != nil {
		return err
	}
	if cb == nil {
		o.buffer.Store(nil)
		return nil
	}
	if numChannels != 1 && numChannels != 2 {
		return audio.ErrInvalidChannelCount
	}
	o.player.close()
	o.reprime.Store(true)
	o.buffer.Store(&bufferSource{fn: cb, channels: numChannels})
	return nil
}

func (o *audioObject) Close() {
	o.player.close()
	o.buffer.Store(nil)
}

// IsOpen reports whether an asset is open.
func (o *audioObject) IsOpen() bool { return o.player.isOpen() }

func (o *audioObject) SetPosition(v geom.Vector) error {
	if err := o.usable(); err != nil {
		return err
	}
	o.pose.SetPosition(v)
	return nil
}

func (o *audioObject) SeekToSample(frame int64) error { return o.player.seek(frame) }

func (o *audioObject) SeekToMs(ms float64) error {
	return o.player.seek(utils.MsToFrames(ms, o.e.rate))
}

func (o *audioObject) ElapsedTimeInSamples() int64 { return o.player.elapsed.Load() }

func (o *audioObject) ElapsedTimeInMs() float64 {
	return utils.FramesToMs(o.player.elapsed.Load(), o.e.rate)
}

func (o *audioObject) AssetDurationInSamples() int64 {
	if !o.player.isOpen() {
		return 0
	}
	return o.player.frames
}

func (o *audioObject) AssetDurationInMs() float64 {
	if !o.player.isOpen() {
		return 0
	}
	return o.player.durationMs()
}

// EnableLooping applies to assets only and reports whether it did.
func (o *audioObject) EnableLooping(loop bool) bool {
	if !o.player.isOpen() {
		return false
	}
	o.player.looping.Store(loop)
	return true
}

func (o *audioObject) LoopingEnabled() bool { return o.player.looping.Load() }

// SetPitch changes the playback speed of an asset, clamped to
// [0.001, 4].
func (o *audioObject) SetPitch(pitch float32) { o.player.setPitch(pitch) }
func (o *audioObject) Pitch() float32         { return o.player.getPitch() }

func (o *audioObject) ApplyVolumeFade(start, end, ms float32) {
	o.volume.Fade(start, end, utils.MsToFrames(float64(ms), o.e.rate))
}

func (o *audioObject) updateShape(fn func(s *objectShape)) {
	o.shapeMu.Lock()
	defer o.shapeMu.Unlock()

	next := *o.shape.Load()
	fn(&next)
	o.shape.Store(&next)
}

// ShouldSpatialise toggles between a positioned source and plain stereo
// playback.
func (o *audioObject) ShouldSpatialise(spatialise bool) {
	o.updateShape(func(s *objectShape) { s.spatialise = spatialise })
}

func (o *audioObject) IsSpatialised() bool { return o.shape.Load().spatialise }

func (o *audioObject) SetAttenuationMode(m render.AttenuationMode) {
	o.updateShape(func(s *objectShape) { s.mode = m })
}

func (o *audioObject) AttenuationMode() render.AttenuationMode { return o.shape.Load().mode }

func (o *audioObject) SetAttenuationProperties(p render.AttenuationProps) {
	o.updateShape(func(s *objectShape) { s.props = p })
}

func (o *audioObject) AttenuationProperties() render.AttenuationProps {
	return o.shape.Load().props
}

func (o *audioObject) render(t *tick) {
	buf := o.buffer.Load()
	p := o.player
	fromFile := buf == nil && p.isOpen()
	if buf == nil && !fromFile {
		return
	}
	if fromFile {
		p.fillInCallback(t)
	}

	step, gFrom, gTo := o.step(t)
	if step.Stopped && fromFile {
		defer p.rewind()
	}
	if !step.Active {
		return
	}

	var ch int
	var in []float32
	if fromFile {
		if p.sync(t) {
			return
		}
		ch = p.channels
		in = t.in[:t.frames*ch]
		n := p.read(t, in)
		clear(in[n*ch:])
	} else {
		ch = buf.channels
		in = t.in[:t.frames*ch]
		clear(in)
		buf.fn(in, ch)
	}

	shape := o.shape.Load()
	pose := o.pose.Load()
	render.ObjectMatrix(ch, render.ObjectParams{
		ListenerPosition: t.listener.Position,
		Listener:         t.listener.Rotation,
		Position:         pose.Position,
		Spatialise:       shape.spatialise,
		Mode:             shape.mode,
		Attenuation:      shape.props,
	}, &o.next)
	if !o.prime || o.reprime.Swap(false) {
		o.prev = o.next
		o.prime = true
	}
	render.MixInto(t.out, in, ch, t.frames, &o.prev, &o.next, gFrom, gTo)
	o.prev = o.next
}
