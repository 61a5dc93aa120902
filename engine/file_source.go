// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/iostream"
	"github.com/ik5/spat360/pool"
	"github.com/ik5/spat360/render"
	"github.com/ik5/spat360/utils"
)

// SyncMode selects the clock a file source follows.
type SyncMode int

const (
	// SyncInternal plays at the engine rate.
	SyncInternal SyncMode = iota
	// SyncExternal follows the clock given to SetExternalClockInMs.
	SyncExternal
)

func (m SyncMode) String() string {
	switch m {
	case SyncInternal:
		return "INTERNAL"
	case SyncExternal:
		return "EXTERNAL"
	default:
		return "INVALID"
	}
}

const (
	defaultFreewheelMs = 1000
	defaultResyncMs    = 200
)

// SpatDecoderFile is a sound field played from an asset.
type SpatDecoderFile struct {
	*spatFile
	h pool.Handle
}

type clockSample struct {
	ms float64
	at uint64
}

type spatFile struct {
	source
	player *filePlayer

	chMap atomic.Int32
	prev  render.Matrix
	next  render.Matrix
	prime bool

	syncMode    atomic.Int32
	clock       atomic.Pointer[clockSample]
	freewheelMs atomic.Uint64
	resyncMs    atomic.Uint64
	lastCheck   uint64
}

func newSpatFile(e *Engine) *spatFile {
	f := &spatFile{source: newSource(e)}
	capFrames := max(8*e.frames, e.rate/2)
	f.player = newFilePlayer(e, &f.source, audio.MaxChannels, capFrames)
	f.onStop = f.player.rewind
	f.resetSync()
	return f
}

// CreateSpatDecoderFile takes a file source from the pool.
func (e *Engine) CreateSpatDecoderFile(opts Options) (*SpatDecoderFile, error) {
	f := &SpatDecoderFile{}
	h, item, err := e.files.Acquire(func(_ pool.Handle, item *spatFile) {
		item.owner = f
		item.player.inCB = opts&DecodeInAudioCallback != 0 || !e.cfg.Threads.UseDecoderThread
	})
	if err != nil {
		return nil, err
	}
	f.spatFile, f.h = item, h
	return f, nil
}

// DestroySpatDecoderFile closes the asset of f and returns f to the pool.
// Destroying it twice does nothing.
func (e *Engine) DestroySpatDecoderFile(f *SpatDecoderFile) {
	if f == nil {
		return
	}
	e.files.Release(f.h, e.releaseFile)
}

func (f *spatFile) reset() {
	f.player.close()
	f.resetSource()
	f.player.looping.Store(false)
	f.resetSync()
	f.prime = false
}

func (f *spatFile) resetSync() {
	f.syncMode.Store(int32(SyncInternal))
	f.clock.Store(nil)
	f.freewheelMs.Store(math.Float64bits(defaultFreewheelMs))
	f.resyncMs.Store(math.Float64bits(defaultResyncMs))
	f.lastCheck = 0
}

func checkExt(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".tbe") {
		return fmt.Errorf("%s: %w", path, audio.ErrInvalidHeader)
	}
	return nil
}

// Open plays the asset at path, laid out as m. An asset whose channel
// count does not match m is played with the map that fits its count.
func (f *spatFile) Open(path string, m audio.ChannelMap) error {
	if err := checkExt(path); err != nil {
		return err
	}
	s, err := iostream.OpenFile(path)
	if err != nil {
		return audio.Wrap(audio.ErrOpeningFile, err)
	}
	return f.open(s, nil, []io.Closer{s}, m)
}

// OpenAsset plays the asset stored in the byte range ad of the file at
// path.
func (f *spatFile) OpenAsset(path string, ad iostream.AssetDescriptor, m audio.ChannelMap) error {
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
	return f.open(sec, nil, []io.Closer{s}, m)
}

// OpenStreams plays streams[0]; streams[1], when set, is used to probe the
// asset first. With own set the streams are closed with the source.
func (f *spatFile) OpenStreams(streams [2]iostream.Stream, own bool, m audio.ChannelMap) error {
	if streams[0] == nil {
		return audio.ErrFail
	}
	var closers []io.Closer
	if own {
		for _, s := range streams {
			if c, ok := s.(io.Closer); ok && s != nil {
				closers = append(closers, c)
			}
		}
	}
	return f.open(streams[0], streams[1], closers, m)
}

func (f *spatFile) open(s, probe iostream.Stream, closers []io.Closer, m audio.ChannelMap) error {
	return f.player.openStreams(s, probe, closers, func(ch int) (int, error) {
		f.prime = false
		if m.Valid() && m.NumChannels() == ch {
			f.chMap.Store(int32(m))
			return ch, nil
		}
		fit, ok := audio.MapForChannels(ch)
		if !ok {
			return 0, fmt.Errorf("%d channels: %w", ch, audio.ErrInvalidChannelCount)
		}
		f.e.log.Debug("channel map does not fit asset", "requested", m, "using", fit)
		f.chMap.Store(int32(fit))
		return ch, nil
	})
}

func (f *spatFile) Close()       { f.player.close() }
func (f *spatFile) IsOpen() bool { return f.player.isOpen() }

// ChannelMap is the layout the open asset is played with.
func (f *spatFile) ChannelMap() audio.ChannelMap {
	if !f.player.isOpen() {
		return audio.INVALID
	}
	return audio.ChannelMap(f.chMap.Load())
}

// SetPosition is not supported by sound fields.
func (f *spatFile) SetPosition(geom.Vector) error { return audio.ErrNotSupported }

// SeekToSample moves the playhead to frame, at the engine rate.
func (f *spatFile) SeekToSample(frame int64) error { return f.player.seek(frame) }

func (f *spatFile) SeekToMs(ms float64) error {
	return f.player.seek(utils.MsToFrames(ms, f.e.rate))
}

func (f *spatFile) ElapsedTimeInSamples() int64 { return f.player.elapsed.Load() }

func (f *spatFile) ElapsedTimeInMs() float64 {
	return utils.FramesToMs(f.player.elapsed.Load(), f.e.rate)
}

// AssetDurationInSamples is 0 when no asset is open or its length is
// unknown.
func (f *spatFile) AssetDurationInSamples() int64 {
	if !f.player.isOpen() {
		return 0
	}
	return f.player.frames
}

func (f *spatFile) AssetDurationInMs() float64 {
	if !f.player.isOpen() {
		return 0
	}
	return f.player.durationMs()
}

// EnableLooping makes the asset restart at its end instead of stopping.
func (f *spatFile) EnableLooping(loop bool) { f.player.looping.Store(loop) }
func (f *spatFile) LoopingEnabled() bool    { return f.player.looping.Load() }

// ApplyVolumeFade ramps the volume from start to end over ms.
func (f *spatFile) ApplyVolumeFade(start, end, ms float32) {
	f.volume.Fade(start, end, utils.MsToFrames(float64(ms), f.e.rate))
}

func (f *spatFile) SetSyncMode(m SyncMode) {
	f.syncMode.Store(int32(m))
}

func (f *spatFile) SyncMode() SyncMode { return SyncMode(f.syncMode.Load()) }

// SetExternalClockInMs reports where the external clock is now.
func (f *spatFile) SetExternalClockInMs(ms float64) {
	f.clock.Store(&clockSample{ms: ms, at: f.e.dsp.Load()})
}

// SetFreewheelTimeInMs sets how long playback runs between drift checks.
func (f *spatFile) SetFreewheelTimeInMs(ms float64) {
	f.freewheelMs.Store(math.Float64bits(max(ms, 0)))
}

func (f *spatFile) FreewheelTimeInMs() float64 {
	return math.Float64frombits(f.freewheelMs.Load())
}

// SetResyncThresholdMs sets the drift beyond which the playhead jumps to
// the external clock.
func (f *spatFile) SetResyncThresholdMs(ms float64) {
	f.resyncMs.Store(math.Float64bits(max(ms, 0)))
}

func (f *spatFile) ResyncThresholdMs() float64 {
	return math.Float64frombits(f.resyncMs.Load())
}

// checkSync seeks to the external clock when playback drifted from it.
// Mix goroutine only.
func (f *spatFile) checkSync(t *tick) {
	if SyncMode(f.syncMode.Load()) != SyncExternal {
		return
	}
	c := f.clock.Load()
	if c == nil {
		return
	}
	rate := f.e.rate
	if t.now-f.lastCheck < uint64(utils.MsToFrames(f.FreewheelTimeInMs(), rate)) && f.lastCheck != 0 {
		return
	}
	f.lastCheck = max(t.now, 1)

	ext := c.ms + utils.FramesToMs(int64(t.now-c.at), rate)
	played := utils.FramesToMs(f.player.elapsed.Load(), rate)
	if math.Abs(ext-played) <= f.ResyncThresholdMs() {
		return
	}

	target := utils.Clamp(utils.MsToFrames(ext, rate), 0, f.player.frames)
	if f.player.seekable {
		f.player.requestSeek(target)
		f.player.elapsed.Store(target)
		f.e.wakeDecoder()
	}
}

func (f *spatFile) render(t *tick) {
	p := f.player
	if !p.isOpen() {
		return
	}
	p.fillInCallback(t)

	step, gFrom, gTo := f.step(t)
	if step.Stopped {
		defer p.rewind()
	}
	if !step.Active {
		return
	}
	f.checkSync(t)
	if p.sync(t) {
		return
	}

	ch := p.channels
	in := t.in[:t.frames*ch]
	n := p.read(t, in)
	clear(in[n*ch:])

	m := audio.ChannelMap(f.chMap.Load())
	f.e.renderer.FieldMatrix(m, f.fieldParams(t), &f.next)
	if !f.prime {
		f.prev = f.next
		f.prime = true
	}
	render.MixInto(t.out, in, ch, t.frames, &f.prev, &f.next, gFrom, gTo)
	f.prev = f.next
}
