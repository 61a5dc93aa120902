// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/config"
	"github.com/ik5/spat360/device"
	"github.com/ik5/spat360/events"
	"github.com/ik5/spat360/loudness"
	"github.com/ik5/spat360/pool"
	"github.com/ik5/spat360/queue"
	"github.com/ik5/spat360/render"
	"github.com/ik5/spat360/transport"
)

// Engine version.
const (
	VersionMajor = 1
	VersionMinor = 5
	VersionPatch = 1
)

// Options tune how a file-backed object is created.
type Options int

const (
	OptionsDefault Options = 0
	// DecodeInAudioCallback decodes on the mix goroutine instead of the
	// engine decoder goroutine.
	DecodeInAudioCallback Options = 1 << 0
)

// AssetLocation tells how an asset name is resolved.
type AssetLocation int

const (
	// AppBundle names are relative to the platform asset root.
	AppBundle AssetLocation = iota
	// AbsolutePath names are used as given.
	AbsolutePath
)

// MixCallback observes the final interleaved mix of every tick. It runs on
// the mix goroutine and must not block.
type MixCallback func(buf []float32, numChannels, framesPerChannel int)

type testTone struct {
	freq, gain float32
}

// Engine owns the listener, the object pools, the output device and the
// mix. Create it with New and release it with Close.
type Engine struct {
	cfg      config.EngineInitSettings
	log      *slog.Logger
	rate     int
	frames   int
	renderer *render.Renderer

	dev device.Device

	dsp    atomic.Uint64
	inMix  atomic.Bool
	mixSeq atomic.Uint64
	t      tick // mix goroutine only

	listener *transport.AtomicPose
	tracking atomic.Pointer[trackingState]

	queues       *pool.Pool[spatQueue]
	files        *pool.Pool[spatFile]
	objects      *pool.Pool[audioObject]
	virtualizers *pool.Pool[virtualizer]
	stale        staleItems

	dispatch *events.Dispatcher
	events   events.Slot

	mixCallback atomic.Pointer[MixCallback]
	tone        atomic.Pointer[testTone]
	tonePhase   float64

	loudOn      atomic.Bool
	loudRing    *queue.Ring[float32]
	meterMu     sync.Mutex
	meter       *loudness.Meter
	loudScratch []float32

	cancel context.CancelFunc
	group  *errgroup.Group
	wake   chan struct{}
	closed atomic.Bool
}

// New validates settings, allocates every pool and starts the worker
// goroutines and the output device. The device stays suspended until
// Start.
func New(settings config.EngineInitSettings) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings = settings.Normalized()

	e := &Engine{
		cfg:      settings,
		log:      settings.Log(),
		rate:     settings.Audio.SampleRate,
		frames:   settings.Audio.BufferSize,
		renderer: render.NewRenderer(settings.Experimental.AmbisonicRenderer),
		listener: transport.NewAtomicPose(),
		dispatch: events.NewDispatcher(events.DefaultQueueSize),
		wake:     make(chan struct{}, 1),
	}
	e.t = newTick(e.frames)

	e.loudRing = queue.New[float32](2 * e.rate * 2)
	e.meter = loudness.NewMeter(e.rate, 2)
	e.loudScratch = make([]float32, 2*e.frames)

	m := settings.Memory
	e.queues = pool.New(m.SpatDecoderQueuePoolSize, func(int) *spatQueue {
		return newSpatQueue(e, m.SpatQueueSizePerChannel)
	})
	e.files = pool.New(m.SpatDecoderFilePoolSize, func(int) *spatFile {
		return newSpatFile(e)
	})
	e.objects = pool.New(m.AudioObjectPoolSize, func(int) *audioObject {
		return newAudioObject(e)
	})
	e.virtualizers = pool.New(m.SpeakersVirtualizerPoolSize, func(int) *virtualizer {
		return newVirtualizer(e)
	})
	e.stale = newStaleItems(e)

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.group, ctx = errgroup.WithContext(ctx)
	if settings.Threads.UseEventThread {
		e.group.Go(func() error { return e.dispatch.Run(ctx) })
	}
	if settings.Threads.UseDecoderThread {
		e.group.Go(func() error { return e.decodeLoop(ctx) })
	}

	if settings.Audio.DeviceType != config.DeviceDisabled {
		dev, err := device.Open(settings.Audio, e.mix, e.log)
		if err != nil {
			e.stopWorkers()
			e.log.Error("cannot create audio device", "type", settings.Audio.DeviceType, "error", err)
			return nil, err
		}
		e.dev = dev
	}

	e.log.Info("audio engine created",
		"rate", e.rate,
		"buffer", e.frames,
		"device", settings.Audio.DeviceType,
		"renderer", settings.Experimental.AmbisonicRenderer,
	)
	return e, nil
}

func (e *Engine) stopWorkers() {
	e.cancel()
	if err := e.group.Wait(); err != nil {
		e.log.Warn("engine worker stopped with error", "error", err)
	}
}

// Close stops the device and the workers and destroys every pooled object.
// Handles obtained from e are invalid afterwards.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if e.dev != nil {
		err = e.dev.Close()
	}
	e.stopWorkers()

	for _, h := range e.virtualizers.Handles() {
		e.virtualizers.Release(h, e.releaseVirtualizer)
	}
	for _, h := range e.objects.Handles() {
		e.objects.Release(h, e.releaseObject)
	}
	for _, h := range e.files.Handles() {
		e.files.Release(h, e.releaseFile)
	}
	for _, h := range e.queues.Handles() {
		e.queues.Release(h, e.releaseQueue)
	}

	e.log.Info("audio engine destroyed", "dsp_time", e.dsp.Load())
	return err
}

// Start resumes the output device. Without a device it does nothing.
func (e *Engine) Start() error {
	if e.dev == nil {
		return nil
	}
	return e.dev.Start()
}

// Suspend pauses the output device and with it the DSP clock.
func (e *Engine) Suspend() error {
	if e.dev == nil {
		return nil
	}
	return e.dev.Suspend()
}

// SampleRate is the mix rate in Hz.
func (e *Engine) SampleRate() int { return e.rate }

// BufferSize is the number of frames mixed per tick.
func (e *Engine) BufferSize() int { return e.frames }

// DSPTime is the number of frames mixed so far.
func (e *Engine) DSPTime() uint64 { return e.dsp.Load() }

// VersionMajor is the major version of the engine.
func (e *Engine) VersionMajor() int { return VersionMajor }

// VersionMinor is the minor version of the engine.
func (e *Engine) VersionMinor() int { return VersionMinor }

// VersionPatch is the patch version of the engine.
func (e *Engine) VersionPatch() int { return VersionPatch }

// VersionHash is the VCS revision the binary was built from, or "unknown".
func (e *Engine) VersionHash() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

// SetNumOutputBuffers resizes the device queue. It fails with
// audio.ErrNotSupported when no device is in use.
func (e *Engine) SetNumOutputBuffers(n int) error {
	if e.dev == nil {
		return audio.ErrNotSupported
	}
	return e.dev.SetNumBuffers(n)
}

// NumOutputBuffers is the depth of the device queue, 0 without a device.
func (e *Engine) NumOutputBuffers() int {
	if e.dev == nil {
		return 0
	}
	return e.dev.NumBuffers()
}

// OutputLatencySamples is the device latency in frames, 0 without a
// device.
func (e *Engine) OutputLatencySamples() int {
	if e.dev == nil {
		return 0
	}
	return e.dev.LatencySamples()
}

// OutputLatencyMs is OutputLatencySamples in milliseconds.
func (e *Engine) OutputLatencyMs() float64 {
	return float64(e.OutputLatencySamples()) * 1000 / float64(e.rate)
}

// OutputAudioDeviceName is the name of the device in use, empty when the
// device is disabled.
func (e *Engine) OutputAudioDeviceName() string {
	if e.dev == nil {
		return ""
	}
	return e.dev.Name()
}

// SetEventCallback registers the receiver of engine events. The owner
// passed to cb is e.
func (e *Engine) SetEventCallback(cb events.Callback) error {
	e.events.Set(cb)
	return nil
}

// ProcessEventsOnThisThread delivers queued events on the calling
// goroutine. It is only available when the engine runs without an event
// goroutine.
func (e *Engine) ProcessEventsOnThisThread() error {
	if e.cfg.Threads.UseEventThread {
		return audio.ErrNotSupported
	}
	e.dispatch.Drain()
	return nil
}

// EnableTestTone replaces the mix with a sine at freq Hz and linear gain.
func (e *Engine) EnableTestTone(enable bool, freq, gain float32) {
	if !enable {
		e.tone.Store(nil)
		return
	}
	e.tone.Store(&testTone{freq: freq, gain: gain})
}

// SetAudioMixCallback registers an observer of the final mix; nil removes
// it.
func (e *Engine) SetAudioMixCallback(cb MixCallback) {
	if cb == nil {
		e.mixCallback.Store(nil)
		return
	}
	e.mixCallback.Store(&cb)
}

// AssetPath resolves name for loc against the platform asset root.
func (e *Engine) AssetPath(loc AssetLocation, name string) string {
	if loc == AppBundle && e.cfg.Platform.AssetRoot != "" && !filepath.IsAbs(name) {
		return filepath.Join(e.cfg.Platform.AssetRoot, name)
	}
	return name
}

func (e *Engine) wakeDecoder() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// waitMixIdle returns once no mix tick that started before the call is
// still running. It must not be called from the mix goroutine.
func (e *Engine) waitMixIdle() {
	if !e.inMix.Load() {
		return
	}
	seq := e.mixSeq.Load()
	for e.inMix.Load() && e.mixSeq.Load() == seq {
		time.Sleep(50 * time.Microsecond)
	}
}

func (e *Engine) bufferDuration(frames int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(e.rate)
}
