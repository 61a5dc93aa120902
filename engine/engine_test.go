// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/config"
	"github.com/ik5/spat360/events"
	"github.com/ik5/spat360/geom"
	"github.com/ik5/spat360/render"
)

const (
	testRate   = 48000
	testBuffer = 512
)

// newTestEngine returns a device-less engine that decodes and delivers
// events on the test goroutine.
func newTestEngine(t *testing.T, modify ...func(s *config.EngineInitSettings)) *Engine {
	t.Helper()

	s := config.Default()
	s.Audio.SampleRate = testRate
	s.Audio.BufferSize = testBuffer
	s.Audio.DeviceType = config.DeviceDisabled
	s.Threads = config.ThreadSettings{}
	s.Memory.SpatDecoderQueuePoolSize = 2
	s.Memory.SpatDecoderFilePoolSize = 2
	s.Memory.AudioObjectPoolSize = 8
	s.Memory.SpeakersVirtualizerPoolSize = 2
	s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, m := range modify {
		m(&s)
	}

	e, err := New(s)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// pull mixes frames frames and returns them interleaved.
func pull(t *testing.T, e *Engine, frames int) []float32 {
	t.Helper()

	buf := make([]float32, 2*frames)
	if err := e.GetAudioMix(buf, len(buf), 2); err != nil {
		t.Fatalf("GetAudioMix() error = %v", err)
	}
	return buf
}

// eventLog records events delivered to a callback.
type eventLog struct {
	mu     sync.Mutex
	events []events.Event
	owners []any
}

func (l *eventLog) record(ev events.Event, owner any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	l.owners = append(l.owners, owner)
}

func (l *eventLog) count(ev events.Event) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, e := range l.events {
		if e == ev {
			n++
		}
	}
	return n
}

func writeAsset(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew_InvalidSettings(t *testing.T) {
	t.Parallel()

	s := config.Default()
	s.Audio.SampleRate = -1
	if _, err := New(s); !errors.Is(err, audio.ErrInvalidSampleRate) {
		t.Errorf("New() error = %v, want ErrInvalidSampleRate", err)
	}
}

func TestEngine_Basics(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	if e.SampleRate() != testRate || e.BufferSize() != testBuffer {
		t.Errorf("rate/buffer = %d/%d", e.SampleRate(), e.BufferSize())
	}
	if e.VersionMajor() != 1 || e.VersionMinor() != 5 || e.VersionPatch() != 1 {
		t.Errorf("version = %d.%d.%d", e.VersionMajor(), e.VersionMinor(), e.VersionPatch())
	}
	if e.VersionHash() == "" {
		t.Error("VersionHash() is empty")
	}
	if err := e.SetNumOutputBuffers(4); !errors.Is(err, audio.ErrNotSupported) {
		t.Errorf("SetNumOutputBuffers() = %v, want ErrNotSupported", err)
	}
	if e.NumOutputBuffers() != 0 || e.OutputLatencySamples() != 0 || e.OutputAudioDeviceName() != "" {
		t.Error("device getters report a device")
	}
	if err := e.Start(); err != nil {
		t.Errorf("Start() = %v", err)
	}
	if err := e.Suspend(); err != nil {
		t.Errorf("Suspend() = %v", err)
	}
}

func TestGetAudioMix_Validation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	buf := make([]float32, 64)

	tests := []struct {
		name     string
		samples  int
		channels int
		want     error
	}{
		{"mono", 64, 1, audio.ErrInvalidChannelCount},
		{"surround", 64, 6, audio.ErrInvalidChannelCount},
		{"odd", 63, 2, audio.ErrInvalidBufferSize},
		{"too long", 66, 2, audio.ErrInvalidBufferSize},
		{"empty", 0, 2, audio.ErrInvalidBufferSize},
		{"ok", 64, 2, nil},
	}

	for _, tt := range tests {
		if err := e.GetAudioMix(buf, tt.samples, tt.channels); !errors.Is(err, tt.want) {
			t.Errorf("%s: GetAudioMix() = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestGetAudioMix_AdvancesClockInBlocks(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	var blocks []int
	e.SetAudioMixCallback(func(buf []float32, ch, frames int) {
		if ch != 2 || len(buf) != 2*frames {
			t.Errorf("callback got %d channels and %d samples for %d frames", ch, len(buf), frames)
		}
		blocks = append(blocks, frames)
	})

	out := pull(t, e, 1300)
	if e.DSPTime() != 1300 {
		t.Errorf("DSPTime() = %d, want 1300", e.DSPTime())
	}
	want := []int{512, 512, 276}
	if len(blocks) != len(want) {
		t.Fatalf("blocks = %v, want %v", blocks, want)
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Errorf("blocks = %v, want %v", blocks, want)
		}
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want silence", i, v)
		}
	}

	e.SetAudioMixCallback(nil)
	pull(t, e, 10)
	if len(blocks) != 3 {
		t.Error("removed callback still called")
	}
}

func TestTestTone(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	e.EnableTestTone(true, 440, 0.5)

	out := pull(t, e, testRate/10)
	var peak float64
	for i := 0; i < len(out); i += 2 {
		if out[i] != out[i+1] {
			t.Fatalf("frame %d: left %v != right %v", i/2, out[i], out[i+1])
		}
		peak = max(peak, math.Abs(float64(out[i])))
	}
	if peak < 0.49 || peak > 0.5 {
		t.Errorf("peak = %v, want 0.5", peak)
	}

	e.EnableTestTone(false, 0, 0)
	for _, v := range pull(t, e, 64) {
		if v != 0 {
			t.Fatal("tone still playing after disable")
		}
	}
}

func TestProcessEventsOnThisThread(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	if err := e.ProcessEventsOnThisThread(); err != nil {
		t.Errorf("ProcessEventsOnThisThread() = %v", err)
	}

	threaded := newTestEngine(t, func(s *config.EngineInitSettings) {
		s.Threads.UseEventThread = true
	})
	if err := threaded.ProcessEventsOnThisThread(); !errors.Is(err, audio.ErrNotSupported) {
		t.Errorf("ProcessEventsOnThisThread() = %v, want ErrNotSupported", err)
	}
}

func TestListener(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	e.SetListenerPosition(geom.Vector{X: 1, Y: 2, Z: 3})
	if got := e.ListenerPosition(); got != (geom.Vector{X: 1, Y: 2, Z: 3}) {
		t.Errorf("ListenerPosition() = %v", got)
	}

	e.SetListenerRotationEuler(90, 0, 0)
	viaVectors := e.ListenerRotation()
	e.SetListenerRotationVectors(e.ListenerForward(), e.ListenerUp())
	if !e.ListenerRotation().ApproxEqual(viaVectors, 1e-4) {
		t.Errorf("rotation from vectors = %v, want %v", e.ListenerRotation(), viaVectors)
	}
	if f := e.ListenerForward(); f.ApproxEqual(geom.Forward, 1e-3) {
		t.Errorf("forward %v did not turn", f)
	}
}

func TestPositionalTracking(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	if err := e.EnablePositionalTracking(true, geom.Vector{}); err != nil {
		t.Fatalf("EnablePositionalTracking() = %v", err)
	}
	if !e.PositionalTrackingEnabled() {
		t.Error("tracking not enabled")
	}
	_ = e.EnablePositionalTracking(false, geom.Vector{})
	if e.PositionalTrackingEnabled() {
		t.Error("tracking still enabled")
	}

	vs := newTestEngine(t, func(s *config.EngineInitSettings) {
		s.Experimental.AmbisonicRenderer = render.VirtualSpeaker
	})
	if err := vs.EnablePositionalTracking(true, geom.Vector{}); !errors.Is(err, audio.ErrNotSupported) {
		t.Errorf("EnablePositionalTracking() = %v, want ErrNotSupported", err)
	}
}

func TestAssetPath(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, func(s *config.EngineInitSettings) {
		s.Platform.AssetRoot = "/opt/assets"
	})

	if got := e.AssetPath(AppBundle, "a.wav"); got != filepath.Join("/opt/assets", "a.wav") {
		t.Errorf("AppBundle = %q", got)
	}
	if got := e.AssetPath(AbsolutePath, "a.wav"); got != "a.wav" {
		t.Errorf("AbsolutePath = %q", got)
	}
}

func TestLoudness_LongRender(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	e.EnableLoudness(true)

	// longer than the meter ring before anything reads it
	for range 25 {
		pull(t, e, testRate/10)
	}
	e.EnableTestTone(true, 1000, 0.5)
	for range 20 {
		pull(t, e, testRate/10)
	}

	s := e.RenderedLoudness()
	if s.Momentary < -20 || s.Momentary > 0 {
		t.Errorf("Momentary = %v LUFS, want the tone", s.Momentary)
	}
	if s.Integrated < -20 || s.Integrated > 0 {
		t.Errorf("Integrated = %v LUFS, want the tone", s.Integrated)
	}
}

func TestLoudness(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	if s := e.RenderedLoudness(); !math.IsInf(float64(s.Momentary), -1) {
		t.Errorf("Momentary before any audio = %v, want -Inf", s.Momentary)
	}

	e.EnableLoudness(true)
	e.EnableTestTone(true, 1000, 0.5)
	for range 10 {
		pull(t, e, testRate/10)
	}

	s := e.RenderedLoudness()
	if s.Momentary < -20 || s.Momentary > 0 {
		t.Errorf("Momentary = %v LUFS, want a loud tone", s.Momentary)
	}

	e.ResetLoudness()
	if s := e.RenderedLoudness(); !math.IsInf(float64(s.Momentary), -1) {
		t.Errorf("Momentary after reset = %v, want -Inf", s.Momentary)
	}
}

func TestPool_Exhaustion(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, func(s *config.EngineInitSettings) {
		s.Memory.AudioObjectPoolSize = 2
	})

	a, err := e.CreateAudioObject(OptionsDefault)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateAudioObject(OptionsDefault); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateAudioObject(OptionsDefault); !errors.Is(err, audio.ErrNoObjectsInPool) {
		t.Fatalf("third CreateAudioObject() error = %v, want ErrNoObjectsInPool", err)
	}

	e.DestroyAudioObject(a)
	c, err := e.CreateAudioObject(OptionsDefault)
	if err != nil {
		t.Fatalf("CreateAudioObject() after destroy error = %v", err)
	}

	// a is stale: destroying it again must leave c alone
	e.DestroyAudioObject(a)
	if _, err := e.CreateAudioObject(OptionsDefault); !errors.Is(err, audio.ErrNoObjectsInPool) {
		t.Errorf("stale destroy freed a slot, error = %v", err)
	}
	e.DestroyAudioObject(c)
	e.DestroyAudioObject(nil)
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, func(s *config.EngineInitSettings) {
		s.Threads = config.ThreadSettings{UseEventThread: true, UseDecoderThread: true}
	})
	if _, err := e.CreateAudioObject(OptionsDefault); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}
