// SPDX-License-Identifier: EPL-2.0

package device

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/config"
)

// portAudioDevice plays through a named PortAudio output.
type portAudioDevice struct {
	mu      sync.Mutex
	info    *portaudio.DeviceInfo
	rate    int
	frames  int
	buffers int
	running bool

	stream *portaudio.Stream
	fill   Fill
	log    *slog.Logger
}

func openPortAudio(cfg config.AudioSettings, fill Fill, log *slog.Logger) (*portAudioDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, audio.Wrap(audio.ErrCannotInitialiseCore, fmt.Errorf("portaudio: %w", err))
	}

	info, err := findOutput(cfg.CustomDeviceName)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}

	d := &portAudioDevice{
		info:    info,
		rate:    cfg.SampleRate,
		frames:  cfg.BufferSize,
		buffers: defaultBuffers,
		fill:    fill,
		log:     log,
	}
	if err := d.open(); err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}

	log.Debug("audio device opened", "device", info.Name, "rate", cfg.SampleRate, "frames", cfg.BufferSize)
	return d, nil
}

func findOutput(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, audio.Wrap(audio.ErrNoAudioDevice, fmt.Errorf("listing devices: %w", err))
	}
	for _, d := range devices {
		if d.Name == name && d.MaxOutputChannels >= 2 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, audio.ErrNoAudioDevice)
}

func (d *portAudioDevice) open() error {
	p := portaudio.HighLatencyParameters(nil, d.info)
	p.Output.Channels = 2
	p.Output.Latency = time.Duration(d.frames*d.buffers) * time.Second / time.Duration(d.rate)
	p.SampleRate = float64(d.rate)
	p.FramesPerBuffer = d.frames

	s, err := portaudio.OpenStream(p, d.process)
	if err != nil {
		return audio.Wrap(audio.ErrCannotCreateAudioDevice, fmt.Errorf("open stream: %w", err))
	}
	d.stream = s
	return nil
}

// process is the PortAudio callback; out is interleaved stereo.
func (d *portAudioDevice) process(out []float32) {
	clear(out)
	d.fill(out)
}

func (d *portAudioDevice) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return nil
	}
	if err := d.stream.Start(); err != nil {
		return audio.Wrap(audio.ErrFail, err)
	}
	d.running = true
	return nil
}

func (d *portAudioDevice) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	if err := d.stream.Stop(); err != nil {
		return audio.Wrap(audio.ErrFail, err)
	}
	d.running = false
	return nil
}

func (d *portAudioDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	if d.running {
		err = d.stream.Stop()
		d.running = false
	}
	if cerr := d.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	d.log.Debug("audio device closed", "device", d.info.Name)
	return err
}

func (d *portAudioDevice) Name() string { return d.info.Name }

func (d *portAudioDevice) SetNumBuffers(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n = clampBuffers(n)
	if n == d.buffers {
		return nil
	}

	wasRunning := d.running
	if wasRunning {
		if err := d.stream.Stop(); err != nil {
			return audio.Wrap(audio.ErrFail, err)
		}
		d.running = false
	}
	if err := d.stream.Close(); err != nil {
		d.log.Warn("closing audio stream", "device", d.info.Name, "error", err)
	}

	d.buffers = n
	if err := d.open(); err != nil {
		return err
	}
	if wasRunning {
		if err := d.stream.Start(); err != nil {
			return audio.Wrap(audio.ErrFail, err)
		}
		d.running = true
	}
	return nil
}

func (d *portAudioDevice) NumBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffers
}

// LatencySamples reports what the host API granted, falling back to the
// requested queue length.
func (d *portAudioDevice) LatencySamples() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if info := d.stream.Info(); info != nil && info.OutputLatency > 0 {
		return int(info.OutputLatency.Seconds() * float64(d.rate))
	}
	return d.frames * d.buffers
}

// NumAudioDevices returns the number of outputs with at least two channels.
// It returns 0 when PortAudio cannot be initialised.
func NumAudioDevices() int {
	outs, err := outputs()
	if err != nil {
		return 0
	}
	return len(outs)
}

// AudioDeviceName returns the name of output i, or "" when i is out of
// range.
func AudioDeviceName(i int) string {
	outs, err := outputs()
	if err != nil || i < 0 || i >= len(outs) {
		return ""
	}
	return outs[i]
}

func outputs() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(devices))
	for _, d := range devices {
		if d.MaxOutputChannels >= 2 {
			names = append(names, d.Name)
		}
	}
	return names, nil
}
