// SPDX-License-Identifier: EPL-2.0

package device

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/config"
)

const speakerName = "default"

// speakerDevice plays through the beep speaker.
type speakerDevice struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	frames  int
	buffers int
	running bool

	fill Fill
	buf  []float32
	log  *slog.Logger
}

func openSpeaker(cfg config.AudioSettings, fill Fill, log *slog.Logger) (*speakerDevice, error) {
	d := &speakerDevice{
		rate:    beep.SampleRate(cfg.SampleRate),
		frames:  cfg.BufferSize,
		buffers: defaultBuffers,
		fill:    fill,
		buf:     make([]float32, 2*cfg.BufferSize*defaultBuffers),
		log:     log,
	}

	if err := speaker.Init(d.rate, d.frames*d.buffers); err != nil {
		return nil, audio.Wrap(audio.ErrCannotCreateAudioDevice, fmt.Errorf("speaker init: %w", err))
	}

	log.Debug("audio device opened", "device", speakerName, "rate", cfg.SampleRate, "frames", cfg.BufferSize)
	return d, nil
}

// Stream implements beep.Streamer. The speaker calls it with its own lock
// held.
func (d *speakerDevice) Stream(samples [][2]float64) (int, bool) {
	n := len(samples)
	if cap(d.buf) < 2*n {
		d.buf = make([]float32, 2*n)
	}
	buf := d.buf[:2*n]
	clear(buf)
	d.fill(buf)

	for i := range samples {
		samples[i][0] = float64(buf[2*i])
		samples[i][1] = float64(buf[2*i+1])
	}
	return n, true
}

func (d *speakerDevice) Err() error { return nil }

func (d *speakerDevice) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return nil
	}
	speaker.Play(d)
	d.running = true
	return nil
}

func (d *speakerDevice) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	speaker.Clear()
	d.running = false
	return nil
}

func (d *speakerDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	speaker.Clear()
	speaker.Close()
	d.running = false
	d.log.Debug("audio device closed", "device", speakerName)
	return nil
}

func (d *speakerDevice) Name() string { return speakerName }

func (d *speakerDevice) SetNumBuffers(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n = clampBuffers(n)
	if n == d.buffers {
		return nil
	}

	// the speaker buffer is fixed at Init, so resizing re-opens the output
	if err := speaker.Init(d.rate, d.frames*n); err != nil {
		return audio.Wrap(audio.ErrCannotCreateAudioDevice, fmt.Errorf("speaker init: %w", err))
	}
	d.buffers = n
	if d.running {
		speaker.Play(d)
	}
	return nil
}

func (d *speakerDevice) NumBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffers
}

func (d *speakerDevice) LatencySamples() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames * d.buffers
}

var _ beep.Streamer = (*speakerDevice)(nil)
