// SPDX-License-Identifier: EPL-2.0

package device

import (
	"log/slog"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/config"
	"github.com/ik5/spat360/utils"
)

// Fill renders len(out)/2 frames of interleaved stereo into out. It runs on
// the device's audio goroutine and must not block.
type Fill func(out []float32)

const (
	MinBuffers     = 1
	MaxBuffers     = 12
	defaultBuffers = 2
)

// Device is an output the engine mix plays through.
type Device interface {
	Start() error
	Suspend() error
	Close() error
	// Name is the name of the output in use.
	Name() string
	// SetNumBuffers resizes the output queue to n buffers of the engine
	// buffer size, clamped to [MinBuffers, MaxBuffers].
	SetNumBuffers(n int) error
	NumBuffers() int
	// LatencySamples is the output latency in frames.
	LatencySamples() int
}

// Open creates the device described by cfg. DeviceDisabled has no device
// and returns audio.ErrNoAudioDevice.
func Open(cfg config.AudioSettings, fill Fill, log *slog.Logger) (Device, error) {
	if log == nil {
		log = slog.Default()
	}

	switch cfg.DeviceType {
	case config.DeviceDefault:
		return openSpeaker(cfg, fill, log)
	case config.DeviceCustom:
		return openPortAudio(cfg, fill, log)
	case config.DeviceDisabled:
		return nil, audio.ErrNoAudioDevice
	default:
		return nil, audio.ErrCannotCreateAudioDevice
	}
}

func clampBuffers(n int) int {
	return utils.Clamp(n, MinBuffers, MaxBuffers)
}
