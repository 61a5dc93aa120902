// SPDX-License-Identifier: EPL-2.0

package config

import (
	"log/slog"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/render"
)

// AudioDeviceType selects how the mix reaches the speakers.
type AudioDeviceType int

const (
	// DeviceDefault plays through the system default output.
	DeviceDefault AudioDeviceType = iota
	// DeviceCustom plays through the output named by CustomDeviceName.
	DeviceCustom
	// DeviceDisabled opens no device; the caller pulls the mix with
	// GetAudioMix.
	DeviceDisabled
)

func (t AudioDeviceType) String() string {
	switch t {
	case DeviceDefault:
		return "DEFAULT"
	case DeviceCustom:
		return "CUSTOM"
	case DeviceDisabled:
		return "DISABLED"
	default:
		return "INVALID"
	}
}

type AudioSettings struct {
	// SampleRate is the engine rate in Hz. 0 picks the default.
	SampleRate int
	// BufferSize is the number of frames mixed per tick. 0 picks the
	// default.
	BufferSize       int
	DeviceType       AudioDeviceType
	CustomDeviceName string
}

// MemorySettings sizes the object pools. Every object is allocated when the
// engine is created.
type MemorySettings struct {
	SpatDecoderQueuePoolSize    int
	SpatDecoderFilePoolSize     int
	AudioObjectPoolSize         int
	SpeakersVirtualizerPoolSize int
	// SpatQueueSizePerChannel is the ring capacity of a queue source, in
	// frames, for every channel map.
	SpatQueueSizePerChannel int
}

type PlatformSettings struct {
	// AssetRoot is where AppBundle assets are looked up.
	AssetRoot string
}

type ThreadSettings struct {
	// UseEventThread delivers events on an engine goroutine. When false
	// the caller drains them with ProcessEventsOnThisThread.
	UseEventThread bool
	// UseDecoderThread decodes file sources ahead on an engine goroutine.
	// When false every file source decodes in the audio callback.
	UseDecoderThread bool
}

type ExperimentalSettings struct {
	AmbisonicRenderer render.Kind
}

// EngineInitSettings is the full engine configuration.
type EngineInitSettings struct {
	Audio        AudioSettings
	Memory       MemorySettings
	Platform     PlatformSettings
	Threads      ThreadSettings
	Experimental ExperimentalSettings

	// Logger receives lifecycle and failure messages. nil means
	// slog.Default().
	Logger *slog.Logger
}

// Default returns the stock settings.
func Default() EngineInitSettings {
	return EngineInitSettings{
		Audio: AudioSettings{
			SampleRate: 44100,
			BufferSize: 1024,
			DeviceType: DeviceDefault,
		},
		Memory: MemorySettings{
			SpatDecoderQueuePoolSize:    1,
			SpatDecoderFilePoolSize:     1,
			AudioObjectPoolSize:         128,
			SpeakersVirtualizerPoolSize: 8,
			SpatQueueSizePerChannel:     4096,
		},
		Threads: ThreadSettings{
			UseEventThread:   true,
			UseDecoderThread: true,
		},
		Experimental: ExperimentalSettings{
			AmbisonicRenderer: render.Ambisonic,
		},
		Logger: slog.Default(),
	}
}

// Validate checks the settings an engine cannot start without.
func (s *EngineInitSettings) Validate() error {
	if s.Audio.SampleRate < 0 {
		return audio.ErrInvalidSampleRate
	}
	if s.Audio.BufferSize < 0 {
		return audio.ErrInvalidBufferSize
	}

	switch s.Audio.DeviceType {
	case DeviceDefault, DeviceDisabled:
	case DeviceCustom:
		if s.Audio.CustomDeviceName == "" {
			return audio.ErrNoAudioDevice
		}
	default:
		return audio.ErrCannotCreateAudioDevice
	}

	m := s.Memory
	if m.SpatDecoderQueuePoolSize < 0 || m.SpatDecoderFilePoolSize < 0 ||
		m.AudioObjectPoolSize < 0 || m.SpeakersVirtualizerPoolSize < 0 ||
		m.SpatQueueSizePerChannel < 0 {
		return audio.ErrCannotAllocateMemory
	}

	switch s.Experimental.AmbisonicRenderer {
	case render.Ambisonic, render.VirtualSpeaker:
	default:
		return audio.ErrNotSupported
	}
	return nil
}

// Normalized returns a copy with zero rates, sizes and a nil logger
// replaced by their defaults.
func (s EngineInitSettings) Normalized() EngineInitSettings {
	d := Default()
	if s.Audio.SampleRate == 0 {
		s.Audio.SampleRate = d.Audio.SampleRate
	}
	if s.Audio.BufferSize == 0 {
		s.Audio.BufferSize = d.Audio.BufferSize
	}
	if s.Logger == nil {
		s.Logger = d.Logger
	}
	return s
}

// Log returns the configured logger or slog.Default().
func (s *EngineInitSettings) Log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
