// SPDX-License-Identifier: EPL-2.0

package spat360

import (
	"github.com/ik5/spat360/config"
	"github.com/ik5/spat360/decoder"
	"github.com/ik5/spat360/device"
	"github.com/ik5/spat360/engine"
)

// Version of the engine API.
const (
	VersionMajor = engine.VersionMajor
	VersionMinor = engine.VersionMinor
	VersionPatch = engine.VersionPatch
)

// CreateAudioEngine validates settings and starts an engine. The engine
// owns every pool, worker goroutine and the output device until
// DestroyAudioEngine.
func CreateAudioEngine(settings config.EngineInitSettings) (*engine.Engine, error) {
	return engine.New(settings)
}

// DestroyAudioEngine stops e and releases everything it owns. A nil engine
// is ignored.
func DestroyAudioEngine(e *engine.Engine) error {
	if e == nil {
		return nil
	}
	return e.Close()
}

// CreateAudioFormatDecoderFromHeader builds an Opus packet decoder from an
// OpusHead identification header.
func CreateAudioFormatDecoderFromHeader(header []byte) (*decoder.FormatDecoder, error) {
	return decoder.NewFromHeader(header)
}

// CreateAudioFormatDecoder opens path with a decoder picked from the file
// contents. Decode returns at most maxBufferSizePerChannel frames per call,
// resampled to outputSampleRate unless it is 0.
func CreateAudioFormatDecoder(path string, maxBufferSizePerChannel, outputSampleRate int) (*decoder.FormatDecoder, error) {
	return decoder.NewFromFile(path, maxBufferSizePerChannel, outputSampleRate)
}

// NumAudioDevices is the number of output devices usable with
// config.DeviceCustom.
func NumAudioDevices() int { return device.NumAudioDevices() }

// AudioDeviceName is the name of output device i, to be passed as
// config.AudioSettings.CustomDeviceName.
func AudioDeviceName(i int) string { return device.AudioDeviceName(i) }
