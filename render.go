// SPDX-License-Identifier: EPL-2.0

package spat360

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/spat360/audio"
	"github.com/ik5/spat360/engine"
	"github.com/ik5/spat360/formats/wav"
	"github.com/ik5/spat360/utils"
)

// ErrDeviceAttached is returned by the offline renderers when the engine
// drives an output device and cannot be pulled.
var ErrDeviceAttached = errors.New("spat360: engine has an output device")

// RenderToStereo16 pulls frames frames of binaural mix out of a device-less
// engine and collects them as interleaved 16-bit PCM.
//
// bufferFrames sets how much is pulled per GetAudioMix call; 0 uses the
// engine buffer size. The engine clock advances by frames, so sources
// scheduled against it play exactly as they would on a device.
//
// Example:
//
//	pcm16, err := spat360.RenderToStereo16(e, 10*e.SampleRate(), 0)
//	if err != nil {
//	    return err
//	}
//	// pcm16 now holds 10 seconds of stereo at the engine rate
func RenderToStereo16(e *engine.Engine, frames, bufferFrames int) ([]int16, error) {
	pcm16 := make([]int16, 0, 2*max(frames, 0))
	err := render(e, frames, bufferFrames, func(buf []float32) {
		for _, x := range buf {
			pcm16 = append(pcm16, utils.Float32ToInt16(x))
		}
	})
	if err != nil {
		return nil, err
	}
	return pcm16, nil
}

// RenderToWAV pulls frames frames of mix out of a device-less engine and
// writes them to w as a 16-bit stereo WAV file at the engine rate.
func RenderToWAV(w io.WriteSeeker, e *engine.Engine, frames int) error {
	mix := make([]float32, 0, 2*max(frames, 0))
	err := render(e, frames, 0, func(buf []float32) {
		mix = append(mix, buf...)
	})
	if err != nil {
		return err
	}

	if err := wav.Write(w, e.SampleRate(), 2, mix); err != nil {
		return fmt.Errorf("write mix: %w", err)
	}
	return nil
}

func render(e *engine.Engine, frames, bufferFrames int, sink func(buf []float32)) error {
	if frames < 0 {
		return audio.ErrInvalidBufferSize
	}
	if bufferFrames <= 0 {
		bufferFrames = e.BufferSize()
	}

	buf := make([]float32, 2*bufferFrames)
	for done := 0; done < frames; {
		n := min(bufferFrames, frames-done)
		if err := e.GetAudioMix(buf, 2*n, 2); err != nil {
			if errors.Is(err, audio.ErrNotSupported) {
				return ErrDeviceAttached
			}
			return fmt.Errorf("mix at frame %d: %w", done, err)
		}
		sink(buf[:2*n])
		done += n
	}
	return nil
}
