// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/spat360/utils"
)

// Write encodes interleaved float32 samples as a 16-bit PCM WAV file.
func Write(w io.WriteSeeker, sampleRate, channels int, samples []float32) error {
	if channels < 1 || len(samples)%channels != 0 {
		return ErrUnsupportedWavLayout
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, channels, formatPCM)

	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(utils.Float32ToInt16(v))
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing wav: %w", err)
	}
	return nil
}
