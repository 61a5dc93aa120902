// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"math"
)

// WAV16 renders an interleaved 16-bit PCM WAV file in memory. waveform is
// called once per sample and should return values in [-1,1].
func WAV16(sampleRate, channels, frames int, waveform func(frame, channel int) float32) []byte {
	dataSize := frames * channels * 2
	b := make([]byte, 44+dataSize)

	copy(b[0:4], "RIFF")
	binary.LittleEndian.PutUint32(b[4:8], uint32(36+dataSize))
	copy(b[8:12], "WAVE")
	copy(b[12:16], "fmt ")
	binary.LittleEndian.PutUint32(b[16:20], 16)
	binary.LittleEndian.PutUint16(b[20:22], 1)
	binary.LittleEndian.PutUint16(b[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(b[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(b[28:32], uint32(sampleRate*channels*2))
	binary.LittleEndian.PutUint16(b[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(b[34:36], 16)
	copy(b[36:40], "data")
	binary.LittleEndian.PutUint32(b[40:44], uint32(dataSize))

	off := 44
	for f := range frames {
		for c := range channels {
			v := waveform(f, c)
			v = float32(math.Max(-1, math.Min(1, float64(v))))
			binary.LittleEndian.PutUint16(b[off:], uint16(int16(v*32767)))
			off += 2
		}
	}

	return b
}

// ConstantWAV16 is WAV16 with every sample set to value.
func ConstantWAV16(sampleRate, channels, frames int, value float32) []byte {
	return WAV16(sampleRate, channels, frames, func(int, int) float32 { return value })
}
