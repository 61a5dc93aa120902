// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes RIFF/WAVE files.
//
// Chunk parsing is done by github.com/go-audio/wav. Sample conversion is
// done here so that a file can be read straight into the interleaved float32
// buffers the engine queues use, without an intermediate int buffer.
//
// # Supported Encodings
//
//   - integer PCM at 8 (unsigned), 16, 24 and 32 bits
//   - IEEE float at 32 bits
//   - WAVE_FORMAT_EXTENSIBLE wrapping either of the above
//   - any channel count, so TBE 8+2 and AmbiX 9+2 assets load directly
//
// The source returned by Decoder implements audio.Seekable and audio.Sized.
// Files whose data chunk size is a streaming placeholder are clamped to the
// bytes actually present.
//
// # Writing
//
// Write renders interleaved float32 samples as 16-bit PCM. The engine uses it
// to dump rendered mixes:
//
//	f, _ := os.Create("mix.wav")
//	defer f.Close()
//	err := wav.Write(f, 48000, 2, mix)
package wav
