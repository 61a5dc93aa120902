// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM building blocks shared by the decoders and
// the engine.
//
// It contains:
//   - Source, the pull interface every decoder returns, plus the optional
//     Seekable and Sized capabilities used for seeking and durations
//   - Resampler for converting assets to the engine sample rate
//   - MonoMixer for folding multi-channel assets into one channel
//   - Registry for looking up decoders by format name
//   - ChannelMap, the fixed channel layouts spatial sources accept
//   - EngineError, the numeric result codes returned by the engine API
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are interleaved float32 in [-1.0, 1.0]. ReadSamples returns the
// number of float32 values written and io.EOF once the stream is finished.
//
// # Channel Maps
//
// Every buffer-sized operation on a spatial source is validated against a
// ChannelMap. NumChannels is a pure function of the map:
//
//	n := audio.TBE_8_2.NumChannels() // 10: eight ambisonic + two head-locked
//
// # Result Codes
//
// Engine operations return nil on success or an EngineError. Codes survive
// wrapping, so both of these work:
//
//	if errors.Is(err, audio.ErrQueueFull) { ... }
//	code := audio.Code(err) // -21
package audio
