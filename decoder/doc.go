// SPDX-License-Identifier: EPL-2.0

// Package decoder turns an encoded asset into interleaved float32 PCM at the
// rate the engine runs at.
//
// FormatDecoder picks a codec from the first bytes of the stream (see Sniff)
// and looks it up in Formats:
//
//	RIFF....WAVE   wav     PCM 8/16/24/32, float32, broadcast WAV
//	FORM....AIFF   aiff    PCM 8/16/24/32
//	OggS+OpusHead  opus    48kHz, pre-skip removed
//	OggS+\x01vorbis vorbis
//	ID3 or sync    mp3     always stereo
//
// When the output rate differs from the asset rate the stream is run through
// audio.Resampler, and every length and position the decoder reports is in
// output-rate frames.
//
// A decoder built with NewFromHeader has no stream. It decodes raw Opus
// packets handed to DecodePacket, the way a demuxer delivers them.
//
// Decode never returns an error. A short count is explained by EndOfStream
// (normal completion) or DecoderError (corruption or I/O failure):
//
//	for {
//	    n := d.Decode(buf)
//	    consume(buf[:n])
//	    if d.EndOfStream() || d.DecoderError() {
//	        break
//	    }
//	}
package decoder
