// SPDX-License-Identifier: EPL-2.0

// Package opus decodes Ogg Opus files and raw Opus packets with
// github.com/hraban/opus, which binds libopus and libopusfile.
//
// Decoder returns an audio.Source at 48kHz. Its length is taken from the
// granule position of the last Ogg page minus the pre-skip in OpusHead.
//
// PacketDecoder is for streams where the container has already been removed:
// parse the OpusHead packet with ParseHeader, then feed each packet to Decode.
// Mono and stereo streams are supported; multistream surround needs the
// libopus multistream API, which the bindings do not wrap.
package opus
