// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// Any channel count is accepted, so ambisonic assets encoded as multichannel
// Vorbis load directly. With an io.ReadSeeker input the source implements
// audio.Seekable and audio.Sized; plain readers can only be played through.
package vorbis
