// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG layer III files with github.com/hajimehoshi/go-mp3.
//
// Output is always 2-channel float32; go-mp3 duplicates mono streams. The
// engine accepts such an asset for a STEREO or HEADLOCKED_STEREO source and
// for a stereo audio object.
//
// When the input implements io.Seeker, go-mp3 indexes the frame offsets up
// front and the returned source implements audio.Seekable and audio.Sized.
// Otherwise NumFrames reports -1 and seeking fails with audio.ErrNotSeekable.
package mp3
