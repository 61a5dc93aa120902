// SPDX-License-Identifier: EPL-2.0

// Package render turns spatial sources into binaural stereo gains.
//
// Sources are never filtered here. Each tick the engine asks for a gain
// Matrix that maps every input channel to the two ears, and MixInto
// applies it while interpolating from the previous tick's matrix so pose
// changes never click.
//
// Sound fields (ambisonic channel maps) are decoded to a ring of virtual
// speakers fixed to the listener's head, and every speaker is panned to the
// ears with an equal-power law. Rotation of the listener or of the field
// only changes which direction each speaker samples. Head-locked channels
// bypass the decoder.
//
// Point sources (audio objects) are panned by azimuth and attenuated by
// distance.
package render
