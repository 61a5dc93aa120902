// SPDX-License-Identifier: EPL-2.0

// Package engine mixes sound fields and point sources for one listener
// into a binaural stereo stream.
//
// An Engine owns fixed pools of sources, all allocated by New:
//
//   - SpatDecoderQueue, a sound field fed by the client through per
//     channel map rings.
//   - SpatDecoderFile, a sound field played from an asset.
//   - AudioObject, a point source played from an asset or filled by a
//     BufferCallback.
//   - SpeakersVirtualizer, a loudspeaker feed rendered through one audio
//     object per speaker.
//
// Every source has its own transport (play, pause, stop, scheduled or
// faded), volume ramp and event callback. Assets are decoded ahead on an
// engine goroutine, or in the audio callback when the source asks for it
// or the engine runs without a decoder goroutine.
//
// The mix either drives an output device or, with the device disabled, is
// pulled by the caller through GetAudioMix:
//
//	s := config.Default()
//	s.Audio.DeviceType = config.DeviceDisabled
//	e, err := engine.New(s)
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	f, err := e.CreateSpatDecoderFile(engine.OptionsDefault)
//	if err != nil {
//		return err
//	}
//	if err := f.Open("forest.opus", audio.TBE_8_2); err != nil {
//		return err
//	}
//	f.Play()
//
//	buf := make([]float32, 2*e.BufferSize())
//	for {
//		if err := e.GetAudioMix(buf, len(buf), 2); err != nil {
//			return err
//		}
//		// write buf somewhere
//	}
//
// The mix goroutine never blocks and never allocates. Client calls publish
// their effect through atomics and take effect on the next tick; the
// source objects are not safe for concurrent use by several client
// goroutines unless stated otherwise.
package engine
