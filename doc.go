// SPDX-License-Identifier: EPL-2.0

// Package spat360 renders 360° sound fields and positioned sources into
// binaural stereo for a single listener.
//
// The engine lives in the engine subpackage; this package holds the entry
// points and offline rendering helpers.
//
// # Supported Formats
//
// Assets are sniffed by content and decoded by:
//   - WAV (PCM 8/16/24/32-bit, float) via formats/wav
//   - AIFF via formats/aiff
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - Ogg Opus via formats/opus
//
// # Quick Start
//
// Create an engine, give it a source, and either let it play through the
// default output device or pull the mix yourself:
//
//	s := config.Default()
//	s.Audio.DeviceType = config.DeviceDisabled
//	e, err := spat360.CreateAudioEngine(s)
//	if err != nil {
//	    return err
//	}
//	defer spat360.DestroyAudioEngine(e)
//
//	f, _ := e.CreateSpatDecoderFile(engine.OptionsDefault)
//	if err := f.Open("forest.opus", audio.TBE_8_2); err != nil {
//	    return err
//	}
//	f.Play()
//
//	out, _ := os.Create("forest-binaural.wav")
//	defer out.Close()
//	spat360.RenderToWAV(out, e, 30*e.SampleRate())
//
// # Decoders
//
// Decoders can also be used on their own, for instance to feed a
// SpatDecoderQueue from an application thread:
//
//	d, err := spat360.CreateAudioFormatDecoder("field.wav", 1024, e.SampleRate())
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	buf := make([]float32, 1024*d.NumChannels())
//	for !d.EndOfStream() {
//	    n := d.Decode(buf)
//	    q.EnqueueData(buf[:n], audio.TBE_8_2)
//	}
//
// Opus packets arriving from a network are decoded with a decoder built from
// the stream's OpusHead header by CreateAudioFormatDecoderFromHeader.
//
// # Configuration
//
// config.FromEnv reads SPAT360_* variables, optionally loaded from .env
// files, on top of config.Default.
package spat360
