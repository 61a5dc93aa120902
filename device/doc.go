// SPDX-License-Identifier: EPL-2.0

// Package device connects the engine mix to an audio output.
//
// Two backends exist. The default output is driven through the beep speaker
// package, which owns a single process-wide output; opening a second default
// device takes it over. Named outputs are driven through PortAudio, which
// also provides device enumeration:
//
//	for i := range device.NumAudioDevices() {
//	    fmt.Println(i, device.AudioDeviceName(i))
//	}
//
// Both backends pull audio by calling a Fill function with an interleaved
// stereo buffer from their own audio goroutine.
package device
