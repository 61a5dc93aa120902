// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported, with any channel count.
// The frame count comes from the COMM chunk, so the source implements
// audio.Sized even for streamed input. Seeking reopens the file and decodes
// forward to the target frame.
package aiff
