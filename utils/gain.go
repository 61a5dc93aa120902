// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// MinDecibels is reported for a gain of zero.
const MinDecibels = -144.0

// DecibelsToGain converts a level in dB to a linear amplitude factor.
func DecibelsToGain(db float32) float32 {
	if db <= MinDecibels {
		return 0
	}
	return float32(math.Pow(10, float64(db)/20))
}

// GainToDecibels converts a linear amplitude factor to dB. Zero and
// negative gains map to MinDecibels.
func GainToDecibels(g float32) float32 {
	if g <= 0 {
		return MinDecibels
	}
	return max(float32(20*math.Log10(float64(g))), MinDecibels)
}

// Clamp limits x to [lo, hi].
func Clamp[T ~float32 | ~float64 | ~int | ~int64](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// MsToFrames converts a duration in milliseconds to frames at rate.
func MsToFrames(ms float64, rate int) int64 {
	return int64(math.Round(ms * float64(rate) / 1000))
}

// FramesToMs converts a frame count at rate to milliseconds.
func FramesToMs(frames int64, rate int) float64 {
	if rate <= 0 {
		return 0
	}
	return float64(frames) * 1000 / float64(rate)
}
