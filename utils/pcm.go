// SPDX-License-Identifier: EPL-2.0

package utils

func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// Int16ToFloat32 maps a 16-bit PCM sample to [-1,1).
func Int16ToFloat32(x int16) float32 {
	return float32(x) / 32768.0
}

// Int16sToFloat32s converts src into dst and returns the number converted,
// which is the shorter of the two lengths.
func Int16sToFloat32s(dst []float32, src []int16) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float32(src[i]) / 32768.0
	}
	return n
}
