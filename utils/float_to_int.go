// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 keeps +1.0 from overflowing.
	return int16(x * 32767.0)
}

// Int16ToFloat32 maps 16-bit PCM into [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// IntToFloat32 maps a signed integer sample of the given bit depth into
// [-1, 1). Depths outside 8..32 are treated as 16.
func IntToFloat32(v int, bitDepth int) float32 {
	if bitDepth < 8 || bitDepth > 32 {
		bitDepth = 16
	}
	return float32(float64(v) / float64(int64(1)<<(bitDepth-1)))
}

// Float32ToInt is the inverse of IntToFloat32, with clamping.
func Float32ToInt(x float32, bitDepth int) int {
	if bitDepth < 8 || bitDepth > 32 {
		bitDepth = 16
	}
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	full := int64(1)<<(bitDepth-1) - 1
	return int(float64(x) * float64(full))
}

// Float32ToInt16Slice converts src into dst, growing dst when needed.
func Float32ToInt16Slice(dst []int16, src []float32) []int16 {
	if cap(dst) < len(src) {
		dst = make([]int16, len(src))
	}
	dst = dst[:len(src)]
	for i, x := range src {
		dst[i] = Float32ToInt16(x)
	}
	return dst
}
