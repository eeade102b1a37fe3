// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates the Catmull-Rom segment between y1 and y2 at
// x in [0, 1]. y0 and y3 are the neighbouring samples; x=0 yields y1 and
// x=1 yields y2 exactly.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	b := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c := 0.5 * (y2 - y0)

	return ((a*x+b)*x+c)*x + y1
}

// CubicFrame interpolates every channel of four consecutive interleaved
// frames into dst. All slices must be at least len(dst) long.
func CubicFrame(dst, y0, y1, y2, y3 []float32, x float32) {
	for c := range dst {
		dst[c] = CubicInterpolate(y0[c], y1[c], y2[c], y3[c], x)
	}
}
