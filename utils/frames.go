// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// SecondsToFrames converts a time in seconds to the nearest frame index.
func SecondsToFrames(seconds float64, sampleRate int) int64 {
	return int64(math.Round(seconds * float64(sampleRate)))
}

// FramesToSeconds converts a frame index to seconds.
func FramesToSeconds(frames int64, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(frames) / float64(sampleRate)
}
