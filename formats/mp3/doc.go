// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III through github.com/hajimehoshi/go-mp3.
//
// The decoder always produces stereo output at the stream's own sample rate;
// mono files are duplicated across both channels.
package mp3
