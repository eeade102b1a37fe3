// SPDX-License-Identifier: EPL-2.0

// Package output drives a render function from a host audio sink.
//
// Stream pulls fixed-size blocks from a graph.RenderFunc and serves them as
// interleaved float32 little-endian bytes, the layout oto plays. Player
// feeds a Stream to the system audio device; building with the headless
// tag swaps in a Player that never opens a device. Streamer exposes the
// same render function as a beep.Streamer.
//
// A render status other than graph.StatusOK never stops the sink: the
// block is played as silence and counted by Glitches.
package output
