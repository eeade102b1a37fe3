// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample-level building blocks of the engine.
//
// It contains:
//   - Source interface for streamed, interleaved audio input
//   - Decoder and Registry for format decoders keyed by extension
//   - Buffer, the planar in-memory form every loaded sample ends up in
//   - Collect for draining a Source into a Buffer
//   - Resampler and MonoMixer, composed by Conform to match the engine layout
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders in the formats tree return a Source. Collect turns it into a
// Buffer once, on the control thread:
//
//	src, _ := wav.Decoder{}.Decode(f)
//	buf, err := audio.Collect(audio.Conform(src, 48000, 2))
//
// # Buffers
//
// A Buffer stores one []float32 per channel. Once handed to the engine it is
// read from the render thread without locks, so it is never written again.
//
// # Sample Rates
//
// The render path assumes every buffer runs at the engine rate. Conform
// inserts a cubic Resampler when a file was recorded at another rate, so the
// conversion cost is paid at load time and not per callback.
//
// # Sample Format
//
// Samples are float32 in the range [-1.0, 1.0]; 0.0 is silence.
//
// # Error Handling
//
// ReadSamples returns io.EOF when no more data is available. Collect reports
// ErrEmptySource for a stream that never produced a frame.
package audio
