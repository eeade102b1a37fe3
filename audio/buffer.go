// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"
)

// collectChunkFrames is the number of frames Collect reads per call.
const collectChunkFrames = 4096

// Buffer holds fully decoded audio as planar float32 channels.
//
// Every channel has the same length. A Buffer handed to a sample bank is
// treated as immutable: voices read it from the render thread without
// synchronization, so it must never be written again.
type Buffer struct {
	SampleRate int
	Data       [][]float32
}

// NewBuffer allocates a silent buffer of the given shape.
func NewBuffer(channels, frames, sampleRate int) *Buffer {
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
	}

	return &Buffer{SampleRate: sampleRate, Data: data}
}

// FrameCount is the number of frames per channel.
func (b *Buffer) FrameCount() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

func (b *Buffer) ChannelCount() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Validate checks the shape readers of a Buffer index by: at least one
// frame, a positive sample rate and channels of equal length.
func (b *Buffer) Validate() error {
	if b.FrameCount() == 0 {
		return ErrEmptySource
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidLayout, b.SampleRate)
	}
	frames := len(b.Data[0])
	for c, ch := range b.Data {
		if len(ch) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, channel 0 has %d", ErrInvalidLayout, c, len(ch), frames)
		}
	}
	return nil
}

// Channel returns the samples of channel c.
func (b *Buffer) Channel(c int) []float32 { return b.Data[c] }

// Duration is the playing time of the buffer at its own sample rate.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.FrameCount()) * time.Second / time.Duration(b.SampleRate)
}

// Interleave writes the buffer as interleaved samples into dst, growing it
// when needed, and returns the result.
func (b *Buffer) Interleave(dst []float32) []float32 {
	channels := b.ChannelCount()
	frames := b.FrameCount()
	n := channels * frames

	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]

	for c, ch := range b.Data {
		for f, v := range ch {
			dst[f*channels+c] = v
		}
	}

	return dst
}

// Collect drains src into a planar Buffer. The source is read until
// io.EOF; it is not closed.
func Collect(src Source) (*Buffer, error) {
	channels := src.Channels()
	rate := src.SampleRate()
	if channels <= 0 || rate <= 0 {
		return nil, ErrInvalidLayout
	}

	buf := &Buffer{SampleRate: rate, Data: make([][]float32, channels)}
	tmp := make([]float32, collectChunkFrames*channels)

	for {
		n, err := src.ReadSamples(tmp)
		frames := n / channels
		for f := range frames {
			base := f * channels
			for c := range channels {
				buf.Data[c] = append(buf.Data[c], tmp[base+c])
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("collecting samples: %w", err)
		}
		if n == 0 {
			// Decoders may report (0, nil) once they run dry.
			break
		}
	}

	if buf.FrameCount() == 0 {
		return nil, ErrEmptySource
	}

	return buf, nil
}
