// SPDX-License-Identifier: EPL-2.0

package audio

import "io"

// Conform adapts src to the given sample rate and channel layout.
//
// A Resampler is inserted when the rates differ. When channels is 1 and the
// source is not mono, a MonoMixer folds it down. Other channel layouts are
// passed through unchanged: renderers map source channel c%n to output
// channel c, so a mono source reaches every output channel.
func Conform(src Source, sampleRate, channels int) Source {
	out := src
	if sampleRate > 0 && out.SampleRate() != sampleRate {
		out = NewResampler(out, sampleRate)
	}
	if channels == 1 && out.Channels() > 1 {
		out = NewMonoMixer(out)
	}
	return out
}

// ConformBuffer re-reads an in-memory buffer through Conform. A buffer that
// already matches is returned as is.
func ConformBuffer(buf *Buffer, sampleRate, channels int) (*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	rateOK := sampleRate <= 0 || buf.SampleRate == sampleRate
	layoutOK := channels != 1 || buf.ChannelCount() == 1
	if rateOK && layoutOK {
		return buf, nil
	}

	return Collect(Conform(NewBufferSource(buf), sampleRate, channels))
}

// BufferSource streams a Buffer as an interleaved Source.
type BufferSource struct {
	buf *Buffer
	pos int
}

func NewBufferSource(buf *Buffer) *BufferSource {
	return &BufferSource{buf: buf}
}

func (s *BufferSource) SampleRate() int { return s.buf.SampleRate }
func (s *BufferSource) Channels() int   { return s.buf.ChannelCount() }
func (s *BufferSource) BufSize() int    { return collectChunkFrames * s.buf.ChannelCount() }
func (s *BufferSource) Close() error    { return nil }

func (s *BufferSource) ReadSamples(dst []float32) (int, error) {
	channels := s.buf.ChannelCount()
	if channels == 0 {
		return 0, io.EOF
	}
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := min(len(dst)/channels, s.buf.FrameCount()-s.pos)
	for f := range frames {
		for c := range channels {
			dst[f*channels+c] = s.buf.Data[c][s.pos+f]
		}
	}
	s.pos += frames

	if s.pos >= s.buf.FrameCount() {
		return frames * channels, io.EOF
	}
	return frames * channels, nil
}
