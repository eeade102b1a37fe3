// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts the go-audio integer decoders to audio.Source.
package pcm

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/utils"
)

// Reader is the part of the go-audio wav and aiff decoders a Source needs.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source streams integer PCM from a Reader as float32 samples.
type Source struct {
	dec      Reader
	format   *goaudio.Format
	bitDepth int
	unsigned bool // 8-bit WAV stores unsigned samples
	intBuf   *goaudio.IntBuffer
	closer   io.Closer
}

// NewSource wraps dec. unsigned8 must be set for 8-bit WAV data, which is
// stored with a +128 bias.
func NewSource(dec Reader, format *goaudio.Format, bitDepth int, unsigned8 bool) *Source {
	return &Source{
		dec:      dec,
		format:   format,
		bitDepth: bitDepth,
		unsigned: unsigned8 && bitDepth == 8,
	}
}

// WithCloser makes Close release c as well.
func (s *Source) WithCloser(c io.Closer) *Source {
	s.closer = c
	return s
}

func (s *Source) SampleRate() int { return s.format.SampleRate }
func (s *Source) Channels() int   { return s.format.NumChannels }
func (s *Source) BitDepth() int   { return s.bitDepth }

func (s *Source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("closing pcm source: %w", err)
	}
	return nil
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         s.format,
			SourceBitDepth: s.bitDepth,
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("reading pcm: %w", err)
		}
		return 0, io.EOF
	}

	// Keep whole frames only.
	n -= n % s.format.NumChannels

	for i, v := range s.intBuf.Data[:n] {
		if s.unsigned {
			v -= 128
		}
		dst[i] = utils.IntToFloat32(v, s.bitDepth)
	}

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("reading pcm: %w", err)
	}
	if err == io.EOF || n < len(dst)-len(dst)%s.format.NumChannels {
		return n, io.EOF
	}

	return n, nil
}

// ReadSeeker returns r when it can seek, otherwise reads it into memory.
// The go-audio decoders need to seek between chunks.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering input: %w", err)
	}

	return bytes.NewReader(data), nil
}

// IntBuffer quantizes buf to interleaved integers of the given bit depth.
func IntBuffer(buf *audio.Buffer, bitDepth int) *goaudio.IntBuffer {
	channels := buf.ChannelCount()
	frames := buf.FrameCount()

	out := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  buf.SampleRate,
		},
		Data:           make([]int, channels*frames),
		SourceBitDepth: bitDepth,
	}

	for c, ch := range buf.Data {
		for f, v := range ch {
			out.Data[f*channels+c] = utils.Float32ToInt(v, bitDepth)
		}
	}

	return out
}
