// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audgraph/audio"
)

// oggReader is the part of *oggvorbis.Reader a source needs.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec oggReader
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.dec.Channels() }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 * s.dec.Channels() }

// ReadSamples decodes straight into dst; the reader already yields
// interleaved float32 samples.
func (s *source) ReadSamples(dst []float32) (int, error) {
	dst = dst[:len(dst)-len(dst)%s.dec.Channels()]
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("decoding vorbis: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening ogg stream: %w", err)
	}

	return &source{dec: dec}, nil
}
