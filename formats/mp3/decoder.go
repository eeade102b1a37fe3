// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/utils"
)

// go-mp3 always emits 16-bit little-endian stereo.
const channels = 2

// ErrInvalidDstSize is returned for a destination holding half a frame.
var ErrInvalidDstSize = errors.New("destination must hold whole stereo frames")

// mp3Reader is the part of *gomp3.Decoder a source needs.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec mp3Reader
	buf []byte
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	// Read may return short counts mid-stream; fill as far as it goes.
	got := 0
	var err error
	for got < need && err == nil {
		var n int
		n, err = s.dec.Read(s.buf[got:])
		got += n
		if n == 0 && err == nil {
			break
		}
	}

	samples := got / 2
	samples -= samples % channels
	for i := range samples {
		v := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = utils.Int16ToFloat32(v)
	}

	switch {
	case err == nil && samples == 0:
		return 0, io.EOF
	case err != nil && err != io.EOF:
		return samples, fmt.Errorf("decoding mp3: %w", err)
	}
	return samples, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening mp3 stream: %w", err)
	}

	return &source{dec: dec, buf: make([]byte, 8192)}, nil
}
