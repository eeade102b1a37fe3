// SPDX-License-Identifier: EPL-2.0

package output

import (
	"encoding/binary"
	"math"

	"github.com/ik5/audgraph/graph"
)

// bytesPerSample is the size of one float32 sample on the wire.
const bytesPerSample = 4

// Stream is an io.Reader of interleaved float32 little-endian samples.
// Read never fails and never returns io.EOF: the render function decides
// what is audible. A Stream is read by one goroutine at a time.
type Stream struct {
	*blocks

	raw     []byte
	pending []byte
}

// NewStream renders blockSize frames of channels per call to render.
func NewStream(render graph.RenderFunc, channels, blockSize int) *Stream {
	b := newBlocks(render, channels, blockSize)
	return &Stream{
		blocks: b,
		raw:    make([]byte, b.size*b.channels*bytesPerSample),
	}
}

// Read fills p, rendering as many blocks as it needs. Bytes of a block
// that do not fit are kept for the next call.
func (s *Stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) == 0 {
			s.fill()
		}
		c := copy(p[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}
	return n, nil
}

func (s *Stream) fill() {
	s.next()

	i := 0
	for f := range s.size {
		for c := range s.channels {
			binary.LittleEndian.PutUint32(s.raw[i:], math.Float32bits(s.buf[c][f]))
			i += bytesPerSample
		}
	}
	s.pending = s.raw
}
