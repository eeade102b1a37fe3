// SPDX-License-Identifier: EPL-2.0

package output

import (
	"github.com/gopxl/beep"

	"github.com/ik5/audgraph/graph"
)

// Streamer adapts a render function to beep. Mono output is copied to both
// beep channels; channels past the second are dropped.
type Streamer struct {
	*blocks

	rate beep.SampleRate
	pos  int // next unread frame of buf; size means empty
}

var _ beep.Streamer = (*Streamer)(nil)

func NewStreamer(render graph.RenderFunc, sampleRate, channels, blockSize int) *Streamer {
	b := newBlocks(render, channels, blockSize)
	return &Streamer{blocks: b, rate: beep.SampleRate(sampleRate), pos: b.size}
}

// Format describes the stream for beep speakers and encoders.
func (s *Streamer) Format() beep.Format {
	return beep.Format{SampleRate: s.rate, NumChannels: 2, Precision: 4}
}

// Stream always fills samples; the render function never runs dry.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	right := min(1, s.channels-1)

	for i := range samples {
		if s.pos >= s.size {
			s.next()
			s.pos = 0
		}
		samples[i][0] = float64(s.buf[0][s.pos])
		samples[i][1] = float64(s.buf[right][s.pos])
		s.pos++
	}
	return len(samples), true
}

func (s *Streamer) Err() error { return nil }
