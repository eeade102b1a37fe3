// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audgraph/utils"
)

// Resampler streams from src to a target sample rate using Catmull-Rom
// cubic interpolation. Works on interleaved samples; preserves channel count.
// A one-pole low-pass runs on the input when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames consumed per output frame
	channels int

	// hist[0] = t-1, hist[1] = t0, hist[2] = t+1, hist[3] = t+2
	hist  [4][]float32
	valid [4]bool

	pos    float64 // fractional position between hist[1] and hist[2]
	primed bool
	eof    bool

	frame []float32

	lowpass bool
	alpha   float32
	state   []float32
	seeded  bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		channels: channels,
		frame:    make([]float32, channels),
		lowpass:  ratio > 1.0,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("closing resampler source: %w", err)
	}
	return nil
}

// pull reads exactly one frame from the source into r.frame.
func (r *Resampler) pull() (bool, error) {
	if r.eof {
		return false, nil
	}

	n, err := r.src.ReadSamples(r.frame)
	got := n == r.channels
	if got && r.lowpass {
		if !r.seeded {
			// First frame passes unfiltered.
			copy(r.state, r.frame)
			r.seeded = true
		}
		for c := range r.frame {
			r.frame[c] = r.alpha*r.frame[c] + (1-r.alpha)*r.state[c]
			r.state[c] = r.frame[c]
		}
	}

	switch {
	case err == io.EOF:
		r.eof = true
	case err != nil:
		return false, fmt.Errorf("resampler read: %w", err)
	case n == 0:
		r.eof = true
	}

	return got, nil
}

// prime loads the first three frames into hist[1..3]. hist[0] has no
// predecessor, so it mirrors hist[1] and stays invalid.
func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.pull()
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.hist[0], r.frame)
	copy(r.hist[1], r.frame)
	r.valid[1] = true

	for i := 2; i < len(r.hist); i++ {
		ok, err := r.pull()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		copy(r.hist[i], r.frame)
		r.valid[i] = true
	}

	return nil
}

// shift drops the oldest history frame and appends the next one.
func (r *Resampler) shift() error {
	if r.eof && !r.valid[3] {
		return io.EOF
	}

	for i := range 3 {
		copy(r.hist[i], r.hist[i+1])
		r.valid[i] = r.valid[i+1]
	}

	ok, err := r.pull()
	if err != nil {
		return err
	}
	if ok {
		copy(r.hist[3], r.frame)
	}
	r.valid[3] = ok

	if !ok && r.eof && !r.valid[2] {
		return io.EOF
	}

	return nil
}

// ReadSamples produces interleaved samples at the target rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	want := len(dst) / r.channels
	written := 0

	for written < want {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.valid[1] || !r.valid[2] {
			return written * r.channels, io.EOF
		}

		// Missing neighbours at the edges repeat the nearest frame.
		y0, y3 := r.hist[1], r.hist[2]
		if r.valid[0] {
			y0 = r.hist[0]
		}
		if r.valid[3] {
			y3 = r.hist[3]
		}
		utils.CubicFrame(dst[written*r.channels:(written+1)*r.channels], y0, r.hist[1], r.hist[2], y3, float32(r.pos))

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
