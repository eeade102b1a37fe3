// SPDX-License-Identifier: EPL-2.0

package voice

import (
	"math"

	"github.com/viterin/vek/vek32"

	"github.com/ik5/audgraph/audio"
)

// DefaultMaxFrames sizes the renderer scratch when no block size is given.
const DefaultMaxFrames = 4096

// Renderer mixes the active voices of a pool into planar output.
//
// Render and RenderTrack run on the render callback: they do not lock,
// allocate or panic for output shaped channels x frames. A Renderer is not
// safe for concurrent use; the callback owns it.
type Renderer struct {
	pool    *Pool
	scratch []float32
}

// NewRenderer preallocates scratch for blocks of up to maxFrames. Longer
// blocks are mixed in maxFrames chunks.
func NewRenderer(pool *Pool, maxFrames int) *Renderer {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	return &Renderer{
		pool:    pool,
		scratch: make([]float32, maxFrames),
	}
}

func (r *Renderer) Pool() *Pool { return r.pool }

// Render adds every active voice into out, then advances each rendered
// voice once by frames and releases the ones that reached their end.
// out is not cleared first. It returns the number of voices mixed.
func (r *Renderer) Render(out [][]float32, frames int) int {
	frames = clampFrames(out, frames)
	if frames == 0 {
		return 0
	}

	mixed := 0
	for i := range r.pool.slots {
		s := &r.pool.slots[i]
		w := s.word.Load()
		if stateOf(w) != Active {
			continue
		}
		buf := s.buf.Load()
		if buf == nil {
			continue
		}

		gain := math.Float32frombits(s.gain.Load())
		r.mix(out, buf, headOf(w), frames, gain)
		mixed++

		id := makeID(i, genOf(w))
		if !r.pool.Advance(id, frames) {
			r.pool.Release(id)
		}
	}

	return mixed
}

// RenderTrack adds buf, read from playhead, into out. It reports whether
// any frames of buf remain after this block. Nothing is advanced; the
// caller owns the playhead.
func (r *Renderer) RenderTrack(out [][]float32, buf *audio.Buffer, playhead int64, frames int, gain float32) bool {
	frames = clampFrames(out, frames)
	if buf.FrameCount() == 0 {
		return false
	}

	r.mix(out, buf, playhead, frames, gain)

	return playhead+int64(frames) < int64(buf.FrameCount())
}

// mix adds frames of buf starting at head into out. Frames past the end of
// buf contribute nothing. Output channel c takes source channel c mod the
// source channel count, so mono buffers reach every output channel.
func (r *Renderer) mix(out [][]float32, buf *audio.Buffer, head int64, frames int, gain float32) {
	total := int64(buf.FrameCount())
	if head < 0 || head >= total {
		return
	}
	avail := int(min(int64(frames), total-head))
	srcChannels := buf.ChannelCount()

	for c := range out {
		src := buf.Data[c%srcChannels][head : head+int64(avail)]
		dst := out[c][:avail]

		if gain == 1 {
			vek32.Add_Inplace(dst, src)
			continue
		}
		for off := 0; off < avail; off += len(r.scratch) {
			end := min(off+len(r.scratch), avail)
			tmp := vek32.MulNumber_Into(r.scratch[:end-off], src[off:end], gain)
			vek32.Add_Inplace(dst[off:end], tmp)
		}
	}
}

// clampFrames limits frames to the shortest output channel.
func clampFrames(out [][]float32, frames int) int {
	if len(out) == 0 || frames <= 0 {
		return 0
	}
	for _, ch := range out {
		frames = min(frames, len(ch))
	}
	return frames
}
