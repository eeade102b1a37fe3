// SPDX-License-Identifier: EPL-2.0

package output

import (
	"sync/atomic"

	"github.com/ik5/audgraph/graph"
)

// DefaultBlockSize is the number of frames rendered per callback when no
// block size is given.
const DefaultBlockSize = 512

// blocks renders fixed-size planar blocks. It is owned by one reader.
type blocks struct {
	render   graph.RenderFunc
	channels int
	size     int
	buf      [][]float32

	flags graph.ActionFlags
	ts    graph.Timestamp

	glitches atomic.Uint64
	last     atomic.Int32
}

func newBlocks(render graph.RenderFunc, channels, size int) *blocks {
	if size <= 0 {
		size = DefaultBlockSize
	}
	channels = max(channels, 1)

	b := &blocks{
		render:   render,
		channels: channels,
		size:     size,
		buf:      make([][]float32, channels),
	}
	for c := range b.buf {
		b.buf[c] = make([]float32, size)
	}
	return b
}

// next renders one block into b.buf. A failed block is silenced.
func (b *blocks) next() {
	for _, ch := range b.buf {
		clear(ch)
	}

	b.flags = 0
	st := b.render(&b.flags, &b.ts, b.size, 0, b.buf, nil)
	if st != graph.StatusOK {
		for _, ch := range b.buf {
			clear(ch)
		}
		b.glitches.Add(1)
		b.last.Store(int32(st))
	}
	b.ts.SampleTime += int64(b.size)
}

func (b *blocks) Channels() int  { return b.channels }
func (b *blocks) BlockSize() int { return b.size }

// Glitches counts blocks replaced by silence after a failed render.
func (b *blocks) Glitches() uint64 { return b.glitches.Load() }

// LastStatus is the status of the most recent failed block, or
// graph.StatusOK when none failed.
func (b *blocks) LastStatus() graph.Status { return graph.Status(b.last.Load()) }

// SampleTime is the number of frames rendered so far.
func (b *blocks) SampleTime() int64 { return b.ts.SampleTime }
