// SPDX-License-Identifier: EPL-2.0

// Package voice implements a fixed-size, lock-free voice pool and the
// renderer that mixes its active voices.
//
// Both the control side and the render callback may claim voices. Claims,
// releases and playhead moves are compare-and-swap transitions on one
// packed word per slot, so no path takes a lock or allocates. When every
// slot is busy, the active voice furthest into its buffer is stolen.
package voice

import (
	"math"
	"sync/atomic"

	"github.com/ik5/audgraph/audio"
)

// DefaultSize is the pool size used when none is given.
const DefaultSize = 1024

// MaxSize is the largest pool NewPool accepts.
const MaxSize = math.MaxUint16

// retries bounds how often Allocate restarts after losing a race.
const retries = 4

// NoNote marks voices that were not started from a note.
const NoNote = -1

type slot struct {
	word atomic.Uint64
	buf  atomic.Pointer[audio.Buffer]
	note atomic.Int32
	gain atomic.Uint32
}

// Pool is a fixed array of voice slots. Its size never changes.
type Pool struct {
	slots  []slot
	hint   atomic.Uint32
	steals atomic.Uint64
}

// NewPool allocates size slots. Sizes outside 1..MaxSize fall back to
// DefaultSize.
func NewPool(size int) *Pool {
	if size <= 0 || size > MaxSize {
		size = DefaultSize
	}
	return &Pool{slots: make([]slot, size)}
}

func (p *Pool) Size() int { return len(p.slots) }

// Steals counts allocations that had to take over an active voice.
func (p *Pool) Steals() uint64 { return p.steals.Load() }

// Allocate starts buf at playhead 0 with unity gain.
func (p *Pool) Allocate(buf *audio.Buffer) ID {
	return p.AllocateNote(buf, NoNote, 1)
}

// AllocateNote starts buf at playhead 0, tagged with note so that
// ReleaseNote can find it. It returns None for a nil or empty buffer, or
// when every attempt lost a race against another claimer.
func (p *Pool) AllocateNote(buf *audio.Buffer, note int, gain float32) ID {
	if buf.FrameCount() == 0 {
		return None
	}

	n := len(p.slots)
	for range retries {
		start := int(p.hint.Load()) % n
		for i := range n {
			idx := start + i
			if idx >= n {
				idx -= n
			}
			s := &p.slots[idx]
			w := s.word.Load()
			if stateOf(w) != Free {
				continue
			}
			gen := genOf(w) + 1
			if s.word.CompareAndSwap(w, pack(gen, 0, Claimed)) {
				return p.start(idx, gen, buf, note, gain)
			}
		}

		idx, w, ok := p.victim()
		if !ok {
			continue
		}
		gen := genOf(w) + 1
		if p.slots[idx].word.CompareAndSwap(w, pack(gen, 0, Claimed)) {
			p.steals.Add(1)
			return p.start(idx, gen, buf, note, gain)
		}
	}

	return None
}

// victim finds the active voice with the largest playhead. Ties go to the
// lowest index.
func (p *Pool) victim() (int, uint64, bool) {
	best, bestWord := -1, uint64(0)
	bestHead := int64(-1)

	for i := range p.slots {
		w := p.slots[i].word.Load()
		if stateOf(w) != Active {
			continue
		}
		if h := headOf(w); h > bestHead {
			best, bestWord, bestHead = i, w, h
		}
	}

	return best, bestWord, best >= 0
}

// start fills a claimed slot and publishes it as active.
func (p *Pool) start(idx int, gen uint16, buf *audio.Buffer, note int, gain float32) ID {
	s := &p.slots[idx]
	s.buf.Store(buf)
	s.note.Store(int32(note))
	s.gain.Store(math.Float32bits(gain))
	s.word.Store(pack(gen, 0, Active))

	p.hint.Store(uint32(idx + 1))

	return makeID(idx, gen)
}

func (p *Pool) lookup(id ID) (*slot, bool) {
	idx := id.index()
	if idx < 0 || idx >= len(p.slots) {
		return nil, false
	}
	return &p.slots[idx], true
}

// Release frees the voice if id still names its current occupant.
func (p *Pool) Release(id ID) bool {
	s, ok := p.lookup(id)
	if !ok {
		return false
	}

	for {
		w := s.word.Load()
		if genOf(w) != id.gen() || stateOf(w) != Active {
			return false
		}
		if s.word.CompareAndSwap(w, pack(id.gen(), 0, Free)) {
			return true
		}
	}
}

// Advance moves the playhead of an active voice by frames. It reports
// whether the voice still has frames left to play; once it returns false
// the caller should Release it. A stale id returns false and changes
// nothing.
func (p *Pool) Advance(id ID, frames int) bool {
	s, ok := p.lookup(id)
	if !ok {
		return false
	}

	for {
		w := s.word.Load()
		if genOf(w) != id.gen() || stateOf(w) != Active {
			return false
		}
		// buf is only replaced while the slot is claimed, so a successful
		// CAS on w proves buf still belongs to id.
		buf := s.buf.Load()
		head := headOf(w) + int64(frames)
		if s.word.CompareAndSwap(w, pack(id.gen(), head, Active)) {
			return head < int64(buf.FrameCount())
		}
	}
}

// Playhead returns the current frame offset of id.
func (p *Pool) Playhead(id ID) (int64, bool) {
	s, ok := p.lookup(id)
	if !ok {
		return 0, false
	}

	w := s.word.Load()
	if genOf(w) != id.gen() || stateOf(w) != Active {
		return 0, false
	}
	return headOf(w), true
}

// Active reports whether id is still playing.
func (p *Pool) Active(id ID) bool {
	_, ok := p.Playhead(id)
	return ok
}

// ActiveCount scans the pool. The result is a moment-in-time view.
func (p *Pool) ActiveCount() int {
	n := 0
	for i := range p.slots {
		if stateOf(p.slots[i].word.Load()) == Active {
			n++
		}
	}
	return n
}

// ReleaseNote frees every active voice started for note and returns how
// many were released.
func (p *Pool) ReleaseNote(note int) int {
	n := 0
	for i := range p.slots {
		s := &p.slots[i]
		w := s.word.Load()
		if stateOf(w) != Active || int(s.note.Load()) != note {
			continue
		}
		if p.Release(makeID(i, genOf(w))) {
			n++
		}
	}
	return n
}

// ReleaseAll frees every active voice.
func (p *Pool) ReleaseAll() int {
	n := 0
	for i := range p.slots {
		w := p.slots[i].word.Load()
		if stateOf(w) != Active {
			continue
		}
		if p.Release(makeID(i, genOf(w))) {
			n++
		}
	}
	return n
}
