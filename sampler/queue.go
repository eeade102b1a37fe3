// SPDX-License-Identifier: EPL-2.0

package sampler

import "sync/atomic"

type eventKind uint8

const (
	noteOn eventKind = iota + 1
	noteOff
	allNotesOff
)

type event struct {
	kind     eventKind
	note     uint8
	velocity uint8
}

type cell struct {
	seq atomic.Uint64
	ev  event
}

// ring is a bounded multi-producer queue of note events. Each cell carries
// a sequence number that tells producers and the consumer whose turn it
// is, so neither side locks. A full ring rejects the event.
type ring struct {
	cells []cell
	mask  uint64
	head  atomic.Uint64
	tail  atomic.Uint64
}

// newRing rounds capacity up to a power of two.
func newRing(capacity int) *ring {
	size := 1
	for size < capacity {
		size <<= 1
	}

	r := &ring{cells: make([]cell, size), mask: uint64(size - 1)}
	for i := range r.cells {
		r.cells[i].seq.Store(uint64(i))
	}
	return r
}

func (r *ring) capacity() int { return len(r.cells) }

func (r *ring) push(ev event) bool {
	for {
		pos := r.head.Load()
		c := &r.cells[pos&r.mask]
		switch d := int64(c.seq.Load()) - int64(pos); {
		case d == 0:
			if r.head.CompareAndSwap(pos, pos+1) {
				c.ev = ev
				c.seq.Store(pos + 1)
				return true
			}
		case d < 0:
			return false
		}
	}
}

func (r *ring) pop() (event, bool) {
	for {
		pos := r.tail.Load()
		c := &r.cells[pos&r.mask]
		switch d := int64(c.seq.Load()) - int64(pos+1); {
		case d == 0:
			if r.tail.CompareAndSwap(pos, pos+1) {
				ev := c.ev
				c.seq.Store(pos + r.mask + 1)
				return ev, true
			}
		case d < 0:
			return event{}, false
		}
	}
}
