// SPDX-License-Identifier: EPL-2.0

package voice

// A voice slot keeps everything that must change together in one word:
//
//	bits  0..1   state
//	bits  2..47  playhead in frames
//	bits 48..63  generation
//
// Every transition is a single compare-and-swap on that word.

// State is the lifecycle stage of a voice slot.
type State uint8

const (
	Free State = iota
	Claimed
	Active
)

func (s State) String() string {
	switch s {
	case Free:
		return "free"
	case Claimed:
		return "claimed"
	case Active:
		return "active"
	default:
		return "invalid"
	}
}

const (
	stateBits = 2
	headBits  = 46

	stateMask = 1<<stateBits - 1
	headMask  = 1<<headBits - 1
	genShift  = stateBits + headBits

	// MaxPlayhead is the largest frame offset a voice can hold.
	MaxPlayhead = headMask
)

func pack(gen uint16, head int64, st State) uint64 {
	if head < 0 {
		head = 0
	} else if head > headMask {
		head = headMask
	}
	return uint64(gen)<<genShift | uint64(head)<<stateBits | uint64(st)&stateMask
}

func stateOf(w uint64) State { return State(w & stateMask) }
func headOf(w uint64) int64  { return int64(w >> stateBits & headMask) }
func genOf(w uint64) uint16  { return uint16(w >> genShift) }

// ID names one occupancy of a slot. A later occupant of the same slot gets
// a different generation, so stale IDs stop matching.
type ID uint64

// None is returned when no voice could be started.
const None ID = 0

func makeID(index int, gen uint16) ID {
	return ID(uint64(gen)<<32 | uint64(index+1))
}

func (id ID) index() int  { return int(uint32(id)) - 1 }
func (id ID) gen() uint16 { return uint16(id >> 32) }

// Index is the slot the voice occupies.
func (id ID) Index() int { return id.index() }
