// SPDX-License-Identifier: EPL-2.0

// Package transport tracks whether the engine is playing and where.
//
// The playing flag and the frame position share one atomic word, so a
// reader never sees a position from one command paired with the flag of
// another. Control calls may race with the render callback; a seek that
// lands between a render's Load and Advance wins, and that render's
// advance is dropped.
package transport

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/ik5/audgraph/utils"
)

// ErrInvalidPosition is returned for negative, NaN, infinite or
// out-of-range seek targets.
var ErrInvalidPosition = errors.New("invalid transport position")

const (
	playingBit = 1 << 63

	// MaxFrame is the largest representable position.
	MaxFrame = playingBit - 1
)

// Transport is safe for concurrent use.
type Transport struct {
	rate int
	word atomic.Uint64
}

// Snapshot is one consistent reading of the transport.
type Snapshot struct {
	Playing bool
	Frame   int64

	word uint64
}

// New returns a stopped transport at frame 0.
func New(sampleRate int) *Transport {
	return &Transport{rate: sampleRate}
}

func (t *Transport) SampleRate() int { return t.rate }

func pack(playing bool, frame int64) uint64 {
	w := uint64(frame) & MaxFrame
	if playing {
		w |= playingBit
	}
	return w
}

func unpack(w uint64) Snapshot {
	return Snapshot{Playing: w&playingBit != 0, Frame: int64(w & MaxFrame), word: w}
}

// update applies fn to the current state until the swap succeeds.
func (t *Transport) update(fn func(playing bool, frame int64) (bool, int64)) {
	for {
		w := t.word.Load()
		s := unpack(w)
		if t.word.CompareAndSwap(w, pack(fn(s.Playing, s.Frame))) {
			return
		}
	}
}

// Play starts playback from the current position. Calling it while
// playing changes nothing.
func (t *Transport) Play() {
	t.update(func(_ bool, frame int64) (bool, int64) { return true, frame })
}

// Stop halts playback and keeps the position. Calling it while stopped
// changes nothing.
func (t *Transport) Stop() {
	t.update(func(_ bool, frame int64) (bool, int64) { return false, frame })
}

// Seek moves to seconds, rounded to the nearest frame. The playing state
// is unchanged.
func (t *Transport) Seek(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPosition, seconds)
	}
	if seconds*float64(t.rate) >= MaxFrame {
		return fmt.Errorf("%w: %v", ErrInvalidPosition, seconds)
	}
	return t.SeekFrame(utils.SecondsToFrames(seconds, t.rate))
}

// SeekFrame moves to an absolute frame.
func (t *Transport) SeekFrame(frame int64) error {
	if frame < 0 {
		return fmt.Errorf("%w: frame %d", ErrInvalidPosition, frame)
	}
	t.update(func(playing bool, _ int64) (bool, int64) { return playing, frame })
	return nil
}

// Rewind seeks to frame 0.
func (t *Transport) Rewind() {
	_ = t.SeekFrame(0)
}

// Position is the current position in seconds.
func (t *Transport) Position() float64 {
	return utils.FramesToSeconds(t.Frame(), t.rate)
}

func (t *Transport) Frame() int64 { return t.Load().Frame }

func (t *Transport) IsPlaying() bool { return t.Load().Playing }

// Load reads the transport for one render block.
func (t *Transport) Load() Snapshot {
	return unpack(t.word.Load())
}

// Advance moves the position on by frames if the transport still matches
// s. It returns false, leaving the state alone, when s is stale or the
// transport is stopped.
func (t *Transport) Advance(s Snapshot, frames int) bool {
	if !s.Playing || frames <= 0 {
		return false
	}
	next := min(s.Frame+int64(frames), MaxFrame)
	return t.word.CompareAndSwap(s.word, pack(true, next))
}
