// SPDX-License-Identifier: EPL-2.0

// Package sampler is the control facade and render unit of the sample
// player.
//
// Control methods (loading, note assignment, transport commands, note
// triggers) may block and allocate. Render runs inside the graph executor:
// it drains queued note events, mixes the transport track and every active
// voice, and advances them, all without locks or allocation.
package sampler

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/viterin/vek/vek32"
	"gitlab.com/gomidi/midi/v2"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/bank"
	"github.com/ik5/audgraph/graph"
	"github.com/ik5/audgraph/param"
	"github.com/ik5/audgraph/transport"
	"github.com/ik5/audgraph/voice"
)

// DefaultQueueSize is the note event capacity between two callbacks.
const DefaultQueueSize = 256

// ccAllNotesOff is the MIDI "all notes off" controller number.
const ccAllNotesOff = 123

// VolumeDef describes the sampler output level.
var VolumeDef = param.Def{
	Identifier: "volume",
	Name:       "Volume",
	Address:    0,
	Default:    1,
	Min:        0,
	Max:        2,
	Unit:       param.LinearGain,
}

type Sampler struct {
	bank      *bank.Bank
	pool      *voice.Pool
	transport *transport.Transport
	renderer  *voice.Renderer

	volume *param.Param
	params *param.Tree

	events  *ring
	track   atomic.Pointer[audio.Buffer]
	oneShot bool

	dropped  atomic.Uint64
	unmapped atomic.Uint64

	log       *slog.Logger
	queueSize int
	maxFrames int
}

type Option func(*Sampler)

func WithLogger(l *slog.Logger) Option {
	return func(s *Sampler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithQueueSize sets how many note events may wait for the next callback.
func WithQueueSize(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithMaxFrames sizes the mixing scratch for the host block size.
func WithMaxFrames(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.maxFrames = n
		}
	}
}

// WithOneShot makes voices ignore note-off and play to the end of their
// sample.
func WithOneShot() Option {
	return func(s *Sampler) { s.oneShot = true }
}

func New(b *bank.Bank, pool *voice.Pool, tr *transport.Transport, opts ...Option) *Sampler {
	s := &Sampler{
		bank:      b,
		pool:      pool,
		transport: tr,
		log:       slog.Default(),
		queueSize: DefaultQueueSize,
		maxFrames: voice.DefaultMaxFrames,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.renderer = voice.NewRenderer(pool, s.maxFrames)
	s.events = newRing(s.queueSize)
	s.volume = param.MustNew(VolumeDef)
	s.params, _ = param.NewTree(s.volume)

	return s
}

func (s *Sampler) Bank() *bank.Bank                { return s.bank }
func (s *Sampler) Pool() *voice.Pool               { return s.pool }
func (s *Sampler) Transport() *transport.Transport { return s.transport }
func (s *Sampler) Params() *param.Tree             { return s.params }

// LoadFile decodes path into the bank.
func (s *Sampler) LoadFile(path string) (bank.Handle, error) {
	return s.bank.LoadFile(path)
}

// AssignNote maps note to a loaded sample.
func (s *Sampler) AssignNote(note int, h bank.Handle) error {
	return s.bank.Assign(note, h)
}

// SetTrack selects the sample that follows the transport: it plays from
// the transport position while the transport is playing.
func (s *Sampler) SetTrack(h bank.Handle) error {
	buf := s.bank.Buffer(h)
	if buf == nil {
		return fmt.Errorf("%w: %d", bank.ErrUnknownHandle, h)
	}
	s.track.Store(buf)
	s.log.Debug("track set", "handle", int(h), "duration", buf.Duration())
	return nil
}

// ClearTrack removes the transport track.
func (s *Sampler) ClearTrack() { s.track.Store(nil) }

// Track returns the current transport track, or nil.
func (s *Sampler) Track() *audio.Buffer { return s.track.Load() }

func (s *Sampler) Play()                      { s.transport.Play() }
func (s *Sampler) Stop()                      { s.transport.Stop() }
func (s *Sampler) Rewind()                    { s.transport.Rewind() }
func (s *Sampler) Seek(seconds float64) error { return s.transport.Seek(seconds) }
func (s *Sampler) Position() float64          { return s.transport.Position() }
func (s *Sampler) IsPlaying() bool            { return s.transport.IsPlaying() }

// Trigger starts the sample mapped to note immediately from the calling
// goroutine, at full velocity.
func (s *Sampler) Trigger(note int) (voice.ID, error) {
	if note < 0 || note >= bank.Notes {
		return voice.None, fmt.Errorf("%w: %d", bank.ErrInvalidNote, note)
	}
	buf := s.bank.Lookup(note)
	if buf == nil {
		return voice.None, fmt.Errorf("%w: %d", ErrNoSample, note)
	}

	id := s.pool.AllocateNote(buf, note, 1)
	if id == voice.None {
		return voice.None, ErrNoVoice
	}
	return id, nil
}

// NoteOn queues a note start for the next render callback. A velocity of
// zero is a note-off, as in MIDI.
func (s *Sampler) NoteOn(note int, velocity uint8) error {
	if velocity == 0 {
		return s.NoteOff(note)
	}
	return s.enqueue(event{kind: noteOn, note: uint8(note), velocity: min(velocity, 127)}, note)
}

// NoteOff queues the release of every voice started for note.
func (s *Sampler) NoteOff(note int) error {
	return s.enqueue(event{kind: noteOff, note: uint8(note)}, note)
}

// AllNotesOff queues the release of every voice.
func (s *Sampler) AllNotesOff() error {
	return s.enqueue(event{kind: allNotesOff}, 0)
}

func (s *Sampler) enqueue(ev event, note int) error {
	if note < 0 || note >= bank.Notes {
		return fmt.Errorf("%w: %d", bank.ErrInvalidNote, note)
	}
	if !s.events.push(ev) {
		s.dropped.Add(1)
		return ErrQueueFull
	}
	return nil
}

// HandleMessage queues note-on, note-off and all-notes-off messages and
// ignores everything else. The MIDI channel is not used.
func (s *Sampler) HandleMessage(msg midi.Message) error {
	var ch, key, vel, cc, val uint8

	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		return s.NoteOn(int(key), vel)
	case msg.GetNoteOff(&ch, &key, &vel):
		return s.NoteOff(int(key))
	case msg.GetControlChange(&ch, &cc, &val) && cc == ccAllNotesOff:
		return s.AllNotesOff()
	}
	return nil
}

// Dropped counts note events rejected because the queue was full.
func (s *Sampler) Dropped() uint64 { return s.dropped.Load() }

// Unmapped counts note-on events for notes with no sample.
func (s *Sampler) Unmapped() uint64 { return s.unmapped.Load() }

func (s *Sampler) drain() {
	for {
		ev, ok := s.events.pop()
		if !ok {
			return
		}

		switch ev.kind {
		case noteOn:
			buf := s.bank.Lookup(int(ev.note))
			if buf == nil {
				s.unmapped.Add(1)
				continue
			}
			s.pool.AllocateNote(buf, int(ev.note), float32(ev.velocity)/127)
		case noteOff:
			if !s.oneShot {
				s.pool.ReleaseNote(int(ev.note))
			}
		case allNotesOff:
			s.pool.ReleaseAll()
		}
	}
}

// Render is a graph.RenderFunc. While the transport is stopped it writes
// silence and nothing advances. While playing it mixes the track from the
// transport position plus every active voice, advances both by frames and
// applies the volume parameter.
func (s *Sampler) Render(flags *graph.ActionFlags, _ *graph.Timestamp, frames, _ int, out [][]float32, _ graph.PullFunc) graph.Status {
	if frames <= 0 {
		return graph.StatusOK
	}
	for _, ch := range out {
		if frames > len(ch) {
			return graph.StatusTooManyFrames
		}
		clear(ch[:frames])
	}

	s.drain()

	snap := s.transport.Load()
	if !snap.Playing {
		if flags != nil {
			*flags |= graph.OutputIsSilence
		}
		return graph.StatusOK
	}

	if track := s.track.Load(); track != nil {
		s.renderer.RenderTrack(out, track, snap.Frame, frames, 1)
	}
	s.renderer.Render(out, frames)
	s.transport.Advance(snap, frames)

	if g := s.volume.Value(); g != 1 {
		for _, ch := range out {
			vek32.MulNumber_Inplace(ch[:frames], g)
		}
	}

	return graph.StatusOK
}
