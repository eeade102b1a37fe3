// SPDX-License-Identifier: EPL-2.0

// Package bank owns decoded sample buffers and the note-to-sample map.
//
// Writes happen on the control side under a mutex and publish a fresh
// NoteMap with one atomic store. Lookup is a single atomic load and is
// safe to call from the render callback.
package bank

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats"
)

// Notes is the number of addressable MIDI notes.
const Notes = 128

// Handle identifies a loaded buffer. The zero Handle is never issued.
type Handle int

// NoteMap is an immutable note-to-buffer table. A nil entry cannot start
// a voice.
type NoteMap [Notes]*audio.Buffer

// Bank stores sample buffers conformed to one sample rate and layout.
type Bank struct {
	mu       sync.Mutex
	reg      *audio.Registry
	rate     int
	channels int
	buffers  []*audio.Buffer
	notes    atomic.Pointer[NoteMap]
	log      *slog.Logger
}

type Option func(*Bank)

// WithRegistry replaces the decoder registry used by LoadFile and LoadReader.
func WithRegistry(reg *audio.Registry) Option {
	return func(b *Bank) {
		if reg != nil {
			b.reg = reg
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Bank) {
		if l != nil {
			b.log = l
		}
	}
}

// New returns an empty bank whose buffers are conformed to sampleRate and
// channels at load time.
func New(sampleRate, channels int, opts ...Option) *Bank {
	b := &Bank{
		rate:     sampleRate,
		channels: channels,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.reg == nil {
		b.reg = formats.NewRegistry()
	}
	b.notes.Store(&NoteMap{})

	return b
}

func (b *Bank) SampleRate() int { return b.rate }
func (b *Bank) Channels() int   { return b.channels }

// Load registers an already decoded buffer. A buffer at another sample
// rate is resampled first; the caller's buffer is not modified.
func (b *Bank) Load(buf *audio.Buffer) (Handle, error) {
	return b.load("", buf)
}

// LoadSource drains src into a buffer and registers it. src is not closed.
func (b *Bank) LoadSource(src audio.Source) (Handle, error) {
	return b.loadSource("", src)
}

// LoadReader decodes r with the decoder registered for the extension of
// name.
func (b *Bank) LoadReader(name string, r io.Reader) (Handle, error) {
	dec, _, err := b.reg.Lookup(name)
	if err != nil {
		return 0, &DecodeError{Path: name, Err: err}
	}

	src, err := dec.Decode(r)
	if err != nil {
		return 0, &DecodeError{Path: name, Err: err}
	}
	defer src.Close()

	return b.loadSource(name, src)
}

// LoadFile opens and decodes path.
func (b *Bank) LoadFile(path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	return b.LoadReader(path, f)
}

func (b *Bank) loadSource(path string, src audio.Source) (Handle, error) {
	buf, err := audio.Collect(audio.Conform(src, b.rate, b.channels))
	if err != nil {
		return 0, &DecodeError{Path: path, Err: err}
	}
	return b.store(path, buf)
}

func (b *Bank) load(path string, buf *audio.Buffer) (Handle, error) {
	// Voices slice every channel by the length of channel 0.
	if err := buf.Validate(); err != nil {
		return 0, &DecodeError{Path: path, Err: err}
	}

	conformed, err := audio.ConformBuffer(buf, b.rate, b.channels)
	if err != nil {
		return 0, &DecodeError{Path: path, Err: err}
	}
	return b.store(path, conformed)
}

func (b *Bank) store(path string, buf *audio.Buffer) (Handle, error) {
	b.mu.Lock()
	b.buffers = append(b.buffers, buf)
	h := Handle(len(b.buffers))
	b.mu.Unlock()

	b.log.Debug("sample loaded",
		"handle", int(h),
		"path", path,
		"frames", buf.FrameCount(),
		"channels", buf.ChannelCount(),
		"duration", buf.Duration(),
	)

	return h, nil
}

// Buffer returns the buffer behind h, or nil for an unknown handle.
func (b *Bank) Buffer(h Handle) *audio.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.bufferLocked(h)
}

func (b *Bank) bufferLocked(h Handle) *audio.Buffer {
	if h <= 0 || int(h) > len(b.buffers) {
		return nil
	}
	return b.buffers[h-1]
}

// Len is the number of loaded buffers.
func (b *Bank) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.buffers)
}

// Assign maps note to the buffer behind h, replacing any prior mapping.
// Assigning the same pair twice is a no-op.
func (b *Bank) Assign(note int, h Handle) error {
	if note < 0 || note >= Notes {
		return fmt.Errorf("%w: %d", ErrInvalidNote, note)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	buf := b.bufferLocked(h)
	if buf == nil {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}

	cur := b.notes.Load()
	if cur[note] == buf {
		return nil
	}

	next := *cur
	next[note] = buf
	b.notes.Store(&next)

	return nil
}

// Unassign clears the mapping for note.
func (b *Bank) Unassign(note int) error {
	if note < 0 || note >= Notes {
		return fmt.Errorf("%w: %d", ErrInvalidNote, note)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.notes.Load()
	if cur[note] == nil {
		return nil
	}

	next := *cur
	next[note] = nil
	b.notes.Store(&next)

	return nil
}

// Lookup returns the buffer mapped to note, or nil when the note is
// unmapped or out of range. It does not lock or allocate.
func (b *Bank) Lookup(note int) *audio.Buffer {
	if note < 0 || note >= Notes {
		return nil
	}
	return b.notes.Load()[note]
}

// Snapshot returns the current note map. The map is never mutated after
// publication, so the caller may keep it.
func (b *Bank) Snapshot() *NoteMap {
	return b.notes.Load()
}
