// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"errors"
	"slices"
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/bank"
	"github.com/ik5/audgraph/graph"
	"github.com/ik5/audgraph/internal/audiotest"
	"github.com/ik5/audgraph/transport"
	"github.com/ik5/audgraph/voice"
)

const rate = 44100

type fixture struct {
	s    *Sampler
	bank *bank.Bank
	pool *voice.Pool
	tr   *transport.Transport
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()

	b := bank.New(rate, 2)
	pool := voice.NewPool(8)
	tr := transport.New(rate)

	return fixture{s: New(b, pool, tr, opts...), bank: b, pool: pool, tr: tr}
}

func (f fixture) load(t *testing.T, data [][]float32) bank.Handle {
	t.Helper()

	h, err := f.bank.Load(&audio.Buffer{SampleRate: rate, Data: data})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return h
}

func (f fixture) render(frames int) ([][]float32, graph.ActionFlags, graph.Status) {
	out := audiotest.Constant(2, frames, 9) // garbage that Render must clear
	var flags graph.ActionFlags
	st := f.s.Render(&flags, &graph.Timestamp{}, frames, 0, out, nil)
	return out, flags, st
}

func TestSampler_StoppedIsSilent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := f.load(t, audiotest.Ramp(2, 1000))
	_ = f.s.SetTrack(h)
	_ = f.s.AssignNote(60, h)
	id, err := f.s.Trigger(60)
	if err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}

	out, flags, st := f.render(64)
	if st != graph.StatusOK {
		t.Fatalf("Render() = %v", st)
	}
	for c := range out {
		for i, v := range out[c] {
			if v != 0 {
				t.Fatalf("out[%d][%d] = %v while stopped, want 0", c, i, v)
			}
		}
	}
	if flags&graph.OutputIsSilence == 0 {
		t.Error("stopped render did not flag silence")
	}
	if f.tr.Frame() != 0 {
		t.Errorf("transport advanced to %d while stopped", f.tr.Frame())
	}
	if head, _ := f.pool.Playhead(id); head != 0 {
		t.Errorf("voice advanced to %d while stopped", head)
	}
}

func TestSampler_TrackFollowsTransport(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := f.load(t, audiotest.Ramp(2, 1000))
	if err := f.s.SetTrack(h); err != nil {
		t.Fatalf("SetTrack() error = %v", err)
	}

	if err := f.s.Seek(100.0 / rate); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	f.s.Play()

	out, _, _ := f.render(32)
	if out[1][0] != audiotest.RampValue(100, 1) {
		t.Errorf("out[1][0] = %v, want frame 100 (%v)", out[1][0], audiotest.RampValue(100, 1))
	}
	if f.tr.Frame() != 132 {
		t.Errorf("transport frame = %d, want 132", f.tr.Frame())
	}

	// Past the end the track is silent but the transport keeps going.
	_ = f.tr.SeekFrame(990)
	out, _, _ = f.render(32)
	if out[0][9] == 0 || out[0][10] != 0 {
		t.Errorf("tail = %v, want 10 frames then silence", out[0][:12])
	}
}

func TestSampler_SeekZeroReproducesOutput(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := f.load(t, audiotest.Ramp(2, 4096))
	_ = f.s.SetTrack(h)

	capture := func() []float32 {
		var all []float32
		for range 4 {
			out, _, _ := f.render(128)
			all = append(all, out[0]...)
			all = append(all, out[1]...)
		}
		return all
	}

	f.s.Play()
	first := capture()

	f.s.Stop()
	f.s.Stop()
	_ = f.s.Seek(0)
	_ = f.s.Seek(0)
	f.s.Play()
	second := capture()

	if !slices.Equal(first, second) {
		t.Error("seek(0)+play did not reproduce the first pass")
	}
}

func TestSampler_NoteEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := f.load(t, audiotest.Constant(1, 512, 1))
	_ = f.s.AssignNote(36, h)
	f.s.Play()

	if err := f.s.NoteOn(36, 127); err != nil {
		t.Fatalf("NoteOn() error = %v", err)
	}
	if f.pool.ActiveCount() != 0 {
		t.Fatal("NoteOn() started a voice before the render callback")
	}

	out, _, _ := f.render(16)
	if f.pool.ActiveCount() != 1 {
		t.Fatalf("ActiveCount() = %d after render, want 1", f.pool.ActiveCount())
	}
	if out[0][0] != 1 || out[1][15] != 1 {
		t.Errorf("voice output = %v / %v, want 1 on both channels", out[0][0], out[1][15])
	}

	_ = f.s.NoteOff(36)
	f.render(16)
	if f.pool.ActiveCount() != 0 {
		t.Errorf("NoteOff left %d voices active", f.pool.ActiveCount())
	}
}

func TestSampler_Velocity(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := f.load(t, audiotest.Constant(1, 512, 1))
	_ = f.s.AssignNote(40, h)
	f.s.Play()

	_ = f.s.NoteOn(40, 127)
	_ = f.s.NoteOn(40, 0) // velocity zero is a note-off
	f.render(8)
	if f.pool.ActiveCount() != 0 {
		t.Error("note-on with velocity 0 did not release the note")
	}
}

func TestSampler_OneShotIgnoresNoteOff(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithOneShot())
	h := f.load(t, audiotest.Constant(1, 512, 1))
	_ = f.s.AssignNote(36, h)
	f.s.Play()

	_ = f.s.NoteOn(36, 100)
	_ = f.s.NoteOff(36)
	f.render(16)
	if f.pool.ActiveCount() != 1 {
		t.Errorf("ActiveCount() = %d, want 1 (note-off ignored)", f.pool.ActiveCount())
	}

	_ = f.s.AllNotesOff()
	f.render(16)
	if f.pool.ActiveCount() != 0 {
		t.Error("AllNotesOff() did not release one-shot voices")
	}
}

func TestSampler_HandleMessage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := f.load(t, audiotest.Constant(1, 512, 0.5))
	_ = f.s.AssignNote(60, h)
	_ = f.s.AssignNote(62, h)
	f.s.Play()

	msgs := []midi.Message{
		midi.NoteOn(0, 60, 100),
		midi.NoteOn(9, 62, 100),
		midi.ControlChange(0, 7, 100),
	}
	for _, m := range msgs {
		if err := f.s.HandleMessage(m); err != nil {
			t.Fatalf("HandleMessage(%v) error = %v", m, err)
		}
	}
	f.render(8)
	if f.pool.ActiveCount() != 2 {
		t.Fatalf("ActiveCount() = %d, want 2", f.pool.ActiveCount())
	}

	_ = f.s.HandleMessage(midi.NoteOff(0, 60))
	f.render(8)
	if f.pool.ActiveCount() != 1 {
		t.Fatalf("ActiveCount() after note-off = %d, want 1", f.pool.ActiveCount())
	}

	_ = f.s.HandleMessage(midi.ControlChange(0, ccAllNotesOff, 0))
	f.render(8)
	if f.pool.ActiveCount() != 0 {
		t.Errorf("ActiveCount() after all-notes-off = %d, want 0", f.pool.ActiveCount())
	}
}

func TestSampler_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithQueueSize(2))
	h := f.load(t, audiotest.Constant(1, 16, 1))

	if _, err := f.s.Trigger(60); !errors.Is(err, ErrNoSample) {
		t.Errorf("Trigger(unmapped) error = %v, want ErrNoSample", err)
	}
	if _, err := f.s.Trigger(200); !errors.Is(err, bank.ErrInvalidNote) {
		t.Errorf("Trigger(200) error = %v, want ErrInvalidNote", err)
	}
	if err := f.s.NoteOn(-1, 1); !errors.Is(err, bank.ErrInvalidNote) {
		t.Errorf("NoteOn(-1) error = %v, want ErrInvalidNote", err)
	}
	if err := f.s.SetTrack(h + 10); !errors.Is(err, bank.ErrUnknownHandle) {
		t.Errorf("SetTrack(unknown) error = %v, want ErrUnknownHandle", err)
	}
	if err := f.s.Seek(-1); !errors.Is(err, transport.ErrInvalidPosition) {
		t.Errorf("Seek(-1) error = %v, want ErrInvalidPosition", err)
	}

	_ = f.s.NoteOn(1, 1)
	_ = f.s.NoteOn(2, 1)
	if err := f.s.NoteOn(3, 1); !errors.Is(err, ErrQueueFull) {
		t.Errorf("NoteOn on a full queue error = %v, want ErrQueueFull", err)
	}
	if f.s.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", f.s.Dropped())
	}

	f.render(8)
	if f.s.Unmapped() != 2 {
		t.Errorf("Unmapped() = %d, want 2", f.s.Unmapped())
	}

	if st := f.s.Render(nil, nil, 64, 0, audiotest.Planar(2, 8), nil); st != graph.StatusTooManyFrames {
		t.Errorf("Render(oversized) = %v, want %v", st, graph.StatusTooManyFrames)
	}
}

func TestSampler_Volume(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := f.load(t, audiotest.Constant(2, 64, 0.5))
	_ = f.s.SetTrack(h)
	if _, err := f.s.Params().Set("volume", 0.5); err != nil {
		t.Fatal(err)
	}
	f.s.Play()

	out, _, _ := f.render(8)
	if out[0][0] != 0.25 {
		t.Errorf("out[0][0] = %v, want 0.25", out[0][0])
	}
}

func TestSampler_RenderZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	f := newFixture(t)
	h := f.load(t, audiotest.Ramp(2, 1<<15))
	_ = f.s.SetTrack(h)
	_ = f.s.AssignNote(60, h)
	f.s.Play()

	out := audiotest.Planar(2, 256)
	var flags graph.ActionFlags
	ts := &graph.Timestamp{}
	i := 0

	allocs := testing.AllocsPerRun(10000, func() {
		if i%16 == 0 {
			_ = f.s.NoteOn(60, 90)
		}
		if i%64 == 0 {
			f.tr.Rewind()
		}
		f.s.Render(&flags, ts, 256, 0, out, nil)
		i++
	})
	if allocs > 0 {
		t.Errorf("Render allocated %v times per call, want 0", allocs)
	}
	if n := f.pool.ActiveCount(); n > f.pool.Size() {
		t.Errorf("ActiveCount() = %d exceeds pool size %d", n, f.pool.Size())
	}
}
