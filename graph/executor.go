// SPDX-License-Identifier: EPL-2.0

// Package graph runs an ordered list of render units once per host
// callback.
//
// The unit list is copy-on-write. Add, Remove and Replace build a new list
// under a control-side mutex and publish it with one atomic store; an
// Execute already in flight finishes with the list it loaded. Execute
// itself takes no lock and allocates nothing.
package graph

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// PullFunc fills out with frames of upstream audio.
type PullFunc func(flags *ActionFlags, ts *Timestamp, frames, bus int, out [][]float32) Status

// RenderFunc renders frames into out. pull reads the unit's input, if any.
// It runs on the render thread and must not block or allocate.
type RenderFunc func(flags *ActionFlags, ts *Timestamp, frames, bus int, out [][]float32, pull PullFunc) Status

// Unit is one render step with its own output buffer.
type Unit struct {
	name   string
	render RenderFunc
	pull   PullFunc

	buf  [][]float32 // channels x maxFrames
	view [][]float32 // buf resliced to the current block
}

func (u *Unit) Name() string { return u.name }

// Output is the unit's buffer as written by the most recent Execute.
// Reading it outside the render thread races with the next callback.
func (u *Unit) Output() [][]float32 { return u.view }

// SetPull wires the unit's input. It must happen before the unit is
// published with Add or Replace.
func (u *Unit) SetPull(pull PullFunc) { u.pull = pull }

func (u *Unit) prepare(frames int) [][]float32 {
	for c := range u.view {
		u.view[c] = u.buf[c][:frames]
		clear(u.view[c])
	}
	return u.view
}

// Executor owns the unit list and the render-side bookkeeping.
type Executor struct {
	channels  int
	maxFrames int
	log       *slog.Logger

	mu    sync.Mutex
	units atomic.Pointer[[]*Unit]

	// Written only by the render thread.
	flags ActionFlags
	ts    Timestamp

	failures   atomic.Uint64
	lastUnit   atomic.Pointer[Unit]
	lastStatus atomic.Int32
}

type Option func(*Executor)

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an executor whose units render channels x up to maxFrames.
func New(channels, maxFrames int, opts ...Option) *Executor {
	e := &Executor{
		channels:  max(channels, 1),
		maxFrames: max(maxFrames, 1),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.units.Store(&[]*Unit{})

	return e
}

func (e *Executor) Channels() int  { return e.channels }
func (e *Executor) MaxFrames() int { return e.maxFrames }

// NewUnit allocates a unit sized for this executor without publishing it.
func (e *Executor) NewUnit(name string, render RenderFunc, pull PullFunc) *Unit {
	u := &Unit{
		name:   name,
		render: render,
		pull:   pull,
		buf:    make([][]float32, e.channels),
		view:   make([][]float32, e.channels),
	}
	for c := range u.buf {
		u.buf[c] = make([]float32, e.maxFrames)
		u.view[c] = u.buf[c][:0]
	}
	return u
}

// Add appends a new unit to the end of the list.
func (e *Executor) Add(name string, render RenderFunc, pull PullFunc) *Unit {
	u := e.NewUnit(name, render, pull)

	e.mu.Lock()
	next := append(slices.Clone(*e.units.Load()), u)
	e.units.Store(&next)
	e.mu.Unlock()

	e.log.Debug("render unit added", "unit", name, "units", len(next))

	return u
}

// Remove drops u from the list. It reports whether u was present.
func (e *Executor) Remove(u *Unit) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := *e.units.Load()
	i := slices.Index(cur, u)
	if i < 0 {
		return false
	}

	next := slices.Delete(slices.Clone(cur), i, i+1)
	e.units.Store(&next)
	e.log.Debug("render unit removed", "unit", u.name, "units", len(next))

	return true
}

// Replace publishes units as the whole list in one step.
func (e *Executor) Replace(units ...*Unit) {
	next := slices.Clone(units)
	if next == nil {
		next = []*Unit{}
	}

	e.mu.Lock()
	e.units.Store(&next)
	e.mu.Unlock()

	e.log.Debug("render units replaced", "units", len(next))
}

// Units returns a copy of the current list.
func (e *Executor) Units() []*Unit {
	return slices.Clone(*e.units.Load())
}

// Execute runs every unit once, in order, for a block of frames. The first
// non-OK status stops the block and is returned as is; later units do not
// run. Execute must not be called concurrently with itself.
func (e *Executor) Execute(frames int) Status {
	return e.execute(*e.units.Load(), frames)
}

// execute runs one loaded snapshot of the unit list.
func (e *Executor) execute(units []*Unit, frames int) Status {
	if frames > e.maxFrames {
		e.fail(nil, StatusTooManyFrames)
		return StatusTooManyFrames
	}
	if frames <= 0 {
		return StatusOK
	}

	for _, u := range units {
		out := u.prepare(frames)
		e.flags = 0
		if st := u.render(&e.flags, &e.ts, frames, 0, out, u.pull); st != StatusOK {
			e.fail(u, st)
			return st
		}
	}

	e.ts.SampleTime += int64(frames)

	return StatusOK
}

func (e *Executor) fail(u *Unit, st Status) {
	e.failures.Add(1)
	e.lastUnit.Store(u)
	e.lastStatus.Store(int32(st))
}

// Render executes the graph and copies the last unit's output into out, so
// an Executor can itself serve as a RenderFunc. Output channel c takes
// unit channel c mod the executor channel count. With no units, out is
// silenced.
func (e *Executor) Render(flags *ActionFlags, _ *Timestamp, frames, _ int, out [][]float32, _ PullFunc) Status {
	// One snapshot for both running and copying: a unit added mid-block
	// has not rendered yet.
	units := *e.units.Load()
	if st := e.execute(units, frames); st != StatusOK {
		return st
	}

	if len(units) == 0 {
		for _, ch := range out {
			clear(ch[:min(frames, len(ch))])
		}
		if flags != nil {
			*flags |= OutputIsSilence
		}
		return StatusOK
	}

	last := units[len(units)-1]
	for c, ch := range out {
		copy(ch[:min(frames, len(ch))], last.view[c%e.channels])
	}

	return StatusOK
}

// Failures counts non-OK blocks since creation.
func (e *Executor) Failures() uint64 { return e.failures.Load() }

// LastError describes the most recent failed block, or returns nil when
// every block succeeded.
func (e *Executor) LastError() error {
	if e.failures.Load() == 0 {
		return nil
	}

	name := "executor"
	if u := e.lastUnit.Load(); u != nil {
		name = u.name
	}
	return &RenderError{Unit: name, Status: Status(e.lastStatus.Load())}
}

// PullFrom returns a PullFunc that copies u's latest output. u must run
// earlier in the list than the unit pulling from it.
func PullFrom(u *Unit) PullFunc {
	return func(_ *ActionFlags, _ *Timestamp, frames, _ int, out [][]float32) Status {
		if frames > len(u.view[0]) {
			return StatusNoConnection
		}
		for c, ch := range out {
			copy(ch[:frames], u.view[c%len(u.view)])
		}
		return StatusOK
	}
}
