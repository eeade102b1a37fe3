// SPDX-License-Identifier: EPL-2.0

package audgraph

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/bank"
	"github.com/ik5/audgraph/config"
	"github.com/ik5/audgraph/formats/wav"
	"github.com/ik5/audgraph/graph"
	"github.com/ik5/audgraph/output"
	"github.com/ik5/audgraph/param"
	"github.com/ik5/audgraph/sampler"
	"github.com/ik5/audgraph/transport"
	"github.com/ik5/audgraph/utils"
	"github.com/ik5/audgraph/voice"
)

// MasterDef describes the engine output level applied after the sampler.
var MasterDef = param.Def{
	Identifier: "master",
	Name:       "Master",
	Address:    1,
	Default:    1,
	Min:        0,
	Max:        2,
	Unit:       param.LinearGain,
}

// ErrInvalidFrames is returned by Bounce for a negative frame count.
var ErrInvalidFrames = errors.New("frame count must not be negative")

type Engine struct {
	cfg config.Config
	log *slog.Logger

	bank      *bank.Bank
	pool      *voice.Pool
	transport *transport.Transport
	sampler   *sampler.Sampler
	master    *param.Param
	exec      *graph.Executor

	reg     *audio.Registry
	oneShot bool
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRegistry replaces the decoder registry used to load samples.
func WithRegistry(reg *audio.Registry) Option {
	return func(e *Engine) { e.reg = reg }
}

// WithOneShot makes triggered voices ignore note-off.
func WithOneShot() Option {
	return func(e *Engine) { e.oneShot = true }
}

// New validates cfg, builds the render graph and loads the configured
// track and note samples.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, log: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	e.bank = bank.New(cfg.SampleRate, cfg.Channels,
		bank.WithRegistry(e.reg),
		bank.WithLogger(e.log),
	)
	e.pool = voice.NewPool(cfg.Voices)
	e.transport = transport.New(cfg.SampleRate)

	sopts := []sampler.Option{
		sampler.WithLogger(e.log),
		sampler.WithQueueSize(cfg.EventQueue),
		sampler.WithMaxFrames(cfg.BlockSize),
	}
	if e.oneShot {
		sopts = append(sopts, sampler.WithOneShot())
	}
	e.sampler = sampler.New(e.bank, e.pool, e.transport, sopts...)

	e.master = param.MustNew(MasterDef)
	e.master.Set(cfg.Volume)

	e.exec = graph.New(cfg.Channels, cfg.BlockSize, graph.WithLogger(e.log))
	src := e.exec.NewUnit("sampler", e.sampler.Render, nil)
	master := e.exec.NewUnit("master", graph.Gain(e.master), graph.PullFrom(src))
	e.exec.Replace(src, master)

	if err := e.loadSamples(); err != nil {
		return nil, err
	}

	e.log.Info("engine ready",
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
		"block", cfg.BlockSize,
		"voices", cfg.Voices,
		"samples", e.bank.Len(),
	)

	return e, nil
}

func (e *Engine) loadSamples() error {
	if e.cfg.Track != "" {
		h, err := e.bank.LoadFile(e.cfg.Track)
		if err != nil {
			return fmt.Errorf("loading track: %w", err)
		}
		if err := e.sampler.SetTrack(h); err != nil {
			return err
		}
	}

	// A file mapped to several notes is decoded once.
	loaded := make(map[string]bank.Handle)
	for _, note := range slices.Sorted(maps.Keys(e.cfg.Notes)) {
		path := e.cfg.Notes[note]
		h, ok := loaded[path]
		if !ok {
			var err error
			if h, err = e.bank.LoadFile(path); err != nil {
				return fmt.Errorf("loading note %d: %w", note, err)
			}
			loaded[path] = h
		}
		if err := e.bank.Assign(note, h); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) Config() config.Config           { return e.cfg }
func (e *Engine) SampleRate() int                 { return e.cfg.SampleRate }
func (e *Engine) Channels() int                   { return e.cfg.Channels }
func (e *Engine) Bank() *bank.Bank                { return e.bank }
func (e *Engine) Pool() *voice.Pool               { return e.pool }
func (e *Engine) Transport() *transport.Transport { return e.transport }
func (e *Engine) Sampler() *sampler.Sampler       { return e.sampler }
func (e *Engine) Executor() *graph.Executor       { return e.exec }
func (e *Engine) Master() *param.Param            { return e.master }

// Render is the engine's graph.RenderFunc for host callbacks.
func (e *Engine) Render(flags *graph.ActionFlags, ts *graph.Timestamp, frames, bus int, out [][]float32, pull graph.PullFunc) graph.Status {
	return e.exec.Render(flags, ts, frames, bus, out, pull)
}

// NewStream returns a device stream rendering one configured block per
// callback.
func (e *Engine) NewStream() *output.Stream {
	return output.NewStream(e.Render, e.cfg.Channels, e.cfg.BlockSize)
}

// NewStreamer is NewStream for beep: speakers, mixers and encoders.
func (e *Engine) NewStreamer() *output.Streamer {
	return output.NewStreamer(e.Render, e.cfg.SampleRate, e.cfg.Channels, e.cfg.BlockSize)
}

// Bounce renders frames offline into a new buffer. The transport and the
// voices advance exactly as they would on a device.
func (e *Engine) Bounce(frames int) (*audio.Buffer, error) {
	if frames < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrames, frames)
	}

	buf := audio.NewBuffer(e.cfg.Channels, frames, e.cfg.SampleRate)
	block := make([][]float32, e.cfg.Channels)
	var flags graph.ActionFlags

	for off := 0; off < frames; off += e.cfg.BlockSize {
		n := min(e.cfg.BlockSize, frames-off)
		for c := range block {
			block[c] = buf.Data[c][off : off+n]
		}
		if st := e.Render(&flags, nil, n, 0, block, nil); st != graph.StatusOK {
			return nil, fmt.Errorf("bouncing at frame %d: %w", off, e.exec.LastError())
		}
	}

	return buf, nil
}

// BounceToPCM16 renders frames and writes them to w as a 16-bit WAV.
func (e *Engine) BounceToPCM16(w io.Writer, frames int) error {
	buf, err := e.Bounce(frames)
	if err != nil {
		return err
	}

	pcm16 := utils.Float32ToInt16Slice(nil, buf.Interleave(nil))
	if err := wav.WriteWAV16(w, buf.SampleRate, buf.ChannelCount(), pcm16); err != nil {
		return fmt.Errorf("writing bounce: %w", err)
	}
	return nil
}

// BounceToWAV renders frames and encodes them at bitDepth (16, 24 or 32).
func (e *Engine) BounceToWAV(w io.WriteSeeker, frames, bitDepth int) error {
	buf, err := e.Bounce(frames)
	if err != nil {
		return err
	}
	if err := wav.Encode(w, buf, bitDepth); err != nil {
		return fmt.Errorf("writing bounce: %w", err)
	}
	return nil
}
