// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package output

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// ErrPlayerClosed is returned when starting a closed Player.
var ErrPlayerClosed = errors.New("player closed")

// Player plays a Stream on the default audio device. oto allows one
// context per process, so only one Player may be open at a time.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	stream *Stream
	cfg    playerConfig

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewPlayer opens the audio device at sampleRate with the stream's
// channel count. It blocks until the device is ready.
func NewPlayer(stream *Stream, sampleRate int, opts ...Option) (*Player, error) {
	cfg := newPlayerConfig(opts)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: stream.Channels(),
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	cfg.log.Debug("audio device ready",
		"sample_rate", sampleRate,
		"channels", stream.Channels(),
		"block", stream.BlockSize(),
	)

	return &Player{
		ctx:    ctx,
		player: ctx.NewPlayer(stream),
		stream: stream,
		cfg:    cfg,
	}, nil
}

func (p *Player) Stream() *Stream { return p.stream }

// Start begins pulling from the stream. Starting twice is a no-op.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	if !p.started {
		p.player.Play()
		p.started = true
	}
	return nil
}

// Stop pauses the device. The stream keeps its state.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		p.player.Pause()
		p.started = false
	}
}

func (p *Player) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Close stops playback and releases the device player.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.started = false

	if err := p.player.Close(); err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	if g := p.stream.Glitches(); g > 0 {
		p.cfg.log.Warn("render glitches during playback", "blocks", g, "last_status", p.stream.LastStatus())
	}
	return nil
}
