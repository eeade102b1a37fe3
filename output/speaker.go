// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package output

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep/speaker"
)

// Speaker plays a Streamer through beep's speaker. The speaker is
// process-wide and opens its own oto context, so a Speaker and a Player
// cannot be open together.
type Speaker struct {
	streamer *Streamer
	cfg      playerConfig

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewSpeaker initializes the speaker at the streamer's format. The device
// buffer comes from WithBufferSize.
func NewSpeaker(s *Streamer, opts ...Option) (*Speaker, error) {
	cfg := newPlayerConfig(opts)

	size := max(s.rate.N(cfg.buffer), s.BlockSize())
	if err := speaker.Init(s.rate, size); err != nil {
		return nil, fmt.Errorf("opening speaker: %w", err)
	}

	cfg.log.Debug("speaker ready",
		"sample_rate", int(s.rate),
		"buffer", size,
		"block", s.BlockSize(),
	)
	return &Speaker{streamer: s, cfg: cfg}, nil
}

func (sp *Speaker) Streamer() *Streamer { return sp.streamer }

// Start queues the streamer on the speaker. Starting twice is a no-op.
func (sp *Speaker) Start() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.closed {
		return ErrPlayerClosed
	}
	if !sp.started {
		speaker.Play(sp.streamer)
		sp.started = true
	}
	return nil
}

// Stop removes the streamer from the speaker. The streamer keeps its state.
func (sp *Speaker) Stop() {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.started {
		speaker.Clear()
		sp.started = false
	}
}

func (sp *Speaker) IsStarted() bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.started
}

// Close stops playback and shuts the speaker down.
func (sp *Speaker) Close() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.closed {
		return nil
	}
	sp.closed = true
	if sp.started {
		speaker.Clear()
		sp.started = false
	}
	speaker.Close()

	if g := sp.streamer.Glitches(); g > 0 {
		sp.cfg.log.Warn("render glitches during playback", "blocks", g, "last_status", sp.streamer.LastStatus())
	}
	return nil
}
