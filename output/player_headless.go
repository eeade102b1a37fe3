// SPDX-License-Identifier: EPL-2.0

//go:build headless

package output

import "errors"

var ErrPlayerClosed = errors.New("player closed")

// Player is the device-less build: it accepts the same calls and never
// reads the stream.
type Player struct {
	stream  *Stream
	started bool
	closed  bool
}

func NewPlayer(stream *Stream, _ int, opts ...Option) (*Player, error) {
	cfg := newPlayerConfig(opts)
	cfg.log.Debug("headless build, audio device disabled")
	return &Player{stream: stream}, nil
}

func (p *Player) Stream() *Stream { return p.stream }

func (p *Player) Start() error {
	if p.closed {
		return ErrPlayerClosed
	}
	p.started = true
	return nil
}

func (p *Player) Stop()           { p.started = false }
func (p *Player) IsStarted() bool { return p.started }

func (p *Player) Close() error {
	p.closed = true
	p.started = false
	return nil
}
