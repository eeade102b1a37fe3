// SPDX-License-Identifier: EPL-2.0

//go:build headless

package output

// Speaker is the device-less build of the beep speaker.
type Speaker struct {
	streamer *Streamer
	started  bool
	closed   bool
}

func NewSpeaker(s *Streamer, opts ...Option) (*Speaker, error) {
	cfg := newPlayerConfig(opts)
	cfg.log.Debug("headless build, speaker disabled")
	return &Speaker{streamer: s}, nil
}

func (sp *Speaker) Streamer() *Streamer { return sp.streamer }

func (sp *Speaker) Start() error {
	if sp.closed {
		return ErrPlayerClosed
	}
	sp.started = true
	return nil
}

func (sp *Speaker) Stop()           { sp.started = false }
func (sp *Speaker) IsStarted() bool { return sp.started }

func (sp *Speaker) Close() error {
	sp.closed = true
	sp.started = false
	return nil
}
