// SPDX-License-Identifier: EPL-2.0

package output

import (
	"log/slog"
	"time"
)

type playerConfig struct {
	buffer time.Duration
	log    *slog.Logger
}

// Option configures a Player.
type Option func(*playerConfig)

func WithLogger(l *slog.Logger) Option {
	return func(c *playerConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithBufferSize sets the device buffer length. Zero lets the driver pick.
func WithBufferSize(d time.Duration) Option {
	return func(c *playerConfig) {
		if d >= 0 {
			c.buffer = d
		}
	}
}

func newPlayerConfig(opts []Option) playerConfig {
	c := playerConfig{log: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}
