// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"os"
	"strconv"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "AUDGRAPH_"

// FromEnv overlays AUDGRAPH_* variables on cfg using os.LookupEnv.
func FromEnv(cfg Config) (Config, error) {
	return FromLookup(cfg, os.LookupEnv)
}

// FromLookup overlays variables returned by lookup. A variable that is set
// but does not parse is an error; unset variables leave cfg alone.
func FromLookup(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	ints := []struct {
		key string
		dst *int
	}{
		{"SAMPLE_RATE", &cfg.SampleRate},
		{"CHANNELS", &cfg.Channels},
		{"BLOCK_SIZE", &cfg.BlockSize},
		{"VOICES", &cfg.Voices},
		{"EVENT_QUEUE", &cfg.EventQueue},
	}
	for _, v := range ints {
		s, ok := lookup(EnvPrefix + v.key)
		if !ok || s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s%s=%q", ErrInvalidConfig, EnvPrefix, v.key, s)
		}
		*v.dst = n
	}

	if s, ok := lookup(EnvPrefix + "VOLUME"); ok && s != "" {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return cfg, fmt.Errorf("%w: %sVOLUME=%q", ErrInvalidConfig, EnvPrefix, s)
		}
		cfg.Volume = float32(f)
	}
	if s, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok && s != "" {
		cfg.LogLevel = s
	}
	if s, ok := lookup(EnvPrefix + "TRACK"); ok && s != "" {
		cfg.Track = s
	}

	return cfg, nil
}
