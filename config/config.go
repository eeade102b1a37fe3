// SPDX-License-Identifier: EPL-2.0

// Package config holds the application settings for an engine: device
// layout, pool sizes and the samples to load at start.
//
// Settings come from Default, optionally overlaid by a YAML file (Load)
// and then by AUDGRAPH_* environment variables (FromEnv).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audgraph/bank"
	"github.com/ik5/audgraph/voice"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the YAML document shape. Sample paths are resolved against the
// directory of the file they were read from.
type Config struct {
	SampleRate int     `yaml:"sample_rate"`
	Channels   int     `yaml:"channels"`
	BlockSize  int     `yaml:"block_size"`
	Voices     int     `yaml:"voices"`
	Volume     float32 `yaml:"volume"`
	EventQueue int     `yaml:"event_queue"`
	LogLevel   string  `yaml:"log_level"`

	// Track follows the transport.
	Track string `yaml:"track,omitempty"`
	// Notes maps MIDI note numbers to sample files.
	Notes map[int]string `yaml:"notes,omitempty"`
}

func Default() Config {
	return Config{
		SampleRate: 48000,
		Channels:   2,
		BlockSize:  512,
		Voices:     64,
		Volume:     1,
		EventQueue: 256,
		LogLevel:   "info",
	}
}

// Load reads path over Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))

	return cfg, nil
}

// Decode parses a YAML document over Default. Unknown keys are an error.
// An empty document yields Default.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

func (c *Config) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	c.Track = abs(c.Track)
	for note, p := range c.Notes {
		c.Notes[note] = abs(p)
	}
}

// Validate reports every out of range setting at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.SampleRate < 8000 || c.SampleRate > 384000 {
		bad("sample_rate %d outside 8000..384000", c.SampleRate)
	}
	if c.Channels < 1 || c.Channels > 8 {
		bad("channels %d outside 1..8", c.Channels)
	}
	if c.BlockSize < 16 || c.BlockSize > 8192 {
		bad("block_size %d outside 16..8192", c.BlockSize)
	}
	if c.Voices < 1 || c.Voices > voice.MaxSize {
		bad("voices %d outside 1..%d", c.Voices, voice.MaxSize)
	}
	if c.Volume < 0 || c.Volume > 2 {
		bad("volume %v outside 0..2", c.Volume)
	}
	if c.EventQueue < 1 {
		bad("event_queue %d must be positive", c.EventQueue)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	for note := range c.Notes {
		if note < 0 || note >= bank.Notes {
			bad("note %d outside 0..%d", note, bank.Notes-1)
		}
	}

	return errors.Join(errs...)
}

// Level parses LogLevel. An empty level is info.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return lvl, nil
}
