// SPDX-License-Identifier: EPL-2.0

// Command audgraph plays or bounces a sample set described by a YAML
// config.
//
// Usage:
//
//	audgraph [flags]
//
// With -o the notes given by -n are rendered offline into a WAV file
// ("-" writes 16-bit PCM to standard output). Without -o they are played
// on the default audio device through oto, or through beep's speaker with
// -backend beep.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/ik5/audgraph"
	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/config"
	"github.com/ik5/audgraph/formats/wav"
	"github.com/ik5/audgraph/output"
	"github.com/ik5/audgraph/utils"
)

const defaultVelocity = 100

var (
	configPath = flag.String("c", "", "YAML config file. Defaults are used when empty.")
	outPath    = flag.String("o", "", "Bounce to this WAV file instead of playing. Use - for standard output.")
	duration   = flag.Float64("d", 4, "Length to play or bounce, in seconds.")
	notesFlag  = flag.String("n", "", "Comma separated MIDI notes to trigger, e.g. 36,38,42.")
	interval   = flag.Float64("i", 0.5, "Seconds between triggered notes.")
	bitDepth   = flag.Int("b", 16, "Bit depth of bounced files: 16, 24 or 32.")
	oneShot    = flag.Bool("1", false, "Ignore note-off; every sample plays to its end.")
	backend    = flag.String("backend", "oto", "Playback backend: oto or beep.")
	verbose    = flag.Bool("v", false, "Debug logging.")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, "audgraph plays sample sets through a render graph.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "audgraph: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	cfg, err := config.FromEnv(cfg)
	if err != nil {
		return err
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	notes, err := parseNotes(*notesFlag)
	if err != nil {
		return err
	}
	if *duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", *duration)
	}
	if *interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", *interval)
	}
	if *outPath == "" && !slices.Contains(backends, *backend) {
		return fmt.Errorf("%w: %q", errUnknownBackend, *backend)
	}

	opts := []audgraph.Option{audgraph.WithLogger(log)}
	if *oneShot {
		opts = append(opts, audgraph.WithOneShot())
	}
	eng, err := audgraph.New(cfg, opts...)
	if err != nil {
		return err
	}

	if *outPath != "" {
		return bounce(eng, notes, log)
	}
	return play(eng, notes, log)
}

func parseNotes(s string) ([]uint8, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var notes []uint8
	for _, field := range strings.Split(s, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(field), 10, 7)
		if err != nil {
			return nil, fmt.Errorf("invalid note %q: must be 0..127", field)
		}
		notes = append(notes, uint8(n))
	}
	return notes, nil
}

// trigger sends note as a MIDI note-on, the same path a controller uses.
func trigger(eng *audgraph.Engine, note uint8, log *slog.Logger) {
	if err := eng.Sampler().HandleMessage(midi.NoteOn(0, note, defaultVelocity)); err != nil {
		log.Warn("note dropped", "note", note, "err", err)
	}
}

// bounce renders the notes offline, one interval apart.
func bounce(eng *audgraph.Engine, notes []uint8, log *slog.Logger) error {
	rate := eng.SampleRate()
	total := int(utils.SecondsToFrames(*duration, rate))
	step := max(int(utils.SecondsToFrames(*interval, rate)), 1)

	full := audio.NewBuffer(eng.Channels(), 0, rate)
	eng.Sampler().Play()

	for off, i := 0, 0; off < total; i++ {
		if i < len(notes) {
			trigger(eng, notes[i], log)
		}
		n := min(step, total-off)
		if i >= len(notes) {
			n = total - off
		}

		seg, err := eng.Bounce(n)
		if err != nil {
			return err
		}
		for c := range full.Data {
			full.Data[c] = append(full.Data[c], seg.Data[c]...)
		}
		off += n
	}

	log.Info("bounced", "duration", full.Duration(), "path", *outPath)

	if *outPath == "-" {
		pcm16 := utils.Float32ToInt16Slice(nil, full.Interleave(nil))
		return wav.WriteWAV16(os.Stdout, rate, full.ChannelCount(), pcm16)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	if err := wav.Encode(f, full, *bitDepth); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

var (
	backends          = []string{"oto", "beep"}
	errUnknownBackend = errors.New("unknown backend")
)

// device is the part of output.Player and output.Speaker play needs.
type device interface {
	Start() error
	Stop()
	Close() error
	Glitches() uint64
}

type otoDevice struct {
	*output.Player
	*output.Stream
}

type beepDevice struct {
	*output.Speaker
	*output.Streamer
}

// openDevice opens one backend. Both sit on oto, which allows a single
// context per process.
func openDevice(eng *audgraph.Engine, name string, log *slog.Logger) (device, error) {
	switch name {
	case "oto":
		stream := eng.NewStream()
		p, err := output.NewPlayer(stream, eng.SampleRate(), output.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return otoDevice{p, stream}, nil
	case "beep":
		streamer := eng.NewStreamer()
		sp, err := output.NewSpeaker(streamer, output.WithLogger(log), output.WithBufferSize(100*time.Millisecond))
		if err != nil {
			return nil, err
		}
		return beepDevice{sp, streamer}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, name)
	}
}

// play streams the engine to the audio device until the duration passes
// or the process is interrupted.
func play(eng *audgraph.Engine, notes []uint8, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	player, err := openDevice(eng, *backend, log)
	if err != nil {
		return err
	}
	defer player.Close()

	eng.Sampler().Play()
	if err := player.Start(); err != nil {
		return err
	}

	deadline := time.After(time.Duration(*duration * float64(time.Second)))
	tick := time.NewTicker(time.Duration(*interval * float64(time.Second)))
	defer tick.Stop()

	for i := 0; ; {
		if i < len(notes) {
			trigger(eng, notes[i], log)
			i++
		}

		select {
		case <-ctx.Done():
			log.Info("interrupted")
			return nil
		case <-deadline:
			player.Stop()
			if g := player.Glitches(); g > 0 {
				return errors.New("render glitches during playback, see log")
			}
			return nil
		case <-tick.C:
		}
	}
}
