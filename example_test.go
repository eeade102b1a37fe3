// SPDX-License-Identifier: EPL-2.0

package audgraph_test

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/audgraph"
	"github.com/ik5/audgraph/config"
	"github.com/ik5/audgraph/formats/wav"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// Example_noteToBounce loads a sample from memory, maps it to a note and
// renders it offline.
func Example_noteToBounce() {
	cfg := config.Default()
	cfg.SampleRate = 8000

	eng, err := audgraph.New(cfg, audgraph.WithLogger(quiet))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	// 100 frames of half-scale mono
	samples := make([]int16, 100)
	for i := range samples {
		samples[i] = 16384
	}
	clip := new(bytes.Buffer)
	_ = wav.WriteWAV16(clip, 8000, 1, samples)

	h, err := eng.Bank().LoadReader("clip.wav", clip)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	_ = eng.Bank().Assign(60, h)

	eng.Sampler().Play()
	_ = eng.Sampler().NoteOn(60, 127)

	buf, err := eng.Bounce(200)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(buf.ChannelCount(), buf.FrameCount())
	fmt.Println(buf.Data[0][99], buf.Data[1][99], buf.Data[0][100])
	fmt.Printf("%.3fs\n", eng.Sampler().Position())
	// Output:
	// 2 200
	// 0.5 0.5 0
	// 0.025s
}

// Example_bounceToPCM16 writes one second of a stopped engine as WAV.
func Example_bounceToPCM16() {
	cfg := config.Default()
	cfg.SampleRate = 8000
	cfg.Channels = 1

	eng, err := audgraph.New(cfg, audgraph.WithLogger(quiet))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	out := new(bytes.Buffer)
	if err := eng.BounceToPCM16(out, cfg.SampleRate); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("%d bytes\n", out.Len())
	// Output:
	// 16044 bytes
}
