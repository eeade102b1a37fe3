// SPDX-License-Identifier: EPL-2.0

// Package audgraph assembles a sample player and its render graph into one
// Engine.
//
// An Engine owns a sample bank, a voice pool, a transport and a sampler.
// It wires them into a graph executor as two units: the sampler, then a
// master gain that pulls from it. The host audio callback calls
// Engine.Render; everything else is control side.
//
// # Quick Start
//
//	cfg := config.Default()
//	cfg.Notes = map[int]string{36: "kick.wav", 38: "snare.wav"}
//
//	eng, err := audgraph.New(cfg)
//	if err != nil {
//	    return err
//	}
//	eng.Sampler().Play()
//	_ = eng.Sampler().NoteOn(36, 110)
//
//	player, err := output.NewPlayer(eng.NewStream(), cfg.SampleRate)
//
// # Offline Rendering
//
// Bounce renders a number of frames without a device, which is how the
// command line tool writes WAV files:
//
//	buf, err := eng.Bounce(eng.SampleRate() * 4)
//
// Bounce and a live Player must not drive the same Engine at once: the
// executor supports one render call at a time.
//
// # Packages
//
//   - audio: buffers, sources, resampling, decoder registry
//   - formats: WAV, AIFF, MP3 and Ogg Vorbis decoders
//   - bank: loaded samples and the note map
//   - voice: lock-free voice pool and mixer
//   - transport: play state and position
//   - sampler: the render unit and its note queue
//   - graph: the unit executor
//   - param: atomic parameters
//   - output: device and beep adapters
//   - config: YAML and environment settings
package audgraph
