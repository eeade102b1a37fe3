// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files.
//
// Decoding goes through github.com/go-audio/wav and accepts integer PCM at
// 8, 16, 24 and 32 bits with any channel count and sample rate:
//
//	f, _ := os.Open("kick.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// Two writers exist. Encode uses the go-audio encoder and needs an
// io.WriteSeeker such as an *os.File. WriteWAV16 emits 16-bit PCM with a
// precomputed header and works on any io.Writer, including pipes.
package wav
