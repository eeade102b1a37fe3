// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds generators shared by the package tests.
//
// It must not import the audio package: audio's own tests use it.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// ErrMockRead is returned by sources built with NewFailingSource.
var ErrMockRead = errors.New("mock read failure")

// MockSource generates audio data for testing.
// It implements the audio.Source interface (without importing it to avoid cycles).
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // Total samples to generate (per channel)
	generated    int // Samples generated so far (per channel)
	waveform     func(sample int, channel int) float32
	failAfter    int // frames before ReadSamples returns ErrMockRead, -1 = never
	closed       bool
}

// NewMockSource creates a new mock audio source.
// totalSamples is the total number of samples per channel to generate.
// waveform is a function that generates sample values given sample index and channel.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
		failAfter:    -1,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return 0.0
	})
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

// NewRampSource emits RampValue(sample, channel), so every sample can be
// traced back to its frame and channel.
func NewRampSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, RampValue)
}

// NewFailingSource produces failAfter frames of silence and then fails.
func NewFailingSource(sampleRate, channels, failAfter int) *MockSource {
	m := NewSilentSource(sampleRate, channels, math.MaxInt32)
	m.failAfter = failAfter
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset resets the generated sample counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.failAfter >= 0 && m.generated >= m.failAfter {
		return 0, ErrMockRead
	}
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	framesToWrite := min(len(dst)/m.channels, m.totalSamples-m.generated)
	if m.failAfter >= 0 {
		framesToWrite = min(framesToWrite, m.failAfter-m.generated)
	}

	for frame := range framesToWrite {
		sampleIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(sampleIndex, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalSamples {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}

// RampValue is the sample value the ramp helpers store at (frame, channel):
// small, exactly representable and distinct per position.
func RampValue(frame, channel int) float32 {
	return float32(frame+1)/1024 + float32(channel)/8
}

// Ramp builds planar channel data filled with RampValue.
func Ramp(channels, frames int) [][]float32 {
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
		for f := range data[c] {
			data[c][f] = RampValue(f, c)
		}
	}
	return data
}

// Constant builds planar channel data where every sample equals v.
func Constant(channels, frames int, v float32) [][]float32 {
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
		for f := range data[c] {
			data[c][f] = v
		}
	}
	return data
}

// Planar allocates silent planar channel data.
func Planar(channels, frames int) [][]float32 {
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
	}
	return data
}
