// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Source is a stream of interleaved float32 PCM samples in [-1,1].
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.RWMutex{},
	}
}

// Register binds d to format. Keys are case-insensitive; a later
// registration for the same key replaces the earlier one.
func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// Lookup picks the decoder registered for the extension of path.
// It returns the format key it tried along with the decoder.
func (r *Registry) Lookup(path string) (Decoder, string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return nil, "", ErrNoExtension
	}

	d, ok := r.Get(ext)
	if !ok {
		return nil, ext, ErrUnknownFormat
	}

	return d, ext, nil
}

// Formats returns the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}
