// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/ik5/audgraph/internal/audiotest"
)

type mockDecoder struct {
	name string
}

func (d *mockDecoder) Decode(r io.Reader) (Source, error) {
	return audiotest.NewSilentSource(44100, 2, 100), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}

	registry.Register("wav", decoder)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered decoder")
	}
	if got != decoder {
		t.Error("Registry.Get() returned different decoder instance")
	}
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}
	registry.Register("WAV", decoder)

	if got, ok := registry.Get("wav"); !ok || got != decoder {
		t.Errorf("Registry.Get(\"wav\") = %v, %v; want registered decoder", got, ok)
	}
}

func TestRegistry_Overwrite(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	first := &mockDecoder{name: "first"}
	second := &mockDecoder{name: "second"}

	registry.Register("wav", first)
	registry.Register("wav", second)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed after overwrite")
	}
	if got != second {
		t.Error("Registry.Get() did not return the overwritten decoder")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	wavDecoder := &mockDecoder{name: "wav"}
	oggDecoder := &mockDecoder{name: "ogg"}
	registry.Register("wav", wavDecoder)
	registry.Register("ogg", oggDecoder)

	tests := []struct {
		path    string
		want    Decoder
		wantKey string
		wantErr error
	}{
		{"kick.wav", wavDecoder, "wav", nil},
		{"/samples/Pad.OGG", oggDecoder, "ogg", nil},
		{"loop.flac", nil, "flac", ErrUnknownFormat},
		{"README", nil, "", ErrNoExtension},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, key, err := registry.Lookup(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Lookup(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
			if key != tt.wantKey {
				t.Errorf("Lookup(%q) key = %q, want %q", tt.path, key, tt.wantKey)
			}
			if got != tt.want {
				t.Errorf("Lookup(%q) returned wrong decoder", tt.path)
			}
		})
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	for _, f := range []string{"ogg", "wav", "mp3"} {
		registry.Register(f, &mockDecoder{name: f})
	}

	want := []string{"mp3", "ogg", "wav"}
	if got := registry.Formats(); !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "test"}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.Register("format", decoder)
		}()
		go func() {
			defer wg.Done()
			_, _ = registry.Get("format")
		}()
	}
	wg.Wait()

	got, ok := registry.Get("format")
	if !ok || got != decoder {
		t.Error("Registry returned wrong decoder after concurrent operations")
	}
}

func BenchmarkRegistry_Get(b *testing.B) {
	registry := NewRegistry()
	registry.Register("wav", &mockDecoder{})

	b.ReportAllocs()

	for b.Loop() {
		_, _ = registry.Get("wav")
	}
}
