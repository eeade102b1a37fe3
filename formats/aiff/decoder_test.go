// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ik5/audgraph/formats/wav"
)

func TestDecoder_Invalid(t *testing.T) {
	t.Parallel()

	var riff bytes.Buffer
	if err := wav.WriteWAV16(&riff, 8000, 1, []int16{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("This is not AIFF data")},
		{"wav file", riff.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
			if src != nil {
				t.Error("Decode() returned a source for invalid input")
			}
		})
	}
}
