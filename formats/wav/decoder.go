// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats/internal/pcm"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

type Decoder struct{}

// Decode parses the RIFF header of r and returns a Source positioned at the
// first sample. Readers that cannot seek are buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := pcm.ReadSeeker(r)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("locating wav data: %w", err)
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, ErrOnlyPCMSupported
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedWavLayout
	}

	return pcm.NewSource(dec, format, bitDepth, true), nil
}
