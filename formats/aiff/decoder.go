// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats/internal/pcm"
)

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := pcm.ReadSeeker(r)
	if err != nil {
		return nil, err
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	// AIFF samples are signed big-endian; go-audio returns them as ints.
	return pcm.NewSource(dec, format, bitDepth, false), nil
}
