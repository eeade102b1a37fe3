// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats/internal/pcm"
)

// Encode writes buf as integer PCM. The RIFF sizes are patched on close,
// so w must be seekable; use WriteWAV16 for plain writers.
func Encode(w io.WriteSeeker, buf *audio.Buffer, bitDepth int) error {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if buf.ChannelCount() == 0 {
		return ErrInvalidChannels
	}

	enc := wav.NewEncoder(w, buf.SampleRate, bitDepth, buf.ChannelCount(), formatPCM)
	if err := enc.Write(pcm.IntBuffer(buf, bitDepth)); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}

	return nil
}
