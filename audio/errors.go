// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrEmptySource is returned by Collect when a source ends before
	// producing a single frame.
	ErrEmptySource = errors.New("source produced no frames")

	// ErrInvalidLayout indicates a zero or negative rate or channel count,
	// or channels of unequal length.
	ErrInvalidLayout = errors.New("invalid sample rate or channel count")

	ErrNoExtension   = errors.New("file has no extension")
	ErrUnknownFormat = errors.New("no decoder registered for format")
)
