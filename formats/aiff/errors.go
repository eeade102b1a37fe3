// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the input has no FORM/AIFF header.
	ErrNotAiffFile = errors.New("not an AIFF file")

	ErrUnsupportedBitDepth = errors.New("unsupported AIFF bit depth")

	// ErrUnsupportedAiffLayout covers files with no channels or no rate.
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
