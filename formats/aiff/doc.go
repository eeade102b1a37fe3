// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// 16, 24 and 32-bit integer PCM is accepted. Input that cannot seek is
// read into memory first, since the decoder jumps between chunks.
package aiff
