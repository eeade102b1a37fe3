// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams through
// github.com/jfreymuth/oggvorbis. Samples arrive as float32 already, so
// no conversion happens on read.
package vorbis
