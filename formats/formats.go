// SPDX-License-Identifier: EPL-2.0

// Package formats wires every bundled decoder into an audio.Registry.
package formats

import (
	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats/aiff"
	"github.com/ik5/audgraph/formats/mp3"
	"github.com/ik5/audgraph/formats/vorbis"
	"github.com/ik5/audgraph/formats/wav"
)

// Register binds the bundled decoders to their file extensions in reg.
func Register(reg *audio.Registry) {
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
}

// NewRegistry returns a registry with every bundled decoder registered.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	Register(reg)
	return reg
}
