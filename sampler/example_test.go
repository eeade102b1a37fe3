// SPDX-License-Identifier: EPL-2.0

package sampler_test

import (
	"fmt"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/bank"
	"github.com/ik5/audgraph/graph"
	"github.com/ik5/audgraph/sampler"
	"github.com/ik5/audgraph/transport"
	"github.com/ik5/audgraph/voice"
)

func ExampleSampler_NoteOn() {
	b := bank.New(48000, 2)
	s := sampler.New(b, voice.NewPool(16), transport.New(48000))

	hit := audio.NewBuffer(1, 480, 48000)
	for i := range hit.Data[0] {
		hit.Data[0][i] = 1
	}
	h, _ := b.Load(hit)
	_ = s.AssignNote(38, h)

	s.Play()
	_ = s.NoteOn(38, 127)

	out := [][]float32{make([]float32, 64), make([]float32, 64)}
	st := s.Render(nil, &graph.Timestamp{}, 64, 0, out, nil)

	fmt.Println(st, s.Pool().ActiveCount(), out[0][0], out[1][63])
	fmt.Printf("%.4f\n", s.Position())
	// Output:
	// ok 1 1 1
	// 0.0013
}
