// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"github.com/viterin/vek/vek32"

	"github.com/ik5/audgraph/param"
)

// Gain returns a unit that pulls its input and scales it by the current
// value of p. Without an input it fails with StatusNoConnection.
func Gain(p *param.Param) RenderFunc {
	return func(flags *ActionFlags, ts *Timestamp, frames, bus int, out [][]float32, pull PullFunc) Status {
		if pull == nil {
			return StatusNoConnection
		}
		if st := pull(flags, ts, frames, bus, out); st != StatusOK {
			return st
		}

		g := p.Value()
		switch g {
		case 1:
		case 0:
			for _, ch := range out {
				clear(ch[:frames])
			}
			*flags |= OutputIsSilence
		default:
			for _, ch := range out {
				vek32.MulNumber_Inplace(ch[:frames], g)
			}
		}

		return StatusOK
	}
}
