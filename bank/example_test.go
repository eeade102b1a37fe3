// SPDX-License-Identifier: EPL-2.0

package bank_test

import (
	"fmt"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/bank"
)

func ExampleBank_Assign() {
	b := bank.New(44100, 2)

	kick := audio.NewBuffer(1, 4410, 44100)
	h, err := b.Load(kick)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if err := b.Assign(36, h); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(b.Lookup(36).Duration(), b.Lookup(37) == nil)

	fmt.Println(b.Assign(128, h))
	// Output:
	// 100ms true
	// note must be in 0..127: 128
}
