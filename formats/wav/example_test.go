// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"fmt"

	"github.com/ik5/audgraph/formats/wav"
)

func ExampleWriteWAV16() {
	var b bytes.Buffer
	_ = wav.WriteWAV16(&b, 44100, 2, []int16{0, 0, 1000, -1000})

	src, err := wav.Decoder{}.Decode(bytes.NewReader(b.Bytes()))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(src.SampleRate(), src.Channels())
	// Output: 44100 2
}
