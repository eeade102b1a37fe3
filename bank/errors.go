// SPDX-License-Identifier: EPL-2.0

package bank

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode matches every *DecodeError through errors.Is.
	ErrDecode = errors.New("sample decode failed")

	ErrInvalidNote   = errors.New("note must be in 0..127")
	ErrUnknownHandle = errors.New("unknown sample handle")
)

// DecodeError reports a sample that could not be turned into a buffer.
// Nothing is registered when it is returned.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decoding sample: %v", e.Err)
	}
	return fmt.Sprintf("decoding sample %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
