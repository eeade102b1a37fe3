// SPDX-License-Identifier: EPL-2.0

package sampler

import "errors"

var (
	ErrNoSample  = errors.New("no sample assigned to note")
	ErrNoVoice   = errors.New("no voice available")
	ErrQueueFull = errors.New("note event queue is full")
)
