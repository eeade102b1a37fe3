// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"errors"
	"fmt"
)

// Status is the result code of a render call. Zero means success; any
// other value is a failure and is passed up unchanged.
type Status int32

const (
	StatusOK Status = 0

	// StatusTooManyFrames is returned for blocks larger than the executor
	// was sized for.
	StatusTooManyFrames Status = -10874
	// StatusNoConnection is returned by units that need an input and have
	// none.
	StatusNoConnection Status = -10876
)

func (s Status) OK() bool { return s == StatusOK }

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTooManyFrames:
		return "too many frames"
	case StatusNoConnection:
		return "no connection"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// ErrRender matches every *RenderError through errors.Is.
var ErrRender = errors.New("render failed")

// RenderError describes a failed Execute for the control side. It is built
// on request and never on the render path.
type RenderError struct {
	Unit   string
	Status Status
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("unit %q: %v", e.Unit, e.Status)
}

func (e *RenderError) Is(target error) bool { return target == ErrRender }

// ActionFlags carries per-call hints between the host and units.
type ActionFlags uint32

const (
	PreRender       ActionFlags = 1 << 2
	PostRender      ActionFlags = 1 << 3
	OutputIsSilence ActionFlags = 1 << 4
)

// Timestamp locates a block on the engine timeline.
type Timestamp struct {
	// SampleTime counts frames rendered by the executor since creation.
	SampleTime int64
}
