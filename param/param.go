// SPDX-License-Identifier: EPL-2.0

// Package param holds named float parameters that the control side writes
// and the render callback reads without locks.
package param

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
)

var (
	ErrUnknownParam = errors.New("unknown parameter")
	ErrInvalidDef   = errors.New("invalid parameter definition")
	ErrDuplicateID  = errors.New("duplicate parameter identifier")
)

// Unit describes how a value should be displayed.
type Unit uint8

const (
	Generic Unit = iota
	LinearGain
	Decibels
	Percent
	Seconds
)

var unitNames = [...]string{"generic", "linear gain", "dB", "%", "s"}

func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return fmt.Sprintf("Unit(%d)", u)
}

// Def is the static description of a parameter.
type Def struct {
	Identifier string
	Name       string
	Address    uint64
	Default    float32
	Min, Max   float32
	Unit       Unit
}

// Validate checks that the range is ordered and contains the default.
func (d Def) Validate() error {
	switch {
	case d.Identifier == "":
		return fmt.Errorf("%w: empty identifier", ErrInvalidDef)
	case !(d.Min <= d.Max):
		return fmt.Errorf("%w: %s range [%g, %g]", ErrInvalidDef, d.Identifier, d.Min, d.Max)
	case d.Default < d.Min || d.Default > d.Max:
		return fmt.Errorf("%w: %s default %g outside [%g, %g]", ErrInvalidDef, d.Identifier, d.Default, d.Min, d.Max)
	}
	return nil
}

// Param is a live value for a Def. Set and Value may be called from any
// goroutine.
type Param struct {
	def  Def
	bits atomic.Uint32
}

// New returns a parameter holding def.Default.
func New(def Def) (*Param, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	p := &Param{def: def}
	p.bits.Store(math.Float32bits(def.Default))
	return p, nil
}

// MustNew is New for package-level definitions known to be valid.
func MustNew(def Def) *Param {
	p, err := New(def)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Param) Def() Def { return p.def }

// Value is safe on the render path.
func (p *Param) Value() float32 {
	return math.Float32frombits(p.bits.Load())
}

// Set stores v clamped to the parameter range and returns the stored
// value. NaN is ignored.
func (p *Param) Set(v float32) float32 {
	if v != v {
		return p.Value()
	}
	v = min(max(v, p.def.Min), p.def.Max)
	p.bits.Store(math.Float32bits(v))
	return v
}

// Reset restores the default value.
func (p *Param) Reset() {
	p.bits.Store(math.Float32bits(p.def.Default))
}

func (p *Param) String() string {
	return fmt.Sprintf("%s=%g %s", p.def.Identifier, p.Value(), p.def.Unit)
}
