// SPDX-License-Identifier: EPL-2.0

package param

import "fmt"

// Tree is an ordered set of parameters addressed by identifier. It is
// built once and then only read, so lookups need no lock.
type Tree struct {
	params []*Param
	byID   map[string]*Param
}

// NewTree builds a tree from params. Identifiers must be unique.
func NewTree(params ...*Param) (*Tree, error) {
	t := &Tree{
		params: make([]*Param, 0, len(params)),
		byID:   make(map[string]*Param, len(params)),
	}
	for _, p := range params {
		id := p.def.Identifier
		if _, dup := t.byID[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		t.params = append(t.params, p)
		t.byID[id] = p
	}
	return t, nil
}

// Params returns the parameters in registration order.
func (t *Tree) Params() []*Param {
	return append([]*Param(nil), t.params...)
}

func (t *Tree) Get(id string) (*Param, bool) {
	p, ok := t.byID[id]
	return p, ok
}

// Set clamps and stores v into the parameter named id.
func (t *Tree) Set(id string, v float32) (float32, error) {
	p, ok := t.byID[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownParam, id)
	}
	return p.Set(v), nil
}

// Reset restores every parameter to its default.
func (t *Tree) Reset() {
	for _, p := range t.params {
		p.Reset()
	}
}
