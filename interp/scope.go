package interp

import (
	"github.com/tiendc/go-deepcopy"

	"github.com/binarytmpl/bti/interp/fields"
)

// Scope is one lexical frame: three disjoint name tables — types, vars,
// and locals (§4.C) — plus a host-level table of user-defined functions,
// which aren't Fields and so don't fit any of the three.
//
// Frames are linked innermost-to-outermost via parent; Push/Pop walk that
// chain rather than maintaining a separate stack slice, since a Scope IS
// a frame (not a frame-stack container).
type Scope struct {
	parent *Scope
	types  map[string]interface{} // TypeConstructor or []string (typedef name chain)
	vars   map[string]fields.Field
	locals map[string]fields.Field
	funcs  map[string]*Function
}

// NewScope returns a fresh, empty frame chained to parent (nil for the
// outermost/global frame).
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent: parent,
		types:  map[string]interface{}{},
		vars:   map[string]fields.Field{},
		locals: map[string]fields.Field{},
		funcs:  map[string]*Function{},
	}
}

// Push returns a new child frame of s.
func (s *Scope) Push() *Scope { return NewScope(s) }

// Pop returns s's parent frame (nil at the outermost frame).
func (s *Scope) Pop() *Scope { return s.parent }

func (s *Scope) AddType(name string, t interface{})  { s.types[name] = t }
func (s *Scope) AddVar(name string, f fields.Field)   { s.vars[name] = f }
func (s *Scope) AddLocal(name string, f fields.Field) { s.locals[name] = f }
func (s *Scope) AddFunc(name string, fn *Function)    { s.funcs[name] = fn }

// GetID resolves an identifier per §4.C: locals before vars, within a
// frame, searched innermost frame to outermost.
func (s *Scope) GetID(name string) (fields.Field, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if f, ok := sc.locals[name]; ok {
			return f, true
		}
		if f, ok := sc.vars[name]; ok {
			return f, true
		}
	}
	return nil, false
}

// GetType looks up a single name's type binding, innermost frame to
// outermost. resolveIdentifierType performs the transitive typedef-chain
// walk on top of this.
func (s *Scope) GetType(name string) (interface{}, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if t, ok := sc.types[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// GetFunc resolves a user-defined function by name, innermost to outermost.
func (s *Scope) GetFunc(name string) (*Function, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if fn, ok := sc.funcs[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Clone produces a detached copy of the frame chain for reentrant "no
// debug" evaluation (§6 eval): mutations against the clone never reach the
// live scope. Field values are copied via their own Clone (they carry
// unexported state deepcopy can't reach); the type table — plain data, no
// Fields — is snapshotted with go-deepcopy so a typedef-chain rewrite in
// the clone can't alias the live map.
func (s *Scope) Clone() *Scope {
	if s == nil {
		return nil
	}
	cp := &Scope{
		parent: s.parent.Clone(),
		locals: make(map[string]fields.Field, len(s.locals)),
		vars:   make(map[string]fields.Field, len(s.vars)),
		funcs:  s.funcs,
	}
	var typesCopy map[string]interface{}
	if err := deepcopy.Copy(&typesCopy, &s.types); err != nil || typesCopy == nil {
		typesCopy = s.types
	}
	cp.types = typesCopy
	for k, v := range s.locals {
		cp.locals[k] = v.Clone()
	}
	for k, v := range s.vars {
		cp.vars[k] = v.Clone()
	}
	return cp
}
