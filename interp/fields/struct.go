package fields

import "github.com/binarytmpl/bti/interp/stream"

// Struct holds ordered named children (§3). Width is the bit-aware sum of
// children widths. Struct itself never reads the stream directly — its
// members are parsed and appended one at a time by the interpreter while
// walking the struct body's declarations (see interp's structType.New),
// mirroring pfp's StructUnionDef/_handle_struct_decls split between
// "instantiate the aggregate" and "evaluate its member declarations".
type Struct struct {
	base
	order []string
	byName map[string]Field
}

func NewStruct() *Struct {
	return &Struct{byName: map[string]Field{}}
}

func (s *Struct) Clone() Field {
	cp := &Struct{base: s.base, order: append([]string(nil), s.order...), byName: map[string]Field{}}
	cp.parent = nil
	cp.frozen = false
	for _, n := range s.order {
		c := s.byName[n].Clone()
		c.setParent(cp)
		cp.byName[n] = c
	}
	return cp
}

// Parse is a no-op: Struct's bytes are consumed incrementally as the
// interpreter evaluates each member declaration and records it through
// AddChild, not in one shot.
func (s *Struct) Parse(*stream.Stream) error { return nil }

func (s *Struct) AddChild(name string, f Field) Field {
	f.setName(name)
	f.setParent(s)
	if _, exists := s.byName[name]; !exists {
		s.order = append(s.order, name)
	}
	s.byName[name] = f
	s.width += f.WidthBits()
	return f
}

func (s *Struct) Children() []Field {
	out := make([]Field, len(s.order))
	for i, n := range s.order {
		out[i] = s.byName[n]
	}
	return out
}

func (s *Struct) Child(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

func (s *Struct) Value() interface{} {
	out := make(map[string]interface{}, len(s.order))
	for _, n := range s.order {
		out[n] = s.byName[n].Value()
	}
	return out
}

func (s *Struct) SetValue(interface{}) error {
	return &TypeCoercionError{From: "value", To: "struct"}
}
