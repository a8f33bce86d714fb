package fields

import "github.com/binarytmpl/bti/interp/stream"

// Union holds ordered named children, every one of which reads from the
// same starting stream position (§3). Width is the max child width; after
// all members are evaluated the interpreter rewinds and re-advances the
// stream by that width (see interp's structType.New) — Union itself just
// tracks the max width as children are added.
type Union struct {
	base
	order  []string
	byName map[string]Field
}

func NewUnion() *Union {
	return &Union{byName: map[string]Field{}}
}

func (u *Union) Clone() Field {
	cp := &Union{base: u.base, order: append([]string(nil), u.order...), byName: map[string]Field{}}
	cp.parent = nil
	cp.frozen = false
	for _, n := range u.order {
		c := u.byName[n].Clone()
		c.setParent(cp)
		cp.byName[n] = c
	}
	return cp
}

func (u *Union) Parse(*stream.Stream) error { return nil }

func (u *Union) AddChild(name string, f Field) Field {
	f.setName(name)
	f.setParent(u)
	if _, exists := u.byName[name]; !exists {
		u.order = append(u.order, name)
	}
	u.byName[name] = f
	if f.WidthBits() > u.width {
		u.width = f.WidthBits()
	}
	return f
}

func (u *Union) Children() []Field {
	out := make([]Field, len(u.order))
	for i, n := range u.order {
		out[i] = u.byName[n]
	}
	return out
}

func (u *Union) Child(name string) (Field, bool) {
	f, ok := u.byName[name]
	return f, ok
}

func (u *Union) Value() interface{} {
	out := make(map[string]interface{}, len(u.order))
	for _, n := range u.order {
		out[n] = u.byName[n].Value()
	}
	return out
}

func (u *Union) SetValue(interface{}) error {
	return &TypeCoercionError{From: "value", To: "union"}
}
