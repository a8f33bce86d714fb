package fields

import "github.com/binarytmpl/bti/interp/stream"

// Enum wraps a Numeric with a bidirectional value<->name map (§3).
// Injectivity of the int->name direction is the caller's (interp's)
// responsibility to establish when building EnumVals, per §3's invariant.
type Enum struct {
	base
	under    *Numeric
	EnumVals map[int64]string
	NameVals map[string]int64
}

func NewEnum(under *Numeric, vals map[int64]string, names map[string]int64) *Enum {
	return &Enum{under: under, EnumVals: vals, NameVals: names}
}

func (e *Enum) Clone() Field {
	cp := *e
	cp.base.parent = nil
	cp.base.frozen = false
	cp.under = e.under.Clone().(*Numeric)
	return &cp
}

func (e *Enum) Parse(s *stream.Stream) error {
	return e.under.Parse(s)
}

// WidthBits defers to the underlying Numeric rather than base.width, since
// an Enum's width is only ever known through that Numeric — whether it was
// set by Enum.Parse above or, when the interpreter builds an Enum field
// itself (resolving an enum-typed Decl), by the Numeric's own New/Parse
// that ran before fields.NewEnum ever wrapped it.
func (e *Enum) WidthBits() int64 { return e.under.WidthBits() }

func (e *Enum) Value() interface{} { return e.under.Value() }

func (e *Enum) SetValue(v interface{}) error {
	if err := e.checkFrozen(); err != nil {
		return err
	}
	return e.under.SetValue(v)
}

// SymbolicName returns the enumerator name bound to the field's current
// value, or "" if the value has no matching enumerator.
func (e *Enum) SymbolicName() string {
	if i, ok := Int(e.under); ok {
		return e.EnumVals[i]
	}
	return ""
}

func (e *Enum) Underlying() *Numeric { return e.under }
