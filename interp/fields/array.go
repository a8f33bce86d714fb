package fields

import "github.com/binarytmpl/bti/interp/stream"

// Array is a fixed-count N element field (§3). Count 0 is valid and
// consumes 0 bytes (§8 boundary behavior).
type Array struct {
	base
	elemCtor Constructor
	children []Field
}

func NewArray(elemCtor Constructor, count int) *Array {
	return &Array{elemCtor: elemCtor, children: make([]Field, 0, count)}
}

func (a *Array) Clone() Field {
	cp := *a
	cp.base.parent = nil
	cp.base.frozen = false
	cp.children = make([]Field, len(a.children))
	for i, c := range a.children {
		cp.children[i] = c.Clone()
		cp.children[i].setParent(&cp)
	}
	return &cp
}

// Parse instantiates len(cap) elements via elemCtor, where the target
// count was fixed at construction time via NewArray's count argument
// (captured as the capacity of children). elemCtor is responsible for any
// stream consumption its element type requires; Parse itself never reads
// from s directly (s is accepted to satisfy the Field interface).
func (a *Array) Parse(_ *stream.Stream) error {
	count := cap(a.children)
	a.children = a.children[:0]
	var total int64
	for i := 0; i < count; i++ {
		elem, err := a.elemCtor()
		if err != nil {
			return err
		}
		elem.setParent(a)
		a.children = append(a.children, elem)
		total += elem.WidthBits()
	}
	a.width = total
	return nil
}

// NewArrayFrom wraps already-materialized children with no further stream
// consumption, used for InitList values (§4.F InitList), which are built
// from evaluated expressions rather than read from the stream.
func NewArrayFrom(children []Field) *Array {
	a := &Array{children: children}
	for _, c := range children {
		c.setParent(a)
		a.width += c.WidthBits()
	}
	return a
}

func (a *Array) Value() interface{} {
	vals := make([]interface{}, len(a.children))
	for i, c := range a.children {
		vals[i] = c.Value()
	}
	return vals
}

func (a *Array) SetValue(v interface{}) error {
	if err := a.checkFrozen(); err != nil {
		return err
	}
	seq, ok := v.([]Field)
	if !ok {
		return &TypeCoercionError{From: "non-sequence", To: "array"}
	}
	for i, f := range seq {
		if i >= len(a.children) {
			break
		}
		if err := a.children[i].SetValue(f.Value()); err != nil {
			return err
		}
	}
	return nil
}

func (a *Array) Len() int { return len(a.children) }

func (a *Array) Index(i int) (Field, error) {
	if i < 0 || i >= len(a.children) {
		return nil, &IndexError{Index: i, Len: len(a.children)}
	}
	return a.children[i], nil
}

func (a *Array) ElementConstructor() Constructor { return a.elemCtor }
