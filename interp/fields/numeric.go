package fields

import (
	"math"

	"github.com/binarytmpl/bti/interp/stream"
)

// Kind enumerates the built-in numeric classes (§3: "signed/unsigned x
// 8/16/32/64 bits, float32, float64").
type Kind int

const (
	KindInt8 Kind = iota
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
)

func (k Kind) Bits() int {
	switch k {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindFloat64:
		return 64
	}
	return 0
}

func (k Kind) Signed() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

func (k Kind) Float() bool { return k == KindFloat32 || k == KindFloat64 }

func (k Kind) Unsigned() Kind {
	switch k {
	case KindInt8:
		return KindUint8
	case KindInt16:
		return KindUint16
	case KindInt32:
		return KindUint32
	case KindInt64:
		return KindUint64
	}
	return k
}

func (k Kind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindUint8:
		return "uint8"
	case KindInt16:
		return "int16"
	case KindUint16:
		return "uint16"
	case KindInt32:
		return "int32"
	case KindUint32:
		return "uint32"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	}
	return "?"
}

// Numeric is a signed/unsigned integer or IEEE-754 float field. A declared
// `char` is a Numeric of KindInt8 (`uchar` is KindUint8); char literals
// evaluate to KindUint8.
//
// A Numeric may additionally carry a bitWidth distinct from its Kind's
// natural width, making it a bitfield (§3 Bitfield in the glossary); the
// stream itself owns the bit cursor state.
type Numeric struct {
	base
	kind     Kind
	ival     int64   // used when !kind.Float(), sign-extended to 64 bits
	fval     float64 // used when kind.Float()
	bitWidth int     // 0 means "not a bitfield, use kind.Bits()"
}

func NewNumeric(kind Kind) *Numeric {
	return &Numeric{base: base{endian: stream.LittleEndian}, kind: kind}
}

// NewBitfield builds a Numeric whose declared stream width is bits,
// independent of kind's natural width.
func NewBitfield(kind Kind, bits int) *Numeric {
	return &Numeric{base: base{endian: stream.LittleEndian}, kind: kind, bitWidth: bits}
}

func (n *Numeric) Kind() Kind { return n.kind }

func (n *Numeric) declaredBits() int {
	if n.bitWidth > 0 {
		return n.bitWidth
	}
	return n.kind.Bits()
}

func (n *Numeric) Endian() stream.Endian     { return n.endian }
func (n *Numeric) SetEndian(e stream.Endian) { n.endian = e }

func (n *Numeric) Clone() Field {
	cp := *n
	cp.base.parent = nil
	cp.base.frozen = false
	return &cp
}

func (n *Numeric) Parse(s *stream.Stream) error {
	bits := n.declaredBits()
	n.endian = s.Endian()

	if n.kind.Float() {
		raw, err := s.ReadUint(bits)
		if err != nil {
			return err
		}
		if bits == 32 {
			n.fval = float64(math.Float32frombits(uint32(raw)))
		} else {
			n.fval = math.Float64frombits(raw)
		}
		n.width = int64(bits)
		return nil
	}

	if n.bitWidth > 0 {
		raw, err := s.ReadBits(n.bitWidth)
		if err != nil {
			return err
		}
		n.ival = signExtend(raw, n.bitWidth, n.kind.Signed())
		n.width = int64(n.bitWidth)
		return nil
	}

	raw, err := s.ReadUint(bits)
	if err != nil {
		return err
	}
	n.ival = signExtend(raw, bits, n.kind.Signed())
	n.width = int64(bits)
	return nil
}

func signExtend(raw uint64, bits int, signed bool) int64 {
	if !signed || bits >= 64 {
		return int64(raw)
	}
	signBit := uint64(1) << uint(bits-1)
	if raw&signBit != 0 {
		return int64(raw | (^uint64(0) << uint(bits)))
	}
	return int64(raw)
}

// Value returns int64 for signed integers, uint64 for unsigned integers,
// and float64 for floats.
func (n *Numeric) Value() interface{} {
	if n.kind.Float() {
		return n.fval
	}
	if n.kind.Signed() {
		return n.ival
	}
	return uint64(n.ival)
}

// SetValue coerces per §4.B: integer<->integer truncates/sign-extends,
// integer->float converts, float->integer truncates, string->numeric is
// an error.
func (n *Numeric) SetValue(v interface{}) error {
	if err := n.checkFrozen(); err != nil {
		return err
	}
	switch val := v.(type) {
	case int64:
		n.setFromInt(val)
	case uint64:
		n.setFromInt(int64(val))
	case int:
		n.setFromInt(int64(val))
	case float64:
		if n.kind.Float() {
			n.fval = val
		} else {
			n.setFromInt(int64(val))
		}
	case float32:
		return n.SetValue(float64(val))
	case string:
		return &TypeCoercionError{From: "string", To: n.kind.String()}
	default:
		return &TypeCoercionError{From: "unknown", To: n.kind.String()}
	}
	return nil
}

func (n *Numeric) setFromInt(v int64) {
	if n.kind.Float() {
		n.fval = float64(v)
		return
	}
	bits := n.declaredBits()
	if bits < 64 {
		mask := int64(1)<<uint(bits) - 1
		v &= mask
		if n.kind.Signed() {
			v = signExtend(uint64(v), bits, true)
		}
	}
	n.ival = v
}

// TypeCoercionError is returned when an assignment's value cannot be
// coerced into the destination field's type (§4.B: "string->numeric is an
// error").
type TypeCoercionError struct{ From, To string }

func (e *TypeCoercionError) Error() string {
	return "cannot coerce " + e.From + " to " + e.To
}

// Add mutates n in place by delta, used by p++/p--/compound assignment.
func (n *Numeric) Add(delta int64) {
	if n.kind.Float() {
		n.fval += float64(delta)
		return
	}
	n.setFromInt(n.ival + delta)
}
