// Package fields implements the interpreter's field tree: the runtime
// values produced by evaluating declarations against a byte stream.
//
// The "declare a named child, in order, building up a document" shape is
// grounded on github.com/kungfusheep/glint's DocumentBuilder
// (AppendString/AppendInt/... each append a schema entry plus body bytes,
// in the order called); here an aggregate Field's AddChild plays the same
// role, except the "body bytes" are read from an interp/stream.Stream
// rather than written to a buffer.
package fields

import (
	"fmt"

	"github.com/binarytmpl/bti/interp/stream"
)

// Field is a runtime value produced by evaluating a declaration.
type Field interface {
	Name() string
	setName(string)

	Parent() Field
	setParent(Field)

	// WidthBits is the number of bits this field consumed from the stream
	// at creation (0 for locals/consts).
	WidthBits() int64

	Frozen() bool
	Freeze()

	Value() interface{}
	SetValue(v interface{}) error

	// Parse reads this field's value from s, recording WidthBits.
	Parse(s *stream.Stream) error

	Metadata() *Metadata
	SetMetadata(*Metadata)

	// Clone returns a detached copy (used for by-value lazy function
	// parameters and for Scope.Clone snapshots).
	Clone() Field
}

// FrozenError is returned by SetValue when the field is const.
type FrozenError struct{ FieldName string }

func (e *FrozenError) Error() string {
	return fmt.Sprintf("field %q is frozen (const)", e.FieldName)
}

// IndexError is returned by Array.Index for an out-of-range subscript.
type IndexError struct {
	Index, Len int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("array index %d out of range (len %d)", e.Index, e.Len)
}

// UnresolvedIDError describes a lookup of an absent child name.
// Aggregate.Child itself reports absence through its ok result.
type UnresolvedIDError struct{ Name string }

func (e *UnresolvedIDError) Error() string { return fmt.Sprintf("no such field %q", e.Name) }

// base holds the state common to every Field implementation.
type base struct {
	name     string
	parent   Field
	frozen   bool
	width    int64
	meta     *Metadata
	endian   stream.Endian
	bitOrder stream.BitOrder
}

func (b *base) Name() string        { return b.name }
func (b *base) setName(n string)    { b.name = n }
func (b *base) Parent() Field       { return b.parent }
func (b *base) setParent(p Field)   { b.parent = p }
func (b *base) WidthBits() int64    { return b.width }
func (b *base) Frozen() bool        { return b.frozen }
func (b *base) Freeze()             { b.frozen = true }
func (b *base) Metadata() *Metadata { return b.meta }
func (b *base) SetMetadata(m *Metadata) { b.meta = m }

func (b *base) checkFrozen() error {
	if b.frozen {
		return &FrozenError{FieldName: b.name}
	}
	return nil
}

// Metadata carries the watch/update and pack/unpack hooks attached to a
// field at Decl time (§4.G). The actual callbacks are supplied by the
// interp package (which owns function dispatch); fields only stores and
// invokes them, to avoid an import cycle between fields and interp.
type Metadata struct {
	Watch *WatchMeta
	Pack  *PackMeta
}

// WatchMeta is `<watch=a,b,c, update=Fn>`.
type WatchMeta struct {
	WatchNames []string
	UpdateName string
	// OnChange recomputes and writes this field's value; invoked
	// synchronously whenever a watched field's value changes.
	OnChange func() error
}

// PackMeta is `<packer=Fn, packtype=T>` or `<pack=P, unpack=U, packtype=T>`.
type PackMeta struct {
	PackTypeName string
	PackerName   string
	PackName     string
	UnpackName   string
	// Unpacked is the synthetic sub-view produced by running the raw
	// field's bytes through the unpack function, of type PackTypeName.
	Unpacked Field
	// OnParse runs the configured unpack function over raw and returns
	// the decoded sub-view; OnWrite runs the configured pack function
	// over the sub-view and returns bytes to splice back into raw.
	OnParse func(raw []byte) (Field, error)
	OnWrite func(view Field) ([]byte, error)
}

// Constructor builds one fully-materialized Field, including whatever
// stream consumption its element type requires. Per the design notes, this
// plays the role the source's dynamic per-declaration classes play: a
// struct constructor closes over its AST body, an array constructor
// closes over its element constructor and count, etc. No runtime class
// metaprogramming is required in Go.
type Constructor func() (Field, error)

// Aggregate is implemented by fields that hold named children in
// declaration order: Struct, Union, Dom.
type Aggregate interface {
	Field
	AddChild(name string, f Field) Field
	Children() []Field
	Child(name string) (Field, bool)
}

// Indexable is implemented by Array.
type Indexable interface {
	Field
	Index(i int) (Field, error)
	Len() int
}

// PYVAL-style helper: Int extracts an integer value from any Field whose
// underlying value is numeric, or ok=false otherwise. Named after pfp's
// fields.PYVAL helper referenced throughout interp.py.
func Int(f Field) (int64, bool) {
	switch v := f.Value().(type) {
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

