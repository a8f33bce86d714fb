package fields_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binarytmpl/bti/interp/fields"
	"github.com/binarytmpl/bti/interp/stream"
)

func TestStringParseStopsAtNul(t *testing.T) {
	s := stream.New([]byte("hi\x00trailer"))
	f := fields.NewString()
	require.NoError(t, f.Parse(s))
	require.Equal(t, "hi", f.Value())
	require.EqualValues(t, 3*8, f.WidthBits())
}

func TestWStringRoundTripsLittleEndian(t *testing.T) {
	w := fields.NewWString()
	require.NoError(t, w.SetValue("hi"))
	enc, err := w.Encode(stream.LittleEndian)
	require.NoError(t, err)

	s := stream.New(enc)
	s.SetEndian(stream.LittleEndian)
	got := fields.NewWString()
	require.NoError(t, got.Parse(s))
	require.Equal(t, "hi", got.Value())
}

func TestEnumSymbolicNameAndUnresolvedValue(t *testing.T) {
	under := fields.NewNumeric(fields.KindInt32)
	e := fields.NewEnum(under, map[int64]string{0: "RED", 1: "GREEN"}, map[string]int64{"RED": 0, "GREEN": 1})
	require.NoError(t, e.SetValue(int64(1)))
	require.Equal(t, "GREEN", e.SymbolicName())

	require.NoError(t, e.SetValue(int64(99)))
	require.Equal(t, "", e.SymbolicName())
}

func TestEnumWidthBitsReflectsUnderlyingParse(t *testing.T) {
	s := stream.New([]byte{0x01, 0x00, 0x00, 0x00})
	under := fields.NewNumeric(fields.KindInt32)
	e := fields.NewEnum(under, map[int64]string{1: "GREEN"}, map[string]int64{"GREEN": 1})
	require.NoError(t, e.Parse(s))
	require.EqualValues(t, 32, e.WidthBits())
}

func TestArrayParseFixedCount(t *testing.T) {
	s := stream.New([]byte{1, 2, 3})
	ctor := func() (fields.Field, error) {
		n := fields.NewNumeric(fields.KindUint8)
		if err := n.Parse(s); err != nil {
			return nil, err
		}
		return n, nil
	}
	arr := fields.NewArray(ctor, 3)
	require.NoError(t, arr.Parse(s))
	require.Equal(t, 3, arr.Len())
	require.Equal(t, []interface{}{uint64(1), uint64(2), uint64(3)}, arr.Value())
}

func TestArrayZeroCountConsumesNothing(t *testing.T) {
	s := stream.New([]byte{1, 2, 3})
	ctor := func() (fields.Field, error) {
		n := fields.NewNumeric(fields.KindUint8)
		return n, n.Parse(s)
	}
	arr := fields.NewArray(ctor, 0)
	require.NoError(t, arr.Parse(s))
	require.Equal(t, 0, arr.Len())
	require.EqualValues(t, 0, s.TellBytes())
}

func TestArrayIndexOutOfRange(t *testing.T) {
	arr := fields.NewArrayFrom(nil)
	_, err := arr.Index(0)
	require.Error(t, err)
	var ie *fields.IndexError
	require.ErrorAs(t, err, &ie)
}

func TestStructAddChildTracksOrder(t *testing.T) {
	st := fields.NewStruct()
	a := fields.NewNumeric(fields.KindUint8)
	require.NoError(t, a.SetValue(int64(1)))
	a.Freeze()
	b := fields.NewNumeric(fields.KindUint16)
	require.NoError(t, b.SetValue(int64(2)))
	b.Freeze()

	st.AddChild("a", a)
	st.AddChild("b", b)

	got, ok := st.Child("a")
	require.True(t, ok)
	require.EqualValues(t, 1, got.Value())
	require.Len(t, st.Children(), 2)
	require.Equal(t, "a", st.Children()[0].Name())
	require.Equal(t, "b", st.Children()[1].Name())
}

func TestStructCloneDeepCopiesChildren(t *testing.T) {
	st := fields.NewStruct()
	a := fields.NewNumeric(fields.KindInt32)
	require.NoError(t, a.SetValue(int64(5)))
	st.AddChild("a", a)

	cp := st.Clone().(*fields.Struct)
	child, _ := cp.Child("a")
	require.NoError(t, child.SetValue(int64(9)))

	orig, _ := st.Child("a")
	require.EqualValues(t, 5, orig.Value())
	require.EqualValues(t, 9, child.Value())
}
