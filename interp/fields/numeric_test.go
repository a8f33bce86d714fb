package fields_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binarytmpl/bti/interp/fields"
	"github.com/binarytmpl/bti/interp/stream"
)

func TestNumericParseSignExtends(t *testing.T) {
	s := stream.New([]byte{0xFF})
	n := fields.NewNumeric(fields.KindInt8)
	require.NoError(t, n.Parse(s))
	require.EqualValues(t, -1, n.Value())
}

func TestNumericParseUnsignedStaysPositive(t *testing.T) {
	s := stream.New([]byte{0xFF})
	n := fields.NewNumeric(fields.KindUint8)
	require.NoError(t, n.Parse(s))
	require.EqualValues(t, 255, n.Value())
}

func TestBitfieldSignExtension(t *testing.T) {
	// 5-bit signed field holding 0b11111 == -1
	s := stream.New([]byte{0b1111_1000})
	n := fields.NewBitfield(fields.KindInt8, 5)
	require.NoError(t, n.Parse(s))
	require.EqualValues(t, -1, n.Value())
	require.EqualValues(t, 5, n.WidthBits())
}

func TestFrozenFieldRejectsSetValue(t *testing.T) {
	n := fields.NewNumeric(fields.KindInt32)
	require.NoError(t, n.SetValue(int64(5)))
	n.Freeze()
	err := n.SetValue(int64(6))
	require.Error(t, err)
	var fe *fields.FrozenError
	require.ErrorAs(t, err, &fe)
}

func TestSetValueStringToNumericIsTypeError(t *testing.T) {
	n := fields.NewNumeric(fields.KindInt32)
	err := n.SetValue("nope")
	require.Error(t, err)
	var tce *fields.TypeCoercionError
	require.ErrorAs(t, err, &tce)
}

func TestAddWraps8BitOverflow(t *testing.T) {
	n := fields.NewNumeric(fields.KindUint8)
	require.NoError(t, n.SetValue(int64(255)))
	n.Add(1)
	require.EqualValues(t, 0, n.Value())
}

func TestFloatParseRoundTrip(t *testing.T) {
	s := stream.New(nil)
	s.SetEndian(stream.LittleEndian)
	enc := s.EncodeUint(uint64(0x3F800000), 32) // 1.0f
	ps := stream.New(enc)
	n := fields.NewNumeric(fields.KindFloat32)
	n.SetEndian(stream.LittleEndian)
	require.NoError(t, n.Parse(ps))
	require.InDelta(t, 1.0, n.Value().(float64), 1e-9)
}

func TestCloneDetachesParentAndFrozen(t *testing.T) {
	n := fields.NewNumeric(fields.KindInt32)
	require.NoError(t, n.SetValue(int64(7)))
	n.Freeze()
	cp := n.Clone()
	require.False(t, cp.Frozen())
	require.Nil(t, cp.Parent())
	require.EqualValues(t, 7, cp.Value())
}
