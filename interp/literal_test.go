package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binarytmpl/bti/interp/fields"
)

func TestParseIntLiteralDecimal(t *testing.T) {
	v, neg, err := parseIntLiteral("42")
	require.NoError(t, err)
	require.False(t, neg)
	require.EqualValues(t, 42, v)
}

func TestParseIntLiteralHexWithSuffix(t *testing.T) {
	v, neg, err := parseIntLiteral("0xFFu")
	require.NoError(t, err)
	require.False(t, neg)
	require.EqualValues(t, 0xFF, v)
}

func TestParseIntLiteralNegative(t *testing.T) {
	v, neg, err := parseIntLiteral("-7L")
	require.NoError(t, err)
	require.True(t, neg)
	require.EqualValues(t, 7, v)
}

func TestParseIntLiteralInvalidReturnsError(t *testing.T) {
	_, _, err := parseIntLiteral("not-a-number")
	require.Error(t, err)
}

func TestChooseConstIntClassFitsInt32(t *testing.T) {
	require.Equal(t, fields.KindInt32, chooseConstIntClass(100, false))
}

func TestChooseConstIntClassUnsigned32(t *testing.T) {
	require.Equal(t, fields.KindUint32, chooseConstIntClass(uint64(math32Max()), false))
}

func math32Max() uint64 { return 0xFFFFFFFF }

func TestChooseConstIntClassNegativeOverflowsTo64(t *testing.T) {
	require.Equal(t, fields.KindInt64, chooseConstIntClass(uint64(1)<<40, true))
}

func TestChooseConstIntClassHugeUnsigned(t *testing.T) {
	require.Equal(t, fields.KindUint64, chooseConstIntClass(^uint64(0), false))
}

func TestParseFloatLiteralDouble(t *testing.T) {
	v, kind, err := parseFloatLiteral("3.5")
	require.NoError(t, err)
	require.Equal(t, fields.KindFloat64, kind)
	require.InDelta(t, 3.5, v, 1e-9)
}

func TestParseFloatLiteralFloatSuffix(t *testing.T) {
	v, kind, err := parseFloatLiteral("2.5f")
	require.NoError(t, err)
	require.Equal(t, fields.KindFloat32, kind)
	require.InDelta(t, 2.5, v, 1e-9)
}

func TestCharLiteralValue(t *testing.T) {
	require.EqualValues(t, 'A', charLiteralValue("A"))
}

func TestCharLiteralValueEmptyIsZero(t *testing.T) {
	require.EqualValues(t, 0, charLiteralValue(""))
}
