package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binarytmpl/bti/interp/fields"
)

func TestScopeLocalsShadowVars(t *testing.T) {
	s := NewScope(nil)
	v := fields.NewNumeric(fields.KindInt32)
	require.NoError(t, v.SetValue(int64(1)))
	l := fields.NewNumeric(fields.KindInt32)
	require.NoError(t, l.SetValue(int64(2)))

	s.AddVar("x", v)
	s.AddLocal("x", l)

	got, ok := s.GetID("x")
	require.True(t, ok)
	require.EqualValues(t, 2, got.Value())
}

func TestScopeInnerFrameShadowsOuter(t *testing.T) {
	outer := NewScope(nil)
	f1 := fields.NewNumeric(fields.KindInt32)
	require.NoError(t, f1.SetValue(int64(1)))
	outer.AddVar("x", f1)

	inner := outer.Push()
	f2 := fields.NewNumeric(fields.KindInt32)
	require.NoError(t, f2.SetValue(int64(2)))
	inner.AddVar("x", f2)

	got, ok := inner.GetID("x")
	require.True(t, ok)
	require.EqualValues(t, 2, got.Value())

	got, ok = outer.GetID("x")
	require.True(t, ok)
	require.EqualValues(t, 1, got.Value())
}

func TestScopeGetIDMissingReturnsFalse(t *testing.T) {
	s := NewScope(nil)
	_, ok := s.GetID("nope")
	require.False(t, ok)
}

func TestScopeCloneIsDetached(t *testing.T) {
	s := NewScope(nil)
	f := fields.NewNumeric(fields.KindInt32)
	require.NoError(t, f.SetValue(int64(1)))
	s.AddVar("x", f)

	cp := s.Clone()
	cx, _ := cp.GetID("x")
	require.NoError(t, cx.SetValue(int64(99)))

	orig, _ := s.GetID("x")
	require.EqualValues(t, 1, orig.Value())
	require.EqualValues(t, 99, cx.Value())
}

func TestScopeFuncLookupWalksParentChain(t *testing.T) {
	outer := NewScope(nil)
	fn := &Function{Name: "f"}
	outer.AddFunc("f", fn)

	inner := outer.Push()
	got, ok := inner.GetFunc("f")
	require.True(t, ok)
	require.Same(t, fn, got)
}
