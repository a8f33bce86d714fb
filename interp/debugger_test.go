package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binarytmpl/bti/ast"
)

func TestIsBreakableRecognizesStatementKinds(t *testing.T) {
	require.True(t, isBreakable(&ast.FileAST{}))
	require.True(t, isBreakable(&ast.Decl{}))
	require.True(t, isBreakable(&ast.Assignment{}))
	require.True(t, isBreakable(&ast.FuncCall{}))
	require.True(t, isBreakable(&ast.Return{}))
}

func TestIsBreakableRejectsNodesOutsideTheListedSet(t *testing.T) {
	require.False(t, isBreakable(&ast.Constant{}))
	require.False(t, isBreakable(&ast.ID{}))
	require.False(t, isBreakable(&ast.If{}))
	require.False(t, isBreakable(&ast.DeclList{}))
}

func TestNoopDebuggerIgnoresBreaks(t *testing.T) {
	var d Debugger = noopDebugger{}
	require.NotPanics(t, func() { d.OnBreak(ast.Coord{}, BreakInto) })
}

func TestDefaultDebuggerIsNoop(t *testing.T) {
	_, ok := defaultDebugger.(noopDebugger)
	require.True(t, ok)
}
