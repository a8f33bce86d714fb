package interp

import "github.com/binarytmpl/bti/ast"

// BreakKind enumerates the debugger's stepping modes (§7 supplemented
// features). The interactive debugger front end itself is out of scope;
// only the hook points it would attach to are kept, as a no-op by
// default.
type BreakKind int

const (
	BreakNone BreakKind = iota
	BreakOver
	BreakInto
)

// Debugger is notified at "breakable" nodes (isBreakable). Host programs
// implementing an interactive stepper supply their own via
// Interpreter.SetDebugger; the default never breaks.
type Debugger interface {
	OnBreak(pos ast.Coord, kind BreakKind)
}

type noopDebugger struct{}

func (noopDebugger) OnBreak(ast.Coord, BreakKind) {}

var defaultDebugger Debugger = noopDebugger{}

// isBreakable reports whether n is a node kind a stepper is offered a
// pause at: the file root, declarations, typedefs, array declarators,
// binary/unary operators, assignments, calls, return/break/continue, and
// switch/case. If, For, While and DeclList are not breakable.
func isBreakable(n ast.Node) bool {
	switch n.(type) {
	case *ast.FileAST, *ast.Decl, *ast.Typedef, *ast.BinaryOp, *ast.Assignment,
		*ast.UnaryOp, *ast.FuncCall, *ast.Return, *ast.ArrayDecl,
		*ast.Continue, *ast.Break, *ast.Switch, *ast.Case:
		return true
	}
	return false
}
