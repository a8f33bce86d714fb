package interp

import (
	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp/fields"
)

// handleCompound evaluates a `{ ... }` block without pushing a scope
// frame, per the dialect's (preserved) quirk — see ast.Compound's doc
// comment.
func (ip *Interpreter) handleCompound(n *ast.Compound) (fields.Field, *ctrlSignal, error) {
	return ip.handleStmtList(n.Items)
}

func (ip *Interpreter) handleStmtList(stmts []ast.Node) (fields.Field, *ctrlSignal, error) {
	var last fields.Field
	for _, s := range stmts {
		f, ctrl, err := ip.evalNode(s)
		if err != nil {
			return nil, nil, err
		}
		if ctrl != nil {
			return nil, ctrl, nil
		}
		last = f
	}
	return last, nil, nil
}

func (ip *Interpreter) handleIf(n *ast.If) (fields.Field, *ctrlSignal, error) {
	cond, err := ip.evalExpr(n.Cond)
	if err != nil {
		return nil, nil, err
	}
	if truthy(cond) {
		return ip.evalNode(n.IfTrue)
	}
	if n.IfFalse != nil {
		return ip.evalNode(n.IfFalse)
	}
	return nil, nil, nil
}

func (ip *Interpreter) handleFor(n *ast.For) (fields.Field, *ctrlSignal, error) {
	if n.Init != nil {
		if _, ctrl, err := ip.evalNode(n.Init); err != nil {
			return nil, nil, err
		} else if ctrl != nil {
			return nil, ctrl, nil
		}
	}
	for {
		if n.Cond != nil {
			cond, err := ip.evalExpr(n.Cond)
			if err != nil {
				return nil, nil, err
			}
			if !truthy(cond) {
				break
			}
		}
		_, ctrl, err := ip.evalNode(n.Stmt)
		if err != nil {
			return nil, nil, err
		}
		if ctrl != nil {
			switch ctrl.kind {
			case ctrlBreak:
				return nil, nil, nil
			case ctrlReturn:
				return nil, ctrl, nil
			case ctrlContinue:
				// fall through to Next below
			}
		}
		if n.Next != nil {
			if _, ctrl, err := ip.evalNode(n.Next); err != nil {
				return nil, nil, err
			} else if ctrl != nil {
				return nil, ctrl, nil
			}
		}
	}
	return nil, nil, nil
}

func (ip *Interpreter) handleWhile(n *ast.While) (fields.Field, *ctrlSignal, error) {
	for {
		cond, err := ip.evalExpr(n.Cond)
		if err != nil {
			return nil, nil, err
		}
		if !truthy(cond) {
			break
		}
		_, ctrl, err := ip.evalNode(n.Stmt)
		if err != nil {
			return nil, nil, err
		}
		if ctrl != nil {
			switch ctrl.kind {
			case ctrlBreak:
				return nil, nil, nil
			case ctrlReturn:
				return nil, ctrl, nil
			case ctrlContinue:
				continue
			}
		}
	}
	return nil, nil, nil
}

// switchArm is a Case or Default entry read directly off a Switch body's
// Compound (§8 open question: statements interleaved between arms outside
// a Case/Default are unreachable, reproduced as-is).
type switchArm struct {
	isDefault bool
	expr      ast.Node
	stmts     []ast.Node
}

func (ip *Interpreter) handleSwitch(n *ast.Switch) (fields.Field, *ctrlSignal, error) {
	disc, err := ip.evalExpr(n.Cond)
	if err != nil {
		return nil, nil, err
	}
	discVal, _ := fields.Int(disc)

	compound, ok := n.Stmt.(*ast.Compound)
	if !ok {
		return nil, nil, newErr(KindUnsupportedASTNode, n.Pos(), "switch body is not a compound block")
	}

	var arms []switchArm
	for _, item := range compound.Items {
		switch c := item.(type) {
		case *ast.Case:
			arms = append(arms, switchArm{expr: c.Expr, stmts: c.Stmts})
		case *ast.Default:
			arms = append(arms, switchArm{isDefault: true, stmts: c.Stmts})
		}
	}

	start := -1
	for i, a := range arms {
		if a.isDefault {
			continue
		}
		cv, err := ip.evalExpr(a.expr)
		if err != nil {
			return nil, nil, err
		}
		iv, _ := fields.Int(cv)
		if iv == discVal {
			start = i
			break
		}
	}
	if start < 0 {
		for i, a := range arms {
			if a.isDefault {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return nil, nil, nil
	}

	for i := start; i < len(arms); i++ {
		for _, st := range arms[i].stmts {
			_, ctrl, err := ip.evalNode(st)
			if err != nil {
				return nil, nil, err
			}
			if ctrl != nil {
				if ctrl.kind == ctrlBreak {
					return nil, nil, nil
				}
				return nil, ctrl, nil
			}
		}
	}
	return nil, nil, nil
}

func (ip *Interpreter) handleReturn(n *ast.Return) (fields.Field, *ctrlSignal, error) {
	var v fields.Field
	if n.Expr != nil {
		f, err := ip.evalExpr(n.Expr)
		if err != nil {
			return nil, nil, err
		}
		v = f
	}
	return nil, &ctrlSignal{kind: ctrlReturn, value: v}, nil
}

func (ip *Interpreter) handleBreak(*ast.Break) (fields.Field, *ctrlSignal, error) {
	return nil, &ctrlSignal{kind: ctrlBreak}, nil
}

func (ip *Interpreter) handleContinue(*ast.Continue) (fields.Field, *ctrlSignal, error) {
	return nil, &ctrlSignal{kind: ctrlContinue}, nil
}
