package interp

import (
	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp/fields"
)

// evalNode is the interpreter's single dispatch point (§4.F): every AST
// node kind it knows how to evaluate is type-switched here, split across
// decl.go/expr.go/control_flow.go/types.go by concern.
func (ip *Interpreter) evalNode(n ast.Node) (fields.Field, *ctrlSignal, error) {
	if n == nil {
		return nil, nil, nil
	}
	ip.lastPos = n.Pos()
	if isBreakable(n) {
		ip.debugger.OnBreak(n.Pos(), BreakNone)
	}

	switch nn := n.(type) {
	case *ast.FileAST:
		return ip.handleFileAST(nn)
	case *ast.Decl:
		return ip.handleDecl(nn)
	case *ast.DeclList:
		return ip.handleDeclList(nn)
	case *ast.TypeDecl:
		return ip.evalNode(nn.Type)
	case *ast.ByRefDecl:
		return ip.evalNode(nn.Type)
	case *ast.Typedef:
		return ip.handleTypedef(nn)
	case *ast.Enum:
		return ip.handleEnum(nn)
	case *ast.IdentifierType:
		tc, _, err := ip.resolveIdentifierType(nn)
		if err != nil {
			return nil, nil, err
		}
		f, err := tc.New(ip, nil, true)
		return f, nil, err
	case *ast.Struct, *ast.Union:
		tc, _, err := ip.resolveTypeNode(nn)
		if err != nil {
			return nil, nil, err
		}
		f, err := tc.New(ip, nil, true)
		return f, nil, err
	case *ast.ArrayDecl:
		tc, _, err := ip.resolveTypeNode(nn)
		if err != nil {
			return nil, nil, err
		}
		f, err := tc.New(ip, nil, true)
		return f, nil, err
	case *ast.Constant:
		return ip.handleConstant(nn)
	case *ast.BinaryOp:
		return ip.handleBinaryOp(nn)
	case *ast.UnaryOp:
		return ip.handleUnaryOp(nn)
	case *ast.Assignment:
		return ip.handleAssignment(nn)
	case *ast.ID:
		return ip.handleID(nn)
	case *ast.StructRef:
		return ip.handleStructRef(nn)
	case *ast.FuncDef:
		return ip.handleFuncDef(nn)
	case *ast.FuncCall:
		return ip.handleFuncCall(nn)
	case *ast.ExprList:
		return ip.handleStmtList(nn.Exprs)
	case *ast.Compound:
		return ip.handleCompound(nn)
	case *ast.Return:
		return ip.handleReturn(nn)
	case *ast.Break:
		return ip.handleBreak(nn)
	case *ast.Continue:
		return ip.handleContinue(nn)
	case *ast.ArrayRef:
		return ip.handleArrayRef(nn)
	case *ast.InitList:
		return ip.handleInitList(nn)
	case *ast.If:
		return ip.handleIf(nn)
	case *ast.For:
		return ip.handleFor(nn)
	case *ast.While:
		return ip.handleWhile(nn)
	case *ast.Switch:
		return ip.handleSwitch(nn)
	case *ast.Case:
		return ip.handleStmtList(nn.Stmts)
	case *ast.Default:
		return ip.handleStmtList(nn.Stmts)
	case *ast.Cast:
		return ip.handleCast(nn)
	default:
		return nil, nil, newErr(KindUnsupportedASTNode, n.Pos(), "unsupported AST node %T", n)
	}
}

func (ip *Interpreter) handleFileAST(n *ast.FileAST) (fields.Field, *ctrlSignal, error) {
	for _, d := range n.Decls {
		_, ctrl, err := ip.evalNode(d)
		if err != nil {
			return nil, nil, err
		}
		if ctrl != nil && ctrl.kind == ctrlReturn {
			// An uncaught top-level Return is silently swallowed rather than
			// promoted to an interpreter-level exit (reproduced quirk).
			break
		}
	}
	return ip.dom, nil, nil
}
