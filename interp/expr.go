package interp

import (
	"strings"

	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp/fields"
)

// evalExpr evaluates n in an expression position, where a control-flow
// signal would be a malformed AST (§7: control-flow signals only ever
// arise from statement-position nodes).
func (ip *Interpreter) evalExpr(n ast.Node) (fields.Field, error) {
	f, ctrl, err := ip.evalNode(n)
	if err != nil {
		return nil, err
	}
	if ctrl != nil {
		return nil, newErr(KindUnsupportedASTNode, n.Pos(), "unexpected control-flow signal in expression position")
	}
	return f, nil
}

func truthy(f fields.Field) bool {
	if f == nil {
		return false
	}
	switch v := f.Value().(type) {
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	}
	return false
}

func isFloatField(f fields.Field) bool {
	n, ok := f.(*fields.Numeric)
	return ok && n.Kind().Float()
}

func numericValue(f fields.Field) (float64, bool) {
	switch v := f.Value().(type) {
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func (ip *Interpreter) handleConstant(n *ast.Constant) (fields.Field, *ctrlSignal, error) {
	switch n.Kind {
	case "int", "long":
		v, neg, err := parseIntLiteral(n.Value)
		if err != nil {
			return nil, nil, newErr(KindUnsupportedConstantType, n.Pos(), "bad integer literal %q: %v", n.Value, err)
		}
		kind := chooseConstIntClass(v, neg)
		f := fields.NewNumeric(kind)
		sv := int64(v)
		if neg {
			sv = -sv
		}
		if err := f.SetValue(sv); err != nil {
			return nil, nil, err
		}
		f.Freeze()
		return f, nil, nil
	case "float", "double":
		fv, kind, err := parseFloatLiteral(n.Value)
		if err != nil {
			return nil, nil, newErr(KindUnsupportedConstantType, n.Pos(), "bad float literal %q: %v", n.Value, err)
		}
		f := fields.NewNumeric(kind)
		if err := f.SetValue(fv); err != nil {
			return nil, nil, err
		}
		f.Freeze()
		return f, nil, nil
	case "char":
		f := fields.NewNumeric(fields.KindUint8)
		if err := f.SetValue(charLiteralValue(n.Value)); err != nil {
			return nil, nil, err
		}
		f.Freeze()
		return f, nil, nil
	case "string":
		f := fields.NewString()
		if err := f.SetValue(n.Value); err != nil {
			return nil, nil, err
		}
		f.Freeze()
		return f, nil, nil
	default:
		return nil, nil, newErr(KindUnsupportedConstantType, n.Pos(), "unsupported constant kind %q", n.Kind)
	}
}

func (ip *Interpreter) handleID(n *ast.ID) (fields.Field, *ctrlSignal, error) {
	switch n.Name {
	case "__root":
		return ip.dom, nil, nil
	case "this", "__this":
		return ip.context, nil, nil
	}
	if f, ok := ip.scope.GetID(n.Name); ok {
		return f, nil, nil
	}
	if n.IsLazy {
		return nil, nil, newErr(KindUnresolvedID, n.Pos(), "lazy identifier %q has no bound argument yet", n.Name)
	}
	return nil, nil, newErr(KindUnresolvedID, n.Pos(), "unresolved identifier %q", n.Name)
}

func (ip *Interpreter) handleBinaryOp(n *ast.BinaryOp) (fields.Field, *ctrlSignal, error) {
	l, err := ip.evalExpr(n.Left)
	if err != nil {
		return nil, nil, err
	}
	r, err := ip.evalExpr(n.Right)
	if err != nil {
		return nil, nil, err
	}

	lv, lok := numericValue(l)
	rv, rok := numericValue(r)
	if !lok || !rok {
		return nil, nil, newErr(KindUnsupportedBinaryOperator, n.Pos(), "operator %q requires numeric operands", n.Op)
	}
	isFloat := isFloatField(l) || isFloatField(r)

	switch n.Op {
	case "+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>":
		result, resultIsFloat := arith(n.Op, lv, rv, isFloat)
		kind := fields.KindInt64
		if resultIsFloat {
			kind = fields.KindFloat64
		}
		out := fields.NewNumeric(kind)
		if resultIsFloat {
			if err := out.SetValue(result); err != nil {
				return nil, nil, err
			}
		} else {
			if err := out.SetValue(int64(result)); err != nil {
				return nil, nil, err
			}
		}
		return out, nil, nil
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		out := fields.NewNumeric(fields.KindInt32)
		v := int64(0)
		if compare(n.Op, lv, rv) {
			v = 1
		}
		out.SetValue(v)
		return out, nil, nil
	default:
		return nil, nil, newErr(KindUnsupportedBinaryOperator, n.Pos(), "unsupported binary operator %q", n.Op)
	}
}

func arith(op string, l, r float64, isFloat bool) (float64, bool) {
	switch op {
	case "+":
		return l + r, isFloat
	case "-":
		return l - r, isFloat
	case "*":
		return l * r, isFloat
	case "/":
		if isFloat {
			if r == 0 {
				return 0, true
			}
			return l / r, true
		}
		if int64(r) == 0 {
			return 0, false
		}
		return float64(int64(l) / int64(r)), false
	case "%":
		if int64(r) == 0 {
			return 0, false
		}
		return float64(int64(l) % int64(r)), false
	case "&":
		return float64(int64(l) & int64(r)), false
	case "|":
		return float64(int64(l) | int64(r)), false
	case "^":
		return float64(int64(l) ^ int64(r)), false
	case "<<":
		return float64(int64(l) << uint(int64(r))), false
	case ">>":
		return float64(int64(l) >> uint(int64(r))), false
	}
	return 0, false
}

func compare(op string, l, r float64) bool {
	switch op {
	case "==":
		return l == r
	case "!=":
		return l != r
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	case "&&":
		return l != 0 && r != 0
	case "||":
		return l != 0 || r != 0
	}
	return false
}

func (ip *Interpreter) handleUnaryOp(n *ast.UnaryOp) (fields.Field, *ctrlSignal, error) {
	switch n.Op {
	case "++", "--":
		target, err := ip.evalExpr(n.Expr)
		if err != nil {
			return nil, nil, err
		}
		num, ok := target.(*fields.Numeric)
		if !ok {
			return nil, nil, newErr(KindUnsupportedUnaryOperator, n.Pos(), "%q requires a numeric lvalue", n.Op)
		}
		if num.Frozen() {
			return nil, nil, newErr(KindFieldFrozen, n.Pos(), "assignment to frozen field %q", num.Name())
		}
		delta := int64(1)
		if n.Op == "--" {
			delta = -1
		}
		num.Add(delta)
		if err := ip.fireWatchers(num.Name()); err != nil {
			return nil, nil, err
		}
		return num, nil, nil
	case "~":
		v, err := ip.evalExpr(n.Expr)
		if err != nil {
			return nil, nil, err
		}
		iv, _ := fields.Int(v)
		out := fields.NewNumeric(fields.KindInt64)
		out.SetValue(^iv)
		return out, nil, nil
	case "!":
		v, err := ip.evalExpr(n.Expr)
		if err != nil {
			return nil, nil, err
		}
		out := fields.NewNumeric(fields.KindInt32)
		b := int64(0)
		if !truthy(v) {
			b = 1
		}
		out.SetValue(b)
		return out, nil, nil
	case "-":
		v, err := ip.evalExpr(n.Expr)
		if err != nil {
			return nil, nil, err
		}
		if isFloatField(v) {
			fv, _ := v.Value().(float64)
			out := fields.NewNumeric(fields.KindFloat64)
			out.SetValue(-fv)
			return out, nil, nil
		}
		iv, _ := fields.Int(v)
		out := fields.NewNumeric(fields.KindInt64)
		out.SetValue(-iv)
		return out, nil, nil
	case "sizeof":
		v, err := ip.evalExpr(n.Expr)
		if err != nil {
			return nil, nil, err
		}
		out := fields.NewNumeric(fields.KindUint64)
		out.SetValue(uint64(v.WidthBits() / 8))
		return out, nil, nil
	default:
		return nil, nil, newErr(KindUnsupportedUnaryOperator, n.Pos(), "unsupported unary operator %q", n.Op)
	}
}

func (ip *Interpreter) handleAssignment(n *ast.Assignment) (fields.Field, *ctrlSignal, error) {
	lval, err := ip.evalExpr(n.LValue)
	if err != nil {
		return nil, nil, err
	}
	rval, err := ip.evalExpr(n.RValue)
	if err != nil {
		return nil, nil, err
	}
	if lval.Frozen() {
		return nil, nil, newErr(KindFieldFrozen, n.Pos(), "assignment to frozen field %q", lval.Name())
	}

	if n.Op == "" || n.Op == "=" {
		if seq, ok := rval.(fields.Indexable); ok {
			if _, isArr := lval.(fields.Indexable); isArr {
				children := make([]fields.Field, seq.Len())
				for i := 0; i < seq.Len(); i++ {
					children[i], _ = seq.Index(i)
				}
				if err := lval.SetValue(children); err != nil {
					return nil, nil, err
				}
				if err := ip.fireWatchers(lval.Name()); err != nil {
					return nil, nil, err
				}
				return lval, nil, nil
			}
		}
		if err := lval.SetValue(rval.Value()); err != nil {
			return nil, nil, err
		}
		if err := ip.fireWatchers(lval.Name()); err != nil {
			return nil, nil, err
		}
		return lval, nil, nil
	}

	num, ok := lval.(*fields.Numeric)
	if !ok {
		return nil, nil, newErr(KindUnsupportedAssignmentOperator, n.Pos(), "compound assignment requires a numeric lvalue")
	}
	rv, _ := fields.Int(rval)
	switch strings.TrimSuffix(n.Op, "=") {
	case "+":
		num.Add(rv)
	case "-":
		num.Add(-rv)
	case "*":
		cur, _ := fields.Int(num)
		num.SetValue(cur * rv)
	case "/":
		cur, _ := fields.Int(num)
		if rv != 0 {
			num.SetValue(cur / rv)
		}
	case "%":
		cur, _ := fields.Int(num)
		if rv != 0 {
			num.SetValue(cur % rv)
		}
	case "^":
		cur, _ := fields.Int(num)
		num.SetValue(cur ^ rv)
	case "&":
		cur, _ := fields.Int(num)
		num.SetValue(cur & rv)
	case "|":
		cur, _ := fields.Int(num)
		num.SetValue(cur | rv)
	case "<<":
		cur, _ := fields.Int(num)
		num.SetValue(cur << uint(rv))
	case ">>":
		cur, _ := fields.Int(num)
		num.SetValue(cur >> uint(rv))
	default:
		return nil, nil, newErr(KindUnsupportedAssignmentOperator, n.Pos(), "unsupported assignment operator %q", n.Op)
	}
	if err := ip.fireWatchers(num.Name()); err != nil {
		return nil, nil, err
	}
	return num, nil, nil
}

func (ip *Interpreter) handleCast(n *ast.Cast) (fields.Field, *ctrlSignal, error) {
	tc, _, err := ip.resolveTypeNode(n.ToType)
	if err != nil {
		return nil, nil, err
	}
	v, err := ip.evalExpr(n.Expr)
	if err != nil {
		return nil, nil, err
	}
	out, err := tc.New(ip, nil, false)
	if err != nil {
		return nil, nil, err
	}
	if err := out.SetValue(v.Value()); err != nil {
		return nil, nil, err
	}
	return out, nil, nil
}

func (ip *Interpreter) handleArrayRef(n *ast.ArrayRef) (fields.Field, *ctrlSignal, error) {
	arrField, err := ip.evalExpr(n.Name)
	if err != nil {
		return nil, nil, err
	}
	idx, err := ip.evalExpr(n.Subscript)
	if err != nil {
		return nil, nil, err
	}
	indexable, ok := arrField.(fields.Indexable)
	if !ok {
		return nil, nil, newErr(KindUnsupportedASTNode, n.Pos(), "subscript on a non-array value")
	}
	i, _ := fields.Int(idx)
	f, ierr := indexable.Index(int(i))
	if ierr != nil {
		return nil, nil, &InterpError{Kind: KindIndexError, Pos: n.Pos(), Msg: ierr.Error(), Err: ierr}
	}
	return f, nil, nil
}

func (ip *Interpreter) handleInitList(n *ast.InitList) (fields.Field, *ctrlSignal, error) {
	children := make([]fields.Field, 0, len(n.Exprs))
	for _, e := range n.Exprs {
		f, err := ip.evalExpr(e)
		if err != nil {
			return nil, nil, err
		}
		children = append(children, f)
	}
	return fields.NewArrayFrom(children), nil, nil
}
