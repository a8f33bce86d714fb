package interp

import (
	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp/fields"
)

// handleDecl evaluates a Decl (§4.F Decl row): resolve its type, apply a
// bitfield width override if present, then either bind it as a
// non-consuming local/const or instantiate it against the live stream as
// a child of the current aggregate context.
func (ip *Interpreter) handleDecl(d *ast.Decl) (fields.Field, *ctrlSignal, error) {
	if _, isFuncDecl := d.Type.(*ast.FuncDecl); isFuncDecl {
		return nil, nil, newErr(KindUnsupportedASTNode, d.Pos(), "function-pointer declarations are not supported")
	}

	isLocal := d.HasQual("local")
	isConst := d.HasQual("const")

	tc, _, err := ip.resolveTypeNode(d.Type)
	if err != nil {
		return nil, nil, err
	}

	var bitsizePtr *int
	if d.Bitsize != nil {
		bf, err := ip.evalExpr(d.Bitsize)
		if err != nil {
			return nil, nil, err
		}
		bits, ok := fields.Int(bf)
		if !ok {
			return nil, nil, newErr(KindUnsupportedConstantType, d.Pos(), "bitfield width for %q is not numeric", d.Name)
		}
		b := int(bits)
		bitsizePtr = &b
	}

	if isLocal || isConst {
		f, err := tc.New(ip, bitsizePtr, false)
		if err != nil {
			return nil, nil, err
		}
		if d.Init != nil {
			initField, err := ip.evalExpr(d.Init)
			if err != nil {
				return nil, nil, err
			}
			if err := f.SetValue(initField.Value()); err != nil {
				return nil, nil, err
			}
		}
		if isConst {
			f.Freeze()
		}
		ip.scope.AddLocal(d.Name, f)
		return f, nil, nil
	}

	f, err := tc.New(ip, bitsizePtr, ip.consuming)
	if err != nil {
		return nil, nil, err
	}
	if agg, ok := ip.context.(fields.Aggregate); ok {
		agg.AddChild(d.Name, f)
	}
	ip.scope.AddVar(d.Name, f)

	if d.Metadata != nil {
		if err := ip.applyMetadata(d, f); err != nil {
			return nil, nil, err
		}
	}

	return f, nil, nil
}

// handleDeclList fans a multi-declarator statement (`int a, b;`, §7
// supplemented features) out across handleDecl, returning the last
// declared field.
func (ip *Interpreter) handleDeclList(n *ast.DeclList) (fields.Field, *ctrlSignal, error) {
	var last fields.Field
	for _, item := range n.Decls {
		d, ok := item.(*ast.Decl)
		if !ok {
			return nil, nil, newErr(KindUnsupportedASTNode, item.Pos(), "DeclList entry is not a Decl")
		}
		f, ctrl, err := ip.handleDecl(d)
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

// handleTypedef binds n.Name in scope's type table (§4.D Typedef row):
// struct/union bodies and enum classes are stored directly as
// TypeConstructors; any other underlying type is stored as its raw name
// chain, to be walked transitively on next lookup.
func (ip *Interpreter) handleTypedef(n *ast.Typedef) (fields.Field, *ctrlSignal, error) {
	switch t := n.Type.(type) {
	case *ast.Struct:
		ip.scope.AddType(n.Name, &structType{decls: t.Decls, isUnion: false})
	case *ast.Union:
		ip.scope.AddType(n.Name, &structType{decls: t.Decls, isUnion: true})
	case *ast.Enum:
		et, _, err := ip.buildEnumType(t)
		if err != nil {
			return nil, nil, err
		}
		ip.scope.AddType(n.Name, et)
	case *ast.IdentifierType:
		ip.scope.AddType(n.Name, append([]string(nil), t.Names...))
	default:
		tc, _, err := ip.resolveTypeNode(t)
		if err != nil {
			return nil, nil, err
		}
		ip.scope.AddType(n.Name, tc)
	}
	return nil, nil, nil
}

// buildEnumType evaluates an Enum node's underlying type and enumerator
// list (§4.F Enum row), binding each enumerator as a frozen local and
// returning the reusable enumType.
func (ip *Interpreter) buildEnumType(n *ast.Enum) (*enumType, fields.Kind, error) {
	var underCtor TypeConstructor
	kind := fields.KindInt32
	if n.Type != nil {
		tc, k, err := ip.resolveTypeNode(n.Type)
		if err != nil {
			return nil, 0, err
		}
		underCtor = tc
		kind = k
	} else {
		underCtor = numericPlainType(fields.KindInt32)
	}

	vals := map[int64]string{}
	names := map[string]int64{}
	prev := int64(-1)
	for _, e := range n.Values {
		v := prev + 1
		if e.Value != nil {
			valField, err := ip.evalExpr(e.Value)
			if err != nil {
				return nil, 0, err
			}
			iv, ok := fields.Int(valField)
			if !ok {
				return nil, 0, newErr(KindUnsupportedConstantType, n.Pos(), "enum value for %q is not numeric", e.Name)
			}
			v = iv
		}
		prev = v
		vals[v] = e.Name
		names[e.Name] = v

		local := fields.NewNumeric(kind)
		if err := local.SetValue(v); err != nil {
			return nil, 0, err
		}
		local.Freeze()
		ip.scope.AddLocal(e.Name, local)
	}

	return &enumType{under: underCtor, vals: vals, names: names}, kind, nil
}

func (ip *Interpreter) handleEnum(n *ast.Enum) (fields.Field, *ctrlSignal, error) {
	et, _, err := ip.buildEnumType(n)
	if err != nil {
		return nil, nil, err
	}
	if n.Name != "" {
		ip.scope.AddType(n.Name, et)
	}
	return nil, nil, nil
}

// handleStructRef evaluates `a.b` (§7 supplemented features): resolve the
// target, then look up Field by name among its children.
func (ip *Interpreter) handleStructRef(n *ast.StructRef) (fields.Field, *ctrlSignal, error) {
	target, err := ip.evalExpr(n.Target)
	if err != nil {
		return nil, nil, err
	}
	agg, ok := target.(fields.Aggregate)
	if !ok {
		return nil, nil, newErr(KindUnresolvedID, n.Pos(), "%q is not a struct or union", n.Field)
	}
	f, ok := agg.Child(n.Field)
	if !ok {
		return nil, nil, newErr(KindUnresolvedID, n.Pos(), "no such field %q", n.Field)
	}
	return f, nil, nil
}
