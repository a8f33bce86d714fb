package interp

import (
	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp/fields"
)

// maxTypedefChain bounds the typedef-chain walk (§4.D) so a self-referential
// typedef can't hang the interpreter.
const maxTypedefChain = 64

// builtinKinds maps a core type-name token to its numeric Kind. Qualifiers
// (e.g. "unsigned") are applied on top by the caller.
var builtinKinds = map[string]fields.Kind{
	"char":   fields.KindInt8,
	"uchar":  fields.KindUint8,
	"byte":   fields.KindUint8,
	"int8":   fields.KindInt8,
	"uint8":  fields.KindUint8,
	"int16":  fields.KindInt16,
	"uint16": fields.KindUint16,
	"int32":  fields.KindInt32,
	"uint32": fields.KindUint32,
	"short":  fields.KindInt16,
	"ushort": fields.KindUint16,
	"int":    fields.KindInt32,
	"uint":   fields.KindUint32,
	"long":   fields.KindInt32,
	"ulong":  fields.KindUint32,
	"int64":  fields.KindInt64,
	"uint64": fields.KindUint64,
	"hex":    fields.KindUint32,
	"float":  fields.KindFloat32,
	"double": fields.KindFloat64,
}

func hasQual(quals []string, want string) bool {
	for _, q := range quals {
		if q == want {
			return true
		}
	}
	return false
}

// TypeConstructor is what the type resolver (§4.D) produces: something
// that can materialize a field, given the interpreter driving the
// process. A bare fields.Constructor isn't enough on its own because
// struct/union/enum types need interpreter-level behavior (pushing scope,
// evaluating member declarations, rewinding the stream for unions) that a
// plain "func() Field" closure can't express.
type TypeConstructor interface {
	// New builds a field. If consume is true the field parses itself from
	// ip.stream (and, for aggregates, the interpreter evaluates member
	// declarations against that stream); if false, the field is
	// instantiated standalone with no stream interaction — used for
	// locals, consts, and function parameters.
	New(ip *Interpreter, bitsize *int, consume bool) (fields.Field, error)
}

// plainType wraps a fields.Constructor for numeric/string/wstring values,
// which parse themselves directly from the stream with no further
// interpreter involvement.
type plainType struct {
	ctor      fields.Constructor
	kind      fields.Kind
	isNumeric bool
}

func (t *plainType) New(ip *Interpreter, bitsize *int, consume bool) (fields.Field, error) {
	var f fields.Field
	if bitsize != nil && t.isNumeric {
		f = fields.NewBitfield(t.kind, *bitsize)
	} else {
		var err error
		f, err = t.ctor()
		if err != nil {
			return nil, err
		}
	}
	if consume {
		if err := f.Parse(ip.stream); err != nil {
			return nil, ip.wrapStreamErr(err)
		}
	}
	return f, nil
}

func numericPlainType(kind fields.Kind) *plainType {
	k := kind
	return &plainType{
		ctor:      func() (fields.Field, error) { return fields.NewNumeric(k), nil },
		kind:      k,
		isNumeric: true,
	}
}

// arrayType wraps an element TypeConstructor and a fixed count (§4.D
// ArrayDecl row).
type arrayType struct {
	elem  TypeConstructor
	count int
}

func (t *arrayType) New(ip *Interpreter, _ *int, consume bool) (fields.Field, error) {
	elemCtor := func() (fields.Field, error) {
		return t.elem.New(ip, nil, consume)
	}
	arr := fields.NewArray(elemCtor, t.count)
	if err := arr.Parse(ip.stream); err != nil {
		return nil, err
	}
	return arr, nil
}

// structType wraps a struct/union body's member declarations, deferring
// their evaluation until instantiation so the same declared type can be
// instantiated more than once (§4.F Struct/Union rows).
type structType struct {
	decls   []ast.Node
	isUnion bool
}

func (t *structType) New(ip *Interpreter, _ *int, consume bool) (fields.Field, error) {
	var agg fields.Aggregate
	if t.isUnion {
		agg = fields.NewUnion()
	} else {
		agg = fields.NewStruct()
	}

	prevCtx, prevScope, prevConsuming := ip.context, ip.scope, ip.consuming
	ip.context = agg
	ip.scope = ip.scope.Push()
	ip.consuming = consume
	defer func() { ip.context, ip.scope, ip.consuming = prevCtx, prevScope, prevConsuming }()

	var startBit int64
	if consume {
		startBit = ip.stream.Tell()
	}
	for _, d := range t.decls {
		if t.isUnion && consume {
			ip.stream.Seek(startBit)
		}
		_, ctrl, err := ip.evalNode(d)
		if err != nil {
			return nil, err
		}
		if ctrl != nil {
			return nil, newErr(KindUnsupportedASTNode, d.Pos(), "control-flow signal inside aggregate body")
		}
	}
	if t.isUnion && consume {
		ip.stream.Seek(startBit + agg.WidthBits())
	}
	return agg, nil
}

// enumType wraps an underlying numeric TypeConstructor plus the
// value<->name maps built by buildEnumType (§4.F Enum row).
type enumType struct {
	under TypeConstructor
	vals  map[int64]string
	names map[string]int64
}

func (t *enumType) New(ip *Interpreter, bitsize *int, consume bool) (fields.Field, error) {
	numF, err := t.under.New(ip, bitsize, consume)
	if err != nil {
		return nil, err
	}
	n, ok := numF.(*fields.Numeric)
	if !ok {
		return nil, newErr(KindUnresolvedType, ip.lastPos, "enum underlying type is not numeric")
	}
	return fields.NewEnum(n, t.vals, t.names), nil
}

// resolveTypeNode dispatches on a type-position AST node, per §4.D.
func (ip *Interpreter) resolveTypeNode(n ast.Node) (TypeConstructor, fields.Kind, error) {
	switch t := n.(type) {
	case *ast.TypeDecl:
		return ip.resolveTypeNode(t.Type)
	case *ast.Typename:
		return ip.resolveTypeNode(t.Type)
	case *ast.ByRefDecl:
		return ip.resolveTypeNode(t.Type)
	case *ast.IdentifierType:
		return ip.resolveIdentifierType(t)
	case *ast.Struct:
		return &structType{decls: t.Decls, isUnion: false}, 0, nil
	case *ast.Union:
		return &structType{decls: t.Decls, isUnion: true}, 0, nil
	case *ast.Enum:
		et, kind, err := ip.buildEnumType(t)
		if err != nil {
			return nil, 0, err
		}
		if t.Name != "" {
			ip.scope.AddType(t.Name, et)
		}
		return et, kind, nil
	case *ast.ArrayDecl:
		elemCtor, _, err := ip.resolveTypeNode(t.Type)
		if err != nil {
			return nil, 0, err
		}
		dimField, err := ip.evalExpr(t.Dim)
		if err != nil {
			return nil, 0, err
		}
		count, ok := fields.Int(dimField)
		if !ok {
			return nil, 0, newErr(KindUnsupportedConstantType, t.Pos(), "array dimension is not numeric")
		}
		return &arrayType{elem: elemCtor, count: int(count)}, 0, nil
	case *ast.FuncDecl:
		return nil, 0, newErr(KindUnsupportedASTNode, t.Pos(), "function-typed declarations are not supported as field types")
	default:
		return nil, 0, newErr(KindUnsupportedASTNode, n.Pos(), "unsupported type node %T", n)
	}
}

// resolveIdentifierType implements the four-step typedef-chain walk
// (§4.D): builtin lookup, then repeatedly resolve through scope's type
// table until a constructor (struct/union/enum/builtin) is reached.
func (ip *Interpreter) resolveIdentifierType(t *ast.IdentifierType) (TypeConstructor, fields.Kind, error) {
	names := append([]string(nil), t.Names...)
	for depth := 0; depth < maxTypedefChain; depth++ {
		if len(names) == 0 {
			return nil, 0, newErr(KindUnresolvedType, t.Pos(), "empty type name")
		}
		core := names[len(names)-1]
		quals := names[:len(names)-1]

		switch core {
		case "string":
			return &plainType{ctor: func() (fields.Field, error) { return fields.NewString(), nil }}, 0, nil
		case "wstring":
			return &plainType{ctor: func() (fields.Field, error) { return fields.NewWString(), nil }}, 0, nil
		case "void":
			return nil, 0, newErr(KindUnresolvedType, t.Pos(), "void is not an instantiable type")
		}

		if kind, ok := builtinKinds[core]; ok {
			if !kind.Float() && hasQual(quals, "unsigned") {
				kind = kind.Unsigned()
			}
			return numericPlainType(kind), kind, nil
		}

		resolved, ok := ip.scope.GetType(core)
		if !ok {
			return nil, 0, newErr(KindUnresolvedType, t.Pos(), "unresolved type %q", core)
		}
		switch v := resolved.(type) {
		case TypeConstructor:
			return v, 0, nil
		case []string:
			names = append(append([]string{}, quals...), v...)
			continue
		default:
			return nil, 0, newErr(KindUnresolvedType, t.Pos(), "type %q resolved to an unsupported binding", core)
		}
	}
	return nil, 0, newErr(KindUnresolvedType, t.Pos(), "typedef chain for %q too deep", t.Names)
}
