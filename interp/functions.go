package interp

import (
	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp/fields"
	"github.com/binarytmpl/bti/interp/stream"
)

// Param is one (name, type) pair in a function's parameter list. A nil
// TypeConstructor marks a lazy parameter (§9 "Lazy function parameters"):
// its concrete type is unknown until the call site supplies an argument,
// whose own runtime type the parameter then adopts.
type Param struct {
	Name    string
	Type    TypeConstructor
	ByRef   bool
}

// Function is a user-defined function. It captures its defining scope
// (§4.E lexical capture) and evaluates its body against the caller's
// arguments bound into a child of that scope — never the caller's scope,
// so functions can't see the caller's locals.
type Function struct {
	Name    string
	Params  []Param
	RetType TypeConstructor // nil if untyped/void return
	Body    ast.Node        // Compound
	Defined *Scope
}

// NativeFunc is the callback signature a host-registered native function
// implements (§4.E: natives receive evaluated arguments plus call
// context).
type NativeFunc func(args []fields.Field, ctx *CallContext) (fields.Field, error)

// Native describes one registered native function.
type Native struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for unbounded
	Fn      NativeFunc
}

// CallContext carries the live interpreter state visible to a native
// function implementation.
type CallContext struct {
	Interp  *Interpreter
	Scope   *Scope
	Stream  *stream.Stream
	Context fields.Field
}

// Registry is the native-function table. New interpreters either start
// from an empty one or clone a caller-supplied prototype (§4.E
// "copy-on-write per instance" — here realized as "clone once at
// construction," since Go has no implicit sharing to defer copying).
type Registry struct {
	natives map[string]*Native
}

func newRegistry() *Registry { return &Registry{natives: map[string]*Native{}} }

func (r *Registry) clone() *Registry {
	cp := newRegistry()
	for k, v := range r.natives {
		cp.natives[k] = v
	}
	return cp
}

func (r *Registry) add(n *Native) { r.natives[n.Name] = n }

func (r *Registry) get(name string) (*Native, bool) {
	n, ok := r.natives[name]
	return n, ok
}

// buildFunction resolves a FuncDecl's parameter and return types and
// captures the defining scope, producing a Function ready to be bound
// under name.
func (ip *Interpreter) buildFunction(name string, fd *ast.FuncDecl, body ast.Node) (*Function, error) {
	var params []Param
	if fd.Args != nil {
		pl, ok := fd.Args.(*ast.ParamList)
		if !ok {
			return nil, newErr(KindUnsupportedASTNode, fd.Pos(), "FuncDecl.Args is not a ParamList")
		}
		for _, p := range pl.Params {
			pd, ok := p.(*ast.Decl)
			if !ok {
				return nil, newErr(KindUnsupportedASTNode, p.Pos(), "function parameter is not a Decl")
			}
			byRef := false
			typeNode := pd.Type
			if br, ok := typeNode.(*ast.ByRefDecl); ok {
				byRef = true
				typeNode = br.Type
			}
			var tc TypeConstructor
			if typeNode != nil {
				var err error
				tc, _, err = ip.resolveTypeNode(typeNode)
				if err != nil {
					return nil, err
				}
			}
			params = append(params, Param{Name: pd.Name, Type: tc, ByRef: byRef})
		}
	}

	var retType TypeConstructor
	if fd.Type != nil {
		if tc, _, err := ip.resolveTypeNode(fd.Type); err == nil {
			retType = tc
		}
	}

	return &Function{Name: name, Params: params, RetType: retType, Body: body, Defined: ip.scope}, nil
}

// funcDeclarator extracts a function's name and declarator from the
// TypeDecl/Decl chain FuncDef.Decl wraps (§4.E FuncDef row).
func funcDeclarator(n ast.Node) (string, *ast.FuncDecl, error) {
	switch d := n.(type) {
	case *ast.Decl:
		fd, ok := d.Type.(*ast.FuncDecl)
		if !ok {
			return "", nil, newErr(KindUnsupportedASTNode, n.Pos(), "Decl does not declare a function")
		}
		return d.Name, fd, nil
	case *ast.TypeDecl:
		fd, ok := d.Type.(*ast.FuncDecl)
		if !ok {
			return "", nil, newErr(KindUnsupportedASTNode, n.Pos(), "TypeDecl does not declare a function")
		}
		return d.Name, fd, nil
	default:
		return "", nil, newErr(KindUnsupportedASTNode, n.Pos(), "unsupported function declarator %T", n)
	}
}

func (ip *Interpreter) handleFuncDef(n *ast.FuncDef) (fields.Field, *ctrlSignal, error) {
	name, fd, err := funcDeclarator(n.Decl)
	if err != nil {
		return nil, nil, err
	}
	fn, err := ip.buildFunction(name, fd, n.Body)
	if err != nil {
		return nil, nil, err
	}
	ip.scope.AddFunc(name, fn)
	return nil, nil, nil
}

// callFunction binds args into a fresh child of fn's defining scope and
// evaluates its body. By-reference parameters alias the caller's field
// directly; by-value parameters get a local copy whose type is either the
// declared parameter type or (lazy parameters) a clone of the argument's
// own runtime type (§9 "Lazy function parameters").
func (ip *Interpreter) callFunction(fn *Function, args []fields.Field, pos ast.Coord) (fields.Field, error) {
	callScope := fn.Defined.Push()
	for i, p := range fn.Params {
		if i >= len(args) {
			break
		}
		arg := args[i]
		if arg == nil {
			continue
		}
		if p.ByRef {
			callScope.AddLocal(p.Name, arg)
			continue
		}
		var local fields.Field
		if p.Type != nil {
			f, err := p.Type.New(ip, nil, false)
			if err != nil {
				return nil, err
			}
			local = f
		} else {
			local = arg.Clone()
		}
		if err := local.SetValue(arg.Value()); err != nil {
			return nil, err
		}
		callScope.AddLocal(p.Name, local)
	}

	prevScope, prevCtx := ip.scope, ip.context
	ip.scope = callScope
	defer func() { ip.scope, ip.context = prevScope, prevCtx }()

	_, ctrl, err := ip.evalNode(fn.Body)
	if err != nil {
		return nil, err
	}
	if ctrl != nil && ctrl.kind == ctrlReturn {
		return ctrl.value, nil
	}
	return nil, nil
}

// callNative validates arity and dispatches to n's Go implementation.
func (ip *Interpreter) callNative(n *Native, args []fields.Field, pos ast.Coord) (fields.Field, error) {
	if n.MinArgs >= 0 && len(args) < n.MinArgs {
		return nil, newErr(KindNativeCallError, pos, "native %q: expected at least %d arguments, got %d", n.Name, n.MinArgs, len(args))
	}
	if n.MaxArgs >= 0 && len(args) > n.MaxArgs {
		return nil, newErr(KindNativeCallError, pos, "native %q: expected at most %d arguments, got %d", n.Name, n.MaxArgs, len(args))
	}
	ctx := &CallContext{Interp: ip, Scope: ip.scope, Stream: ip.stream, Context: ip.context}
	v, err := n.Fn(args, ctx)
	if err != nil {
		if ie, ok := err.(*InterpError); ok {
			return nil, ie
		}
		return nil, &InterpError{Kind: KindNativeCallError, Pos: pos, Msg: err.Error(), Err: err}
	}
	return v, nil
}

func (ip *Interpreter) handleFuncCall(n *ast.FuncCall) (fields.Field, *ctrlSignal, error) {
	id, ok := n.Name.(*ast.ID)
	if !ok {
		return nil, nil, newErr(KindUnsupportedASTNode, n.Pos(), "FuncCall.Name is not an identifier")
	}

	var argNodes []ast.Node
	if n.Args != nil {
		if el, ok := n.Args.(*ast.ExprList); ok {
			argNodes = el.Exprs
		} else {
			argNodes = []ast.Node{n.Args}
		}
	}
	args := make([]fields.Field, 0, len(argNodes))
	for _, a := range argNodes {
		f, err := ip.evalExpr(a)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, f)
	}

	if fn, ok := ip.scope.GetFunc(id.Name); ok {
		v, err := ip.callFunction(fn, args, n.Pos())
		if err != nil {
			return nil, nil, err
		}
		return v, nil, nil
	}
	if nat, ok := ip.natives.get(id.Name); ok {
		v, err := ip.callNative(nat, args, n.Pos())
		if err != nil {
			return nil, nil, err
		}
		return v, nil, nil
	}
	return nil, nil, newErr(KindUnresolvedID, n.Pos(), "unresolved function %q", id.Name)
}
