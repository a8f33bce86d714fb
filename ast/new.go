package ast

// Constructors for every node kind. Since ast.base is unexported, callers
// outside the package (primarily the interpreter's own tests, standing in
// for the external parser) build nodes through these instead of struct
// literals.

func NewDecl(c Coord, name string, quals []string, typ, init, bitsize Node, md *Metadata) *Decl {
	return &Decl{base{c}, name, quals, typ, init, bitsize, md, false}
}

func NewFuncParamDecl(c Coord, name string, typ Node) *Decl {
	return &Decl{base{c}, name, nil, typ, nil, nil, nil, true}
}

func NewTypeDecl(c Coord, name string, typ Node) *TypeDecl { return &TypeDecl{base{c}, name, typ} }

func NewByRefDecl(c Coord, typ Node) *ByRefDecl { return &ByRefDecl{base{c}, typ} }

func NewStruct(c Coord, name string, decls []Node) *Struct { return &Struct{base{c}, name, decls} }

func NewUnion(c Coord, name string, decls []Node) *Union { return &Union{base{c}, name, decls} }

func NewStructRef(c Coord, target Node, field string) *StructRef {
	return &StructRef{base{c}, target, field}
}

func NewIdentifierType(c Coord, names []string) *IdentifierType {
	return &IdentifierType{base{c}, names}
}

func NewTypename(c Coord, typ Node) *Typename { return &Typename{base{c}, typ} }

func NewTypedef(c Coord, name string, typ Node) *Typedef { return &Typedef{base{c}, name, typ} }

func NewConstant(c Coord, kind, value string) *Constant { return &Constant{base{c}, kind, value} }

func NewBinaryOp(c Coord, op string, left, right Node) *BinaryOp {
	return &BinaryOp{base{c}, op, left, right}
}

func NewUnaryOp(c Coord, op string, expr Node) *UnaryOp { return &UnaryOp{base{c}, op, expr} }

func NewAssignment(c Coord, op string, lvalue, rvalue Node) *Assignment {
	return &Assignment{base{c}, op, lvalue, rvalue}
}

func NewID(c Coord, name string) *ID { return &ID{base{c}, name, false} }

func NewLazyID(c Coord, name string) *ID { return &ID{base{c}, name, true} }

func NewFuncDef(c Coord, decl, body Node) *FuncDef { return &FuncDef{base{c}, decl, body} }

func NewFuncDecl(c Coord, args, typ Node) *FuncDecl { return &FuncDecl{base{c}, args, typ} }

func NewParamList(c Coord, params []Node) *ParamList { return &ParamList{base{c}, params} }

func NewFuncCall(c Coord, name, args Node) *FuncCall { return &FuncCall{base{c}, name, args} }

func NewExprList(c Coord, exprs []Node) *ExprList { return &ExprList{base{c}, exprs} }

func NewCompound(c Coord, items []Node) *Compound { return &Compound{base{c}, items} }

func NewReturn(c Coord, expr Node) *Return { return &Return{base{c}, expr} }

func NewBreak(c Coord) *Break { return &Break{base{c}} }

func NewContinue(c Coord) *Continue { return &Continue{base{c}} }

func NewArrayDecl(c Coord, typ, dim Node, declName string) *ArrayDecl {
	return &ArrayDecl{base{c}, typ, dim, declName}
}

func NewArrayRef(c Coord, name, subscript Node) *ArrayRef {
	return &ArrayRef{base{c}, name, subscript}
}

func NewInitList(c Coord, exprs []Node) *InitList { return &InitList{base{c}, exprs} }

func NewIf(c Coord, cond, ifTrue, ifFalse Node) *If { return &If{base{c}, cond, ifTrue, ifFalse} }

func NewFor(c Coord, init, cond, next, stmt Node) *For {
	return &For{base{c}, init, cond, next, stmt}
}

func NewWhile(c Coord, cond, stmt Node) *While { return &While{base{c}, cond, stmt} }

func NewDeclList(c Coord, decls []Node) *DeclList { return &DeclList{base{c}, decls} }

func NewEnum(c Coord, name string, typ Node, values []Enumerator) *Enum {
	return &Enum{base{c}, name, typ, values}
}

func NewSwitch(c Coord, cond, stmt Node) *Switch { return &Switch{base{c}, cond, stmt} }

func NewCase(c Coord, expr Node, stmts []Node) *Case { return &Case{base{c}, expr, stmts} }

func NewDefault(c Coord, stmts []Node) *Default { return &Default{base{c}, stmts} }

func NewCast(c Coord, toType, expr Node) *Cast { return &Cast{base{c}, toType, expr} }
