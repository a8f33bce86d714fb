package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp/fields"
	"github.com/binarytmpl/bti/interp/stream"
)

func c() ast.Coord { return ast.Coord{} }

func idType(names ...string) *ast.IdentifierType { return ast.NewIdentifierType(c(), names) }

func plainDecl(name string, typ ast.Node) *ast.Decl {
	return ast.NewDecl(c(), name, nil, typ, nil, nil, nil)
}

func qualDecl(name string, quals []string, typ ast.Node) *ast.Decl {
	return ast.NewDecl(c(), name, quals, typ, nil, nil, nil)
}

func file(decls ...ast.Node) *ast.FileAST { return ast.NewFileAST(c(), decls) }

func TestParseFlatStructInOrder(t *testing.T) {
	ip := New(Options{})
	f := file(
		plainDecl("magic", idType("uint32")),
		plainDecl("version", idType("uint16")),
	)
	dom, err := ip.Parse([]byte{0x01, 0x00, 0x00, 0x00, 0x02, 0x00}, f, "")
	require.NoError(t, err)

	magic, ok := dom.Child("magic")
	require.True(t, ok)
	require.EqualValues(t, 1, magic.Value())
	version, ok := dom.Child("version")
	require.True(t, ok)
	require.EqualValues(t, 2, version.Value())
	require.Equal(t, []string{"magic", "version"}, namesOf(dom))
}

func namesOf(agg fields.Aggregate) []string {
	var out []string
	for _, f := range agg.Children() {
		out = append(out, f.Name())
	}
	return out
}

func TestLocalDeclDoesNotConsumeStream(t *testing.T) {
	ip := New(Options{})
	f := file(
		qualDecl("n", []string{"local"}, idType("int")),
		plainDecl("a", idType("uint8")),
	)
	dom, err := ip.Parse([]byte{0x2A}, f, "")
	require.NoError(t, err)
	a, ok := dom.Child("a")
	require.True(t, ok)
	require.EqualValues(t, 0x2A, a.Value())
	_, ok = dom.Child("n")
	require.False(t, ok, "local declarations must not appear in the field tree")
}

func TestNestedStructType(t *testing.T) {
	ip := New(Options{})
	inner := ast.NewStruct(c(), "", []ast.Node{
		plainDecl("x", idType("uint8")),
		plainDecl("y", idType("uint8")),
	})
	f := file(plainDecl("point", inner))
	dom, err := ip.Parse([]byte{10, 20}, f, "")
	require.NoError(t, err)

	point, ok := dom.Child("point")
	require.True(t, ok)
	agg, ok := point.(fields.Aggregate)
	require.True(t, ok)
	x, ok := agg.Child("x")
	require.True(t, ok)
	require.EqualValues(t, 10, x.Value())
}

func TestUnionMembersReadFromSameOffset(t *testing.T) {
	ip := New(Options{})
	u := ast.NewUnion(c(), "", []ast.Node{
		plainDecl("asInt", idType("uint32")),
		plainDecl("asBytes", ast.NewArrayDecl(c(), idType("uint8"), ast.NewConstant(c(), "int", "4"), "asBytes")),
	})
	f := file(plainDecl("u", u))
	dom, err := ip.Parse([]byte{0x01, 0x00, 0x00, 0x00}, f, "")
	require.NoError(t, err)

	uf, ok := dom.Child("u")
	require.True(t, ok)
	agg := uf.(fields.Aggregate)
	asInt, _ := agg.Child("asInt")
	require.EqualValues(t, 1, asInt.Value())
	asBytes, _ := agg.Child("asBytes")
	require.Equal(t, []interface{}{uint64(1), uint64(0), uint64(0), uint64(0)}, asBytes.Value())

	after, ok := dom.Child("u")
	require.True(t, ok)
	require.EqualValues(t, 32, after.WidthBits())
}

func TestArrayOfFixedCount(t *testing.T) {
	ip := New(Options{})
	arr := ast.NewArrayDecl(c(), idType("uint8"), ast.NewConstant(c(), "int", "3"), "xs")
	f := file(plainDecl("xs", arr))
	dom, err := ip.Parse([]byte{1, 2, 3}, f, "")
	require.NoError(t, err)
	xs, ok := dom.Child("xs")
	require.True(t, ok)
	require.Equal(t, []interface{}{uint64(1), uint64(2), uint64(3)}, xs.Value())
}

func TestEnumTypedefAndSymbolicLookup(t *testing.T) {
	ip := New(Options{})
	enumDef := ast.NewEnum(c(), "Color", nil, []ast.Enumerator{
		{Name: "RED"},
		{Name: "GREEN"},
	})
	f := file(
		enumDef,
		plainDecl("c", idType("Color")),
	)
	dom, err := ip.Parse([]byte{0x01, 0x00, 0x00, 0x00}, f, "")
	require.NoError(t, err)
	col, ok := dom.Child("c")
	require.True(t, ok)
	e, ok := col.(*fields.Enum)
	require.True(t, ok)
	require.Equal(t, "GREEN", e.SymbolicName())
	require.EqualValues(t, 32, e.WidthBits())
}

func TestEnumWidthCountsTowardStructAndUnionWidth(t *testing.T) {
	ip := New(Options{})
	enumDef := ast.NewEnum(c(), "Color", nil, []ast.Enumerator{
		{Name: "RED"},
		{Name: "GREEN"},
	})

	structBody := ast.NewStruct(c(), "", []ast.Node{
		plainDecl("c", idType("Color")),
		plainDecl("tail", idType("uint8")),
	})
	f := file(enumDef, plainDecl("s", structBody))
	dom, err := ip.Parse([]byte{0x01, 0x00, 0x00, 0x00, 0x05}, f, "")
	require.NoError(t, err)
	s, ok := dom.Child("s")
	require.True(t, ok)
	require.EqualValues(t, 40, s.WidthBits()) // 32-bit enum + 8-bit tail

	ip2 := New(Options{})
	enumDef2 := ast.NewEnum(c(), "Color2", nil, []ast.Enumerator{
		{Name: "RED"},
		{Name: "GREEN"},
	})
	u := ast.NewUnion(c(), "", []ast.Node{
		plainDecl("c", idType("Color2")),
		plainDecl("asInt", idType("uint32")),
	})
	f2 := file(enumDef2, plainDecl("u", u))
	dom2, err := ip2.Parse([]byte{0x01, 0x00, 0x00, 0x00}, f2, "")
	require.NoError(t, err)
	uf, ok := dom2.Child("u")
	require.True(t, ok)
	require.EqualValues(t, 32, uf.WidthBits())
}

func TestLocalStructDoesNotConsumeStream(t *testing.T) {
	ip := New(Options{})
	localStructType := ast.NewStruct(c(), "", []ast.Node{
		plainDecl("x", idType("uint8")),
		plainDecl("y", idType("uint16")),
	})
	body := ast.NewCompound(c(), []ast.Node{
		qualDecl("tmp", []string{"local"}, localStructType),
		plainDecl("a", idType("uint8")),
	})
	f := file(body)

	dom, err := ip.Parse([]byte{0x2A}, f, "")
	require.NoError(t, err)
	a, ok := dom.Child("a")
	require.True(t, ok)
	require.EqualValues(t, 0x2A, a.Value(), "a local struct must not consume any stream bytes ahead of 'a'")
	_, ok = dom.Child("tmp")
	require.False(t, ok, "local declarations must not appear in the field tree")
}

func TestForLoopBuildsLocalSum(t *testing.T) {
	ip := New(Options{})
	body := ast.NewCompound(c(), []ast.Node{
		qualDecl("sum", []string{"local"}, idType("int")),
		ast.NewFor(c(),
			qualDecl("i", []string{"local"}, idType("int")),
			ast.NewBinaryOp(c(), "<", ast.NewID(c(), "i"), ast.NewConstant(c(), "int", "5")),
			ast.NewUnaryOp(c(), "++", ast.NewID(c(), "i")),
			ast.NewAssignment(c(), "+=", ast.NewID(c(), "sum"), ast.NewID(c(), "i")),
		),
		qualDecl("copy", nil, idType("int")),
		ast.NewAssignment(c(), "=", ast.NewID(c(), "copy"), ast.NewID(c(), "sum")),
	})
	f := file(body)

	dom, err := ip.Parse([]byte{0, 0, 0, 0}, f, "")
	require.NoError(t, err)
	copyField, ok := dom.Child("copy")
	require.True(t, ok)
	require.EqualValues(t, 10, copyField.Value()) // 0+1+2+3+4
}

func TestFunctionCallByRefMutatesCaller(t *testing.T) {
	ip := New(Options{})
	fn := ast.NewFuncDef(c(),
		ast.NewDecl(c(), "bump", nil, ast.NewFuncDecl(c(),
			ast.NewParamList(c(), []ast.Node{
				ast.NewDecl(c(), "v", nil, ast.NewByRefDecl(c(), idType("int")), nil, nil, nil),
			}),
			nil,
		), nil, nil, nil),
		ast.NewCompound(c(), []ast.Node{
			ast.NewAssignment(c(), "+=", ast.NewID(c(), "v"), ast.NewConstant(c(), "int", "1")),
		}),
	)
	// n is a local, not reachable through the dom; read the effect back
	// indirectly through a regular (stream-consuming) field assigned from it.
	body := ast.NewCompound(c(), []ast.Node{
		qualDecl("n", []string{"local"}, idType("int")),
		ast.NewFuncCall(c(), ast.NewID(c(), "bump"), ast.NewID(c(), "n")),
		plainDecl("result", idType("int")),
		ast.NewAssignment(c(), "=", ast.NewID(c(), "result"), ast.NewID(c(), "n")),
	})
	f := file(fn, body)
	dom, err := ip.Parse([]byte{0, 0, 0, 0}, f, "")
	require.NoError(t, err)
	result, ok := dom.Child("result")
	require.True(t, ok)
	require.EqualValues(t, 1, result.Value())
}

func TestWatchUpdateRecomputesOnDependencyChange(t *testing.T) {
	ip := New(Options{})
	ip.AddNative(&Native{
		Name:    "Double",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []fields.Field, _ *CallContext) (fields.Field, error) {
			v, _ := fields.Int(args[0])
			out := fields.NewNumeric(fields.KindInt32)
			_ = out.SetValue(v * 2)
			return out, nil
		},
	})

	doubled := ast.NewDecl(c(), "doubled", nil, idType("int"), nil, nil,
		&ast.Metadata{Keyvals: map[string]string{"watch": "a", "update": "Double"}})
	body := ast.NewCompound(c(), []ast.Node{
		plainDecl("a", idType("uint8")),
		doubled,
		ast.NewAssignment(c(), "=", ast.NewID(c(), "a"), ast.NewConstant(c(), "int", "21")),
	})
	f := file(body)

	dom, err := ip.Parse([]byte{5, 0, 0, 0, 0}, f, "")
	require.NoError(t, err)
	d, ok := dom.Child("doubled")
	require.True(t, ok)
	require.EqualValues(t, 42, d.Value())
}

func TestEvalAcceptsPreparsedFragment(t *testing.T) {
	ip := New(Options{})
	_, err := ip.Parse([]byte{0}, file(plainDecl("a", idType("uint8"))), "")
	require.NoError(t, err)

	v, err := ip.Eval(ast.NewConstant(c(), "int", "7"), false)
	require.NoError(t, err)
	require.EqualValues(t, 7, v.Value())
}

func TestSetBitfieldPaddedAffectsLiveStream(t *testing.T) {
	ip := New(Options{})
	ip.stream = stream.New([]byte{0xFF, 0xAB})
	ip.SetBitfieldPadded(true)
	require.True(t, ip.stream.Padded())
}
