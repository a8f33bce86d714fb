package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp"
	"github.com/binarytmpl/bti/interp/config"
	"github.com/binarytmpl/bti/interp/stream"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDecodesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", `
predefines:
  - defs.bt
bitfield_padded: true
bit_order: right-to-left
log_level: debug
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"defs.bt"}, cfg.Predefines)
	require.True(t, cfg.BitfieldPadded)
	require.Equal(t, "right-to-left", cfg.BitOrder)
}

func TestToOptionsTranslatesBitOrder(t *testing.T) {
	cfg := &config.Config{BitfieldPadded: true, BitOrder: "right-to-left"}
	opts := cfg.ToOptions(zerolog.Nop())
	require.True(t, opts.BitfieldPadded)
	require.Equal(t, stream.RightToLeft, opts.BitOrder)
}

type stubParser struct{ file *ast.FileAST }

func (p stubParser) Parse(string, []byte) (*ast.FileAST, error) { return p.file, nil }

func TestApplyPredefinesQueuesFragment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "defs.bt", "typedef int foo;")

	cfg := &config.Config{Predefines: []string{path}}
	ip := interp.New(interp.Options{})
	frag := ast.NewFileAST(ast.Coord{}, []ast.Node{
		ast.NewTypedef(ast.Coord{}, "foo", ast.NewIdentifierType(ast.Coord{}, []string{"int"})),
	})

	require.NoError(t, cfg.ApplyPredefines(ip, stubParser{file: frag}))

	body := ast.NewCompound(ast.Coord{}, []ast.Node{
		ast.NewDecl(ast.Coord{}, "a", nil, ast.NewIdentifierType(ast.Coord{}, []string{"foo"}), nil, nil, nil),
	})
	dom, err := ip.Parse([]byte{1, 2, 3, 4}, ast.NewFileAST(ast.Coord{}, []ast.Node{body}), "")
	require.NoError(t, err)
	_, ok := dom.Child("a")
	require.True(t, ok)
}
