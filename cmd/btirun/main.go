// btirun runs a binary-template program against an input file and prints
// the resulting field tree as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp"
	"github.com/binarytmpl/bti/interp/config"
	"github.com/binarytmpl/bti/interp/fields"
	"github.com/binarytmpl/bti/interp/natives"
)

// noTemplateParser reports that no Parser was wired in. Compiling
// template source text into an ast.FileAST is an external collaborator's
// job; this command only orchestrates Interpreter wiring, so a caller
// that configures `predefines:` without supplying their own build of
// this binary (with a real Parser linked in) gets a clear error instead
// of a silent no-op.
type noTemplateParser struct{}

func (noTemplateParser) Parse(path string, _ []byte) (*ast.FileAST, error) {
	return nil, fmt.Errorf("btirun: no template parser linked in; cannot compile predefine %q", path)
}

func main() {
	configPath := flag.String("config", "", "path to a YAML interpreter configuration file")
	prettyPrint := flag.Bool("pretty", false, "pretty-print JSON output")
	padded := flag.Bool("padded", false, "pack bitfields to byte boundaries between declarations")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <input-file>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	opts := interp.Options{BitfieldPadded: *padded}
	var cfg *config.Config
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := cfg.Logger(os.Stderr)
		opts = cfg.ToOptions(logger)
	}

	ip := interp.New(opts)
	natives.Bootstrap(ip)

	if cfg != nil {
		if err := cfg.ApplyPredefines(ip, noTemplateParser{}); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying predefines: %v\n", err)
			os.Exit(1)
		}
	}

	// The template program itself is compiled by an external parser not
	// present in this module; btirun demonstrates the Interpreter/config/
	// natives wiring against a fixed template until one is linked in.
	dom, err := ip.Parse(data, demoTemplate(), inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing input: %v\n", err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetEscapeHTML(false)
	if *prettyPrint {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(domToJSON(dom)); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

// demoTemplate builds a small fixed AST equivalent to:
//
//	BigEndian();
//	uint32 magic;
//	uint16 version;
//	uint16 count;
func demoTemplate() *ast.FileAST {
	c := ast.Coord{}
	decl := func(name, typeName string) ast.Node {
		return ast.NewDecl(c, name, nil, ast.NewIdentifierType(c, []string{typeName}), nil, nil, nil)
	}
	body := ast.NewCompound(c, []ast.Node{
		ast.NewFuncCall(c, ast.NewID(c, "BigEndian"), nil),
		decl("magic", "uint32"),
		decl("version", "uint16"),
		decl("count", "uint16"),
	})
	return ast.NewFileAST(c, []ast.Node{body})
}

// domToJSON flattens a parsed field tree into plain Go values suitable
// for json.Marshal; Struct.Value() already returns a name-keyed map.
func domToJSON(dom *fields.Dom) map[string]interface{} {
	return map[string]interface{}{
		"origin": dom.Origin,
		"fields": dom.Value(),
	}
}
