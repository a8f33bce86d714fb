package interp

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp/fields"
	"github.com/binarytmpl/bti/interp/stream"
)

// Options configure a new Interpreter.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer

	// BitfieldPadded is the initial padded-bitfield policy (§4.A); default
	// false (packed bitfields) when Options is the zero value.
	BitfieldPadded bool
	// BitOrder is the initial stream bit order; zero value is
	// stream.LeftToRight.
	BitOrder stream.BitOrder

	// BaseNatives, if set, seeds the new Interpreter's native registry
	// with a clone of an existing one (§4.E "copy-on-write per instance").
	BaseNatives *Registry

	// Logger overrides the instance logger; nil means a disabled
	// (zerolog.Nop) logger.
	Logger *zerolog.Logger
}

// Interpreter evaluates a template AST against a byte stream (§4.F). All
// mutable execution state — current coordinate, context, scope, stream —
// lives on the instance rather than as a package global, so multiple
// Interpreters never interfere with each other.
type Interpreter struct {
	opt Options

	natives    *Registry
	predefines []ast.Node
	debugger   Debugger

	scope   *Scope
	context fields.Field
	stream  *stream.Stream
	dom     *fields.Dom
	lastPos ast.Coord

	watchers   map[string][]fields.Field
	watchDepth int

	// consuming tracks whether the declaration currently being evaluated
	// should read from the live stream (§4.F Decl row). It starts true and
	// is temporarily cleared by structType.New while evaluating the body
	// of a local/const-qualified struct or union, so that body's own
	// member Decls — which carry no local/const qualifier of their own —
	// still route through handleDecl's non-consuming path.
	consuming bool

	logger zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

// New returns a ready-to-use Interpreter. It does not register any
// natives of its own; call interp/natives.Bootstrap(ip) (or AddNative
// directly) for the BigEndian/LittleEndian/Printf/Exit set templates
// commonly assume.
func New(opts Options) *Interpreter {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	natives := newRegistry()
	if opts.BaseNatives != nil {
		natives = opts.BaseNatives.clone()
	}

	return &Interpreter{
		opt:      opts,
		natives:  natives,
		debugger: defaultDebugger,
		watchers: map[string][]fields.Field{},
		logger:   logger,
		stdout:   stdout,
		stderr:   stderr,
	}
}

// AddNative registers a native function, available to every subsequent
// Parse/Eval call on this instance.
func (ip *Interpreter) AddNative(n *Native) { ip.natives.add(n) }

// AddPredefine queues a parsed fragment's top-level declarations to be
// merged ahead of every subsequent Parse call (§6 add_predefine).
// Compiling predefine source text into this fragment is an external
// collaborator's job (§1 Non-goals name the lexer/parser as out of
// scope); see interp/config for the host-side orchestration of that step.
func (ip *Interpreter) AddPredefine(src *ast.FileAST) {
	ip.predefines = append(ip.predefines, src.Decls...)
}

// SetDebugger installs a stepper to be notified at breakable nodes.
func (ip *Interpreter) SetDebugger(d Debugger) {
	if d == nil {
		d = defaultDebugger
	}
	ip.debugger = d
}

// SetBitfieldPadded toggles the padded-bitfield policy (§4.A), affecting
// both future Parse calls and, if a parse is in flight, the live stream.
func (ip *Interpreter) SetBitfieldPadded(padded bool) {
	ip.opt.BitfieldPadded = padded
	if ip.stream != nil {
		ip.stream.SetPadded(padded)
	}
}

// SetBitfieldLeftRight selects most-significant-bit-first bit order.
func (ip *Interpreter) SetBitfieldLeftRight() {
	ip.opt.BitOrder = stream.LeftToRight
	if ip.stream != nil {
		ip.stream.SetBitOrder(stream.LeftToRight)
	}
}

// SetBitfieldRightLeft selects least-significant-bit-first bit order.
func (ip *Interpreter) SetBitfieldRightLeft() {
	ip.opt.BitOrder = stream.RightToLeft
	if ip.stream != nil {
		ip.stream.SetBitOrder(stream.RightToLeft)
	}
}

func (ip *Interpreter) Stdout() io.Writer { return ip.stdout }
func (ip *Interpreter) Stderr() io.Writer { return ip.stderr }

// Parse evaluates templateAST — with any queued predefines merged ahead
// of it — against data, returning the resulting DOM root (§6 parse). A
// template that calls the Exit() native ends the parse early but is
// still reported as success, returning the partial DOM built so far.
func (ip *Interpreter) Parse(data []byte, templateAST *ast.FileAST, origin string) (*fields.Dom, error) {
	if origin == "" {
		origin = uuid.NewString()
	}
	ip.logger.Debug().Str("origin", origin).Int("bytes", len(data)).Msg("parse start")

	merged := &ast.FileAST{}
	*merged = *templateAST
	if len(ip.predefines) > 0 {
		decls := make([]ast.Node, 0, len(ip.predefines)+len(templateAST.Decls))
		decls = append(decls, ip.predefines...)
		decls = append(decls, templateAST.Decls...)
		merged = ast.NewFileAST(templateAST.Pos(), decls)
	}

	ip.dom = fields.NewDom(origin)
	ip.context = ip.dom
	ip.scope = NewScope(nil)
	ip.stream = stream.New(data)
	ip.stream.SetPadded(ip.opt.BitfieldPadded)
	ip.stream.SetBitOrder(ip.opt.BitOrder)
	ip.watchers = map[string][]fields.Field{}
	ip.watchDepth = 0
	ip.consuming = true

	_, _, err := ip.evalNode(merged)
	if err != nil {
		if ie, ok := err.(*InterpError); ok && ie.Kind == KindInterpExit {
			ip.logger.Debug().Msg("InterpExit raised; returning partial DOM as success")
			return ip.dom, nil
		}
		ip.logger.Debug().Err(err).Msg("parse failed")
		return nil, err
	}
	ip.logger.Debug().Str("origin", origin).Msg("parse complete")
	return ip.dom, nil
}

// Eval evaluates a single already-parsed statement fragment against the
// current interpreter state (§6 eval). Compiling source text into stmt is
// an external collaborator's job, same as Parse/AddPredefine. When
// noDebug is true, evaluation runs against a detached clone of the live
// scope so it can't mutate state a concurrent debugger session depends on
// (§5 reentrancy), and the source coordinate is restored afterward.
func (ip *Interpreter) Eval(stmt ast.Node, noDebug bool) (fields.Field, error) {
	if !noDebug {
		return ip.evalExpr(stmt)
	}
	prevScope, prevPos := ip.scope, ip.lastPos
	ip.scope = ip.scope.Clone()
	defer func() { ip.scope, ip.lastPos = prevScope, prevPos }()
	return ip.evalExpr(stmt)
}

// Dom returns the root of the most recent successful Parse, or nil if
// none has run yet.
func (ip *Interpreter) Dom() *fields.Dom { return ip.dom }
