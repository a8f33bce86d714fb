package interp

import (
	"errors"
	"fmt"

	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp/fields"
	"github.com/binarytmpl/bti/interp/stream"
)

// Error kind tags (§7). InterpError is a single wrapper type carrying one
// of these, mirroring yaegi's _error wrapper rather than a sprawling
// exported type per kind.
const (
	KindParseError                    = "ParseError"
	KindUnsupportedASTNode            = "UnsupportedASTNode"
	KindUnsupportedBinaryOperator     = "UnsupportedBinaryOperator"
	KindUnsupportedUnaryOperator      = "UnsupportedUnaryOperator"
	KindUnsupportedAssignmentOperator = "UnsupportedAssignmentOperator"
	KindUnsupportedConstantType       = "UnsupportedConstantType"
	KindUnresolvedID                  = "UnresolvedID"
	KindUnresolvedType                = "UnresolvedType"
	KindFieldFrozen                   = "FieldFrozen"
	KindStreamEOF                     = "StreamEOF"
	KindIndexError                    = "IndexError"
	KindMetadataError                 = "MetadataError"
	KindNativeCallError               = "NativeCallError"
	KindInterpExit                    = "InterpExit"
)

// InterpError is the single error type the interpreter raises, tagged by
// Kind and carrying the source coordinate nearest the failure.
type InterpError struct {
	Kind string
	Pos  ast.Coord
	Msg  string
	Err  error
}

func (e *InterpError) Error() string {
	if e.Pos.Line != 0 || e.Pos.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *InterpError) Unwrap() error { return e.Err }

// Is matches by Kind, letting callers write errors.Is(err, interp.ErrStreamEOF)
// without caring about position or message.
func (e *InterpError) Is(target error) bool {
	t, ok := target.(*InterpError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel errors for errors.Is comparisons against a Kind alone.
var (
	ErrParseError                    = &InterpError{Kind: KindParseError}
	ErrUnsupportedASTNode            = &InterpError{Kind: KindUnsupportedASTNode}
	ErrUnsupportedBinaryOperator     = &InterpError{Kind: KindUnsupportedBinaryOperator}
	ErrUnsupportedUnaryOperator      = &InterpError{Kind: KindUnsupportedUnaryOperator}
	ErrUnsupportedAssignmentOperator = &InterpError{Kind: KindUnsupportedAssignmentOperator}
	ErrUnsupportedConstantType       = &InterpError{Kind: KindUnsupportedConstantType}
	ErrUnresolvedID                  = &InterpError{Kind: KindUnresolvedID}
	ErrUnresolvedType                = &InterpError{Kind: KindUnresolvedType}
	ErrFieldFrozen                   = &InterpError{Kind: KindFieldFrozen}
	ErrStreamEOF                     = &InterpError{Kind: KindStreamEOF}
	ErrIndexError                    = &InterpError{Kind: KindIndexError}
	ErrMetadataError                 = &InterpError{Kind: KindMetadataError}
	ErrNativeCallError                = &InterpError{Kind: KindNativeCallError}
	ErrInterpExit                    = &InterpError{Kind: KindInterpExit}
)

func newErr(kind string, pos ast.Coord, format string, args ...interface{}) *InterpError {
	return &InterpError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func metaErr(pos ast.Coord, format string, args ...interface{}) *InterpError {
	return newErr(KindMetadataError, pos, format, args...)
}

// NewInterpExit builds the control-style error a native Exit() raises;
// Interpreter.Parse catches it and returns the partial DOM as success.
func NewInterpExit(msg string) error {
	return &InterpError{Kind: KindInterpExit, Msg: msg}
}

// wrapStreamErr annotates a stream.EOFError as a StreamEOF InterpError,
// passing through any other error unchanged.
func (ip *Interpreter) wrapStreamErr(err error) error {
	if err == nil {
		return nil
	}
	var eofErr *stream.EOFError
	if errors.As(err, &eofErr) {
		return &InterpError{Kind: KindStreamEOF, Pos: ip.lastPos, Msg: eofErr.Error(), Err: err}
	}
	return err
}

// ctrlKind distinguishes the three non-local control-flow signals from one
// another; there is no "none" kind (a nil *ctrlSignal means "no signal").
type ctrlKind int

const (
	ctrlReturn ctrlKind = iota
	ctrlBreak
	ctrlContinue
)

// ctrlSignal is a Return/Break/Continue propagating up the call stack. It
// is deliberately NOT an error: evalNode returns it alongside a nil error,
// and it is consumed by the nearest enclosing loop/switch/function call —
// never by Parse's caller (§7 "distinct from errors").
type ctrlSignal struct {
	kind  ctrlKind
	value fields.Field // set for ctrlReturn; nil otherwise
}
