// Package natives provides the bootstrap set of native functions that
// templates commonly assume are already defined: endianness switches, an
// early-exit signal, and a formatted trace print. It imports interp, never
// the reverse, so hosts opt in by calling Bootstrap explicitly rather than
// interp.New wiring any particular function set in automatically.
package natives

import (
	"fmt"

	"github.com/binarytmpl/bti/interp"
	"github.com/binarytmpl/bti/interp/fields"
	"github.com/binarytmpl/bti/interp/stream"
)

// Bootstrap registers the baseline native set on ip.
func Bootstrap(ip *interp.Interpreter) {
	ip.AddNative(&interp.Native{Name: "BigEndian", MinArgs: 0, MaxArgs: 0, Fn: bigEndian})
	ip.AddNative(&interp.Native{Name: "LittleEndian", MinArgs: 0, MaxArgs: 0, Fn: littleEndian})
	ip.AddNative(&interp.Native{Name: "SetBackColor", MinArgs: 1, MaxArgs: 1, Fn: setBackColor})
	ip.AddNative(&interp.Native{Name: "Exit", MinArgs: 0, MaxArgs: 1, Fn: exit})
	ip.AddNative(&interp.Native{Name: "Printf", MinArgs: 1, MaxArgs: -1, Fn: printf})
}

func bigEndian(_ []fields.Field, ctx *interp.CallContext) (fields.Field, error) {
	ctx.Stream.SetEndian(stream.BigEndian)
	return nil, nil
}

func littleEndian(_ []fields.Field, ctx *interp.CallContext) (fields.Field, error) {
	ctx.Stream.SetEndian(stream.LittleEndian)
	return nil, nil
}

// setBackColor is a display-only hint in the original dialect (highlight
// color for the field currently being parsed); there is no UI layer here
// to act on it, so it's kept as a recognized no-op rather than an
// unresolved-function error.
func setBackColor(_ []fields.Field, _ *interp.CallContext) (fields.Field, error) {
	return nil, nil
}

func exit(args []fields.Field, _ *interp.CallContext) (fields.Field, error) {
	msg := "Exit() called"
	if len(args) > 0 {
		if s, ok := args[0].Value().(string); ok {
			msg = s
		}
	}
	return nil, interp.NewInterpExit(msg)
}

func printf(args []fields.Field, ctx *interp.CallContext) (fields.Field, error) {
	format, _ := args[0].Value().(string)
	rest := make([]interface{}, 0, len(args)-1)
	for _, a := range args[1:] {
		rest = append(rest, a.Value())
	}
	fmt.Fprintf(ctx.Interp.Stdout(), format, rest...)
	return nil, nil
}
