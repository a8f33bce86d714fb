package fields

// Dom is the root of the parsed field tree: a synthetic Struct that also
// carries the identity of the parse session that produced it (§3: "Dom
// (root) — special Struct holding top-level declarations").
type Dom struct {
	*Struct
	// Origin identifies this parse session (see interp.Parse's "origin"
	// parameter); when the caller doesn't supply one, the interpreter
	// stamps a generated UUID here.
	Origin string
}

func NewDom(origin string) *Dom {
	return &Dom{Struct: NewStruct(), Origin: origin}
}
