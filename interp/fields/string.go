package fields

import (
	"golang.org/x/text/encoding/unicode"

	"github.com/binarytmpl/bti/interp/stream"
)

// String is a NUL-terminated byte sequence (§3).
type String struct {
	base
	val []byte
}

func NewString() *String { return &String{} }

func (s *String) Clone() Field {
	cp := *s
	cp.base.parent = nil
	cp.base.frozen = false
	cp.val = append([]byte(nil), s.val...)
	return &cp
}

func (s *String) Parse(st *stream.Stream) error {
	raw, err := st.ReadNulTerminated(1)
	if err != nil {
		return err
	}
	s.val = raw
	s.width = int64(len(raw)+1) * 8
	return nil
}

func (s *String) Value() interface{} { return string(s.val) }

func (s *String) SetValue(v interface{}) error {
	if err := s.checkFrozen(); err != nil {
		return err
	}
	str, ok := v.(string)
	if !ok {
		return &TypeCoercionError{From: "non-string", To: "string"}
	}
	s.val = []byte(str)
	return nil
}

// WString is a NUL-terminated UTF-16 code-unit sequence (§3). Decoding
// goes through golang.org/x/text/encoding/unicode rather than hand-rolled
// UTF-16 arithmetic, mirroring the pack's DICOM reader
// (other_examples/.../opendcm__reader.go.go), which decodes wide string
// values via golang.org/x/text/encoding/*.
type WString struct {
	base
	val string
}

func NewWString() *WString { return &WString{} }

func (w *WString) Clone() Field {
	cp := *w
	cp.base.parent = nil
	cp.base.frozen = false
	return &cp
}

func wstringCodec(e stream.Endian) *unicode.Encoding {
	if e == stream.BigEndian {
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}

func (w *WString) Parse(st *stream.Stream) error {
	raw, err := st.ReadNulTerminated(2)
	if err != nil {
		return err
	}
	decoded, err := wstringCodec(st.Endian()).NewDecoder().Bytes(raw)
	if err != nil {
		return err
	}
	w.val = string(decoded)
	w.width = int64(len(raw)+2) * 8
	return nil
}

func (w *WString) Value() interface{} { return w.val }

func (w *WString) SetValue(v interface{}) error {
	if err := w.checkFrozen(); err != nil {
		return err
	}
	str, ok := v.(string)
	if !ok {
		return &TypeCoercionError{From: "non-string", To: "wstring"}
	}
	w.val = str
	return nil
}

// Encode returns the little/big-endian UTF-16 byte encoding of the
// string's current value, NUL-terminated. Used by the metadata pack
// engine and by round-trip tests.
func (w *WString) Encode(endian stream.Endian) ([]byte, error) {
	enc, err := wstringCodec(endian).NewEncoder().Bytes([]byte(w.val))
	if err != nil {
		return nil, err
	}
	return append(enc, 0, 0), nil
}
