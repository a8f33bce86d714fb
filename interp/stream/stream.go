// Package stream implements the interpreter's byte stream: a
// random-access, bit-addressable reader over an in-memory input, with
// endianness and bit-order state threaded through reads.
//
// The block/offset bookkeeping style is grounded on
// github.com/jtang613/gopdb's pkg/pdb/msf.StreamReader, which also
// provides sequential read access with an explicit cursor over a backing
// store, plus an io.Seeker-compatible Seek.
package stream

import (
	"errors"
	"fmt"
)

// Endian selects byte order for multi-byte numeric reads.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// BitOrder selects the direction bits are consumed within a byte when
// reading a sub-byte-width field.
type BitOrder int

const (
	LeftToRight BitOrder = iota // most significant bit first
	RightToLeft                 // least significant bit first
)

// ErrEOF is returned (wrapped with position context) when a read would
// exceed the input.
var ErrEOF = errors.New("stream: read past end of input")

// EOFError annotates ErrEOF with the offset and length of the failed read.
type EOFError struct {
	Offset int64
	Length int64
	Size   int64
}

func (e *EOFError) Error() string {
	return fmt.Sprintf("stream: read of %d bytes at offset %d exceeds input size %d", e.Length, e.Offset, e.Size)
}

func (e *EOFError) Unwrap() error { return ErrEOF }

// Stream is a bit-addressable cursor over an in-memory byte slice.
//
// bitPos is the absolute bit offset of the cursor. A byte-aligned read at
// bitPos requires bitPos%8 == 0; ReadBits never requires alignment.
type Stream struct {
	data     []byte
	bitPos   int64
	endian   Endian
	bitOrder BitOrder
	padded   bool
}

// New wraps data for bit/byte addressable reading. Defaults: little-endian,
// left-to-right bit order, padded bitfields (matching 010-editor-style
// templates' historical default).
func New(data []byte) *Stream {
	return &Stream{data: data, endian: LittleEndian, bitOrder: LeftToRight, padded: true}
}

// Len returns the total size of the backing input, in bytes.
func (s *Stream) Len() int64 { return int64(len(s.data)) }

// Tell returns the current cursor position, in bits.
func (s *Stream) Tell() int64 { return s.bitPos }

// TellBytes returns the current cursor position, in bytes, rounding down.
func (s *Stream) TellBytes() int64 { return s.bitPos / 8 }

// Seek moves the cursor to an absolute bit offset. Seeks past the end of
// the input are permitted (needed for union rewinds); the following read
// is still bounds-checked.
func (s *Stream) Seek(bitOffset int64) {
	s.bitPos = bitOffset
}

// SeekBytes moves the cursor to an absolute byte offset.
func (s *Stream) SeekBytes(byteOffset int64) { s.Seek(byteOffset * 8) }

func (s *Stream) SetEndian(e Endian)     { s.endian = e }
func (s *Stream) Endian() Endian         { return s.endian }
func (s *Stream) SetBitOrder(o BitOrder) { s.bitOrder = o }
func (s *Stream) BitOrder() BitOrder     { return s.bitOrder }
func (s *Stream) SetPadded(p bool)       { s.padded = p }
func (s *Stream) Padded() bool           { return s.padded }

// alignToByte advances the cursor to the next byte boundary when padded
// bitfields are enabled and the cursor currently sits mid-byte. Unpadded
// bitfield groups leave leftover bits to be consumed by the next read.
func (s *Stream) alignToByte() {
	if !s.padded {
		return
	}
	if rem := s.bitPos % 8; rem != 0 {
		s.bitPos += 8 - rem
	}
}

// ReadBytes reads n byte-aligned bytes, honoring the padded-bitfield
// alignment rule first.
func (s *Stream) ReadBytes(n int) ([]byte, error) {
	s.alignToByte()
	start := s.bitPos / 8
	end := start + int64(n)
	if end > int64(len(s.data)) {
		return nil, &EOFError{Offset: start, Length: int64(n), Size: int64(len(s.data))}
	}
	out := make([]byte, n)
	copy(out, s.data[start:end])
	s.bitPos = end * 8
	return out, nil
}

// PeekBytes reads n bytes without advancing the cursor.
func (s *Stream) PeekBytes(n int) ([]byte, error) {
	pos := s.bitPos
	out, err := s.ReadBytes(n)
	s.bitPos = pos
	return out, err
}

// ReadBits reads n bits (n may span byte boundaries and need not be
// byte-aligned) and returns them right-justified in a uint64, MSB-first
// in the value regardless of bit order (bit order only controls how bits
// are plucked out of each underlying byte).
func (s *Stream) ReadBits(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if n > 64 {
		return 0, fmt.Errorf("stream: cannot read %d bits at once (max 64)", n)
	}

	startBit := s.bitPos
	endBit := startBit + int64(n)
	if (endBit+7)/8 > int64(len(s.data)) {
		return 0, &EOFError{Offset: startBit / 8, Length: (endBit+7)/8 - startBit/8, Size: int64(len(s.data))}
	}

	var result uint64
	remaining := n
	bitPos := startBit
	for remaining > 0 {
		byteIdx := bitPos / 8
		bitInByte := int(bitPos % 8)
		b := s.data[byteIdx]

		var bitIdx int // index of the bit to pluck, 0 = MSB of the byte
		if s.bitOrder == LeftToRight {
			bitIdx = bitInByte
		} else {
			bitIdx = 7 - bitInByte
		}
		bit := (b >> uint(7-bitIdx)) & 1

		result = (result << 1) | uint64(bit)
		bitPos++
		remaining--
	}

	s.bitPos = endBit
	return result, nil
}

// ReadUint reads a width-bit (8/16/32/64) unsigned integer honoring
// endianness, byte-aligning first per the padded-bitfield policy.
func (s *Stream) ReadUint(widthBits int) (uint64, error) {
	if widthBits%8 != 0 {
		return s.ReadBits(widthBits)
	}
	n := widthBits / 8
	raw, err := s.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	if s.endian == BigEndian {
		for _, b := range raw {
			v = (v << 8) | uint64(b)
		}
	} else {
		for i := len(raw) - 1; i >= 0; i-- {
			v = (v << 8) | uint64(raw[i])
		}
	}
	return v, nil
}

// EncodeUint serializes v as a widthBits-wide unsigned integer in the
// stream's current endianness. Used for round-trip byte-identity tests
// (§8).
func (s *Stream) EncodeUint(v uint64, widthBits int) []byte {
	n := widthBits / 8
	out := make([]byte, n)
	if s.endian == BigEndian {
		for i := n - 1; i >= 0; i-- {
			out[i] = byte(v)
			v >>= 8
		}
	} else {
		for i := 0; i < n; i++ {
			out[i] = byte(v)
			v >>= 8
		}
	}
	return out
}

// ReadNulTerminated reads bytes up to (and consuming) a terminator of
// unitSize bytes that is all zero, e.g. unitSize=1 for a C string,
// unitSize=2 for a UTF-16 wide string. Returns the bytes before the
// terminator (not including it).
func (s *Stream) ReadNulTerminated(unitSize int) ([]byte, error) {
	s.alignToByte()
	start := s.bitPos / 8
	pos := start
	for {
		if pos+int64(unitSize) > int64(len(s.data)) {
			return nil, &EOFError{Offset: pos, Length: int64(unitSize), Size: int64(len(s.data))}
		}
		isZero := true
		for i := 0; i < unitSize; i++ {
			if s.data[pos+int64(i)] != 0 {
				isZero = false
				break
			}
		}
		pos += int64(unitSize)
		if isZero {
			break
		}
	}
	content := s.data[start : pos-int64(unitSize)]
	out := make([]byte, len(content))
	copy(out, content)
	s.bitPos = pos * 8
	return out, nil
}
