package stream_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binarytmpl/bti/interp/stream"
)

func TestReadUintEndianness(t *testing.T) {
	s := stream.New([]byte{0x01, 0x02, 0x03, 0x04})
	s.SetEndian(stream.LittleEndian)
	v, err := s.ReadUint(32)
	require.NoError(t, err)
	require.EqualValues(t, 0x04030201, v)

	s = stream.New([]byte{0x01, 0x02, 0x03, 0x04})
	s.SetEndian(stream.BigEndian)
	v, err = s.ReadUint(32)
	require.NoError(t, err)
	require.EqualValues(t, 0x01020304, v)
}

func TestReadUintPastEndIsEOFError(t *testing.T) {
	s := stream.New([]byte{0x01})
	_, err := s.ReadUint(32)
	require.Error(t, err)
	var eof *stream.EOFError
	require.True(t, errors.As(err, &eof))
	require.True(t, errors.Is(err, stream.ErrEOF))
}

func TestReadBitsLeftToRightMSBFirst(t *testing.T) {
	// 0b10110000
	s := stream.New([]byte{0b1011_0000})
	v, err := s.ReadBits(4)
	require.NoError(t, err)
	require.EqualValues(t, 0b1011, v)
}

func TestReadBitsRightToLeft(t *testing.T) {
	s := stream.New([]byte{0b1011_0000})
	s.SetBitOrder(stream.RightToLeft)
	v, err := s.ReadBits(4)
	require.NoError(t, err)
	// Right-to-left plucks LSB-first within the byte: bits 0,1,2,3 of the
	// byte (0,0,0,0) assembled MSB-first into the result.
	require.EqualValues(t, 0b0000, v)
}

func TestPaddedBitfieldAlignsToByteBoundary(t *testing.T) {
	s := stream.New([]byte{0xFF, 0xAB, 0xCD})
	s.SetPadded(true)
	_, err := s.ReadBits(3)
	require.NoError(t, err)
	b, err := s.ReadBytes(1)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAB}, b)
}

func TestUnpaddedBitfieldDoesNotAlign(t *testing.T) {
	s := stream.New([]byte{0b1110_0000, 0xFF})
	s.SetPadded(false)
	_, err := s.ReadBits(3)
	require.NoError(t, err)
	v, err := s.ReadBits(5)
	require.NoError(t, err)
	require.EqualValues(t, 0, v)
}

func TestSeekAllowsUnionRewind(t *testing.T) {
	s := stream.New([]byte{0x01, 0x02, 0x03, 0x04})
	start := s.Tell()
	_, err := s.ReadUint(32)
	require.NoError(t, err)
	s.Seek(start)
	require.Equal(t, start, s.Tell())
	v, err := s.ReadUint(8)
	require.NoError(t, err)
	require.EqualValues(t, 0x01, v)
}

func TestReadNulTerminatedStopsBeforeTerminator(t *testing.T) {
	s := stream.New([]byte{'h', 'i', 0x00, 'x'})
	b, err := s.ReadNulTerminated(1)
	require.NoError(t, err)
	require.Equal(t, "hi", string(b))
	require.Equal(t, int64(3*8), s.Tell())
}

func TestEncodeUintRoundTrips(t *testing.T) {
	s := stream.New(nil)
	s.SetEndian(stream.BigEndian)
	enc := s.EncodeUint(0x01020304, 32)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, enc)

	s2 := stream.New(enc)
	s2.SetEndian(stream.BigEndian)
	v, err := s2.ReadUint(32)
	require.NoError(t, err)
	require.EqualValues(t, 0x01020304, v)
}
