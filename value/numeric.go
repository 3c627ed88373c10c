package value

import (
	"strconv"

	"github.com/david-macharia/isc-radius/internal/errors"
)

// Byte is an unsigned 8-bit value.
type Byte uint8

func (b Byte) Kind() Kind     { return KindByte }
func (b Byte) Bytes() []byte  { return []byte{byte(b)} }
func (b Byte) String() string { return strconv.FormatUint(uint64(b), 10) }

// DecodeByte requires exactly one byte.
func DecodeByte(b []byte) (Byte, error) {
	if len(b) != 1 {
		return 0, widthErr("decode byte", len(b), 1)
	}
	return Byte(b[0]), nil
}

// NewByte is the fromValue counterpart of DecodeByte.
func NewByte(n uint8) Byte { return Byte(n) }

// Short is an unsigned 16-bit big-endian value.
type Short uint16

func (s Short) Kind() Kind     { return KindShort }
func (s Short) Bytes() []byte  { return []byte{byte(s >> 8), byte(s)} }
func (s Short) String() string { return strconv.FormatUint(uint64(s), 10) }

// DecodeShort requires exactly two bytes, big-endian.
func DecodeShort(b []byte) (Short, error) {
	if len(b) != 2 {
		return 0, widthErr("decode short", len(b), 2)
	}
	return Short(uint16(b[0])<<8 | uint16(b[1])), nil
}

// NewShort is the fromValue counterpart of DecodeShort.
func NewShort(n uint16) Short { return Short(n) }

// Integer is an unsigned 32-bit big-endian value.
type Integer uint32

func (i Integer) Kind() Kind { return KindInteger }
func (i Integer) Bytes() []byte {
	return []byte{byte(i >> 24), byte(i >> 16), byte(i >> 8), byte(i)}
}
func (i Integer) String() string { return strconv.FormatUint(uint64(i), 10) }

// DecodeInteger requires exactly four bytes, big-endian.
func DecodeInteger(b []byte) (Integer, error) {
	if len(b) != 4 {
		return 0, widthErr("decode integer", len(b), 4)
	}
	return Integer(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])), nil
}

// NewInteger is the fromValue counterpart of DecodeInteger.
func NewInteger(n uint32) Integer { return Integer(n) }

func widthErr(op string, got, want int) error {
	return &errors.RangeError{
		Operation: op,
		Value:     got,
		Min:       want,
		Max:       want,
		Message:   "fixed-width numeric attribute has wrong buffer length",
	}
}
