package value

import (
	"unicode/utf8"

	"github.com/david-macharia/isc-radius/internal/errors"
)

// StringMinLen and StringMaxLen match OctetsMinLen/OctetsMaxLen: String
// and Octets share the same on-wire length budget, just a different
// presentation.
const (
	StringMinLen = 1
	StringMaxLen = 253
)

// String is a UTF-8 text value.
type String string

func (s String) Kind() Kind     { return KindString }
func (s String) Bytes() []byte  { return []byte(s) }
func (s String) String() string { return string(s) }

// DecodeString validates b as UTF-8 within bounds and wraps it.
func DecodeString(b []byte) (String, error) {
	if len(b) < StringMinLen || len(b) > StringMaxLen {
		return "", &errors.RangeError{
			Operation: "decode string",
			Value:     len(b),
			Min:       StringMinLen,
			Max:       StringMaxLen,
			Message:   "string length out of range",
		}
	}
	if !utf8.Valid(b) {
		return "", &errors.TypeError{
			Operation: "decode string",
			Value:     b,
			Message:   "not valid UTF-8",
		}
	}
	return String(b), nil
}

// NewString is the fromValue counterpart of DecodeString.
func NewString(s string) (String, error) {
	return DecodeString([]byte(s))
}
