package value

import "github.com/david-macharia/isc-radius/internal/errors"

// OctetsMinLen and OctetsMaxLen bound the RFC 2865 attribute body: a
// one-byte length field always leaves room for a 2-byte header, so the
// largest body a standard attribute can carry is 253 bytes.
const (
	OctetsMinLen = 1
	OctetsMaxLen = 253
)

// Octets is an uninterpreted byte string.
type Octets []byte

func (o Octets) Kind() Kind   { return KindOctets }
func (o Octets) Bytes() []byte { return append([]byte(nil), o...) }
func (o Octets) String() string {
	return formatHex(o)
}

// DecodeOctets copies b (callers may reuse their buffer) into a new
// Octets value, rejecting lengths outside [OctetsMinLen, OctetsMaxLen].
func DecodeOctets(b []byte) (Octets, error) {
	if len(b) < OctetsMinLen || len(b) > OctetsMaxLen {
		return nil, &errors.RangeError{
			Operation: "decode octets",
			Value:     len(b),
			Min:       OctetsMinLen,
			Max:       OctetsMaxLen,
			Message:   "octets length out of range",
		}
	}
	return Octets(append([]byte(nil), b...)), nil
}

// NewOctets is the fromValue counterpart of DecodeOctets.
func NewOctets(b []byte) (Octets, error) {
	return DecodeOctets(b)
}

func formatHex(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0f]
	}
	return string(out)
}
