package value

import (
	"strconv"
	"strings"

	"github.com/david-macharia/isc-radius/internal/errors"
)

// Ipv4 is a 4-byte IPv4 address.
type Ipv4 [4]byte

func (ip Ipv4) Kind() Kind    { return KindIpv4 }
func (ip Ipv4) Bytes() []byte { return append([]byte(nil), ip[:]...) }
func (ip Ipv4) String() string {
	return strconv.Itoa(int(ip[0])) + "." + strconv.Itoa(int(ip[1])) + "." +
		strconv.Itoa(int(ip[2])) + "." + strconv.Itoa(int(ip[3]))
}

// DecodeIpv4 requires exactly four bytes.
func DecodeIpv4(b []byte) (Ipv4, error) {
	if len(b) != 4 {
		return Ipv4{}, widthErr("decode ipaddr", len(b), 4)
	}
	var ip Ipv4
	copy(ip[:], b)
	return ip, nil
}

// NewIpv4 builds an Ipv4 from a dotted-quad string, requiring exactly
// four octets each in 0..255.
func NewIpv4(s string) (Ipv4, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return Ipv4{}, &errors.TypeError{
			Operation: "parse ipaddr",
			Value:     s,
			Message:   "expected dotted-quad with exactly 4 octets",
		}
	}
	var ip Ipv4
	for i, part := range parts {
		if part == "" {
			return Ipv4{}, &errors.TypeError{
				Operation: "parse ipaddr",
				Value:     s,
				Message:   "empty octet",
			}
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return Ipv4{}, &errors.RangeError{
				Operation: "parse ipaddr",
				Value:     part,
				Min:       0,
				Max:       255,
				Message:   "octet out of range",
			}
		}
		ip[i] = byte(n)
	}
	return ip, nil
}
