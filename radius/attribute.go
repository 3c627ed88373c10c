package radius

import (
	"time"

	"github.com/david-macharia/isc-radius/dictionary"
	"github.com/david-macharia/isc-radius/internal/errors"
	"github.com/david-macharia/isc-radius/value"
)

// Attribute pairs a resolved dictionary.Entry with its decoded Value.
// Both fields are fixed at construction: Attribute is immutable.
type Attribute struct {
	Entry *dictionary.Entry
	Value value.Value
}

// codecType returns the codec an Attribute's Value actually uses: the
// entry's own Type, or its SubType when the entry is a VSA descriptor
// (the outer Type there is always value.KindVSA, a framing marker, not
// a codec).
func codecType(e *dictionary.Entry) value.Kind {
	if e.Type == value.KindVSA && e.IsVSA() {
		return e.SubType
	}
	return e.Type
}

// New constructs an Attribute by resolving idOrName against dict and
// building its Value. A []byte is decoded as the attribute's wire body
// by its codec, for any type. Otherwise the value is a native Go
// representation: string for String/Ipv4(dotted-quad)/Octets(as
// string), an integer type (int/uint8/uint16/uint32/uint64) for
// Byte/Short/Integer, or time.Time for Date.
func New(dict *dictionary.Dictionary, idOrName interface{}, native interface{}) (*Attribute, error) {
	e, err := dict.Get(idOrName)
	if err != nil {
		return nil, err
	}
	v, err := valueFromNative(codecType(e), native)
	if err != nil {
		return nil, err
	}
	return &Attribute{Entry: e, Value: v}, nil
}

func valueFromNative(typ value.Kind, native interface{}) (value.Value, error) {
	if b, ok := native.([]byte); ok {
		// A zero Entry carries no encrypt flag, so only the codec runs.
		return decodeBody(&dictionary.Entry{}, typ, b, nil, nil)
	}
	switch typ {
	case value.KindString:
		s, ok := native.(string)
		if !ok {
			return nil, typeMismatch("string", native)
		}
		return value.NewString(s)
	case value.KindOctets:
		switch v := native.(type) {
		case []byte:
			return value.NewOctets(v)
		case string:
			return value.NewOctets([]byte(v))
		default:
			return nil, typeMismatch("[]byte", native)
		}
	case value.KindByte:
		n, err := asUint(native, 0xff)
		if err != nil {
			return nil, err
		}
		return value.NewByte(uint8(n)), nil
	case value.KindShort:
		n, err := asUint(native, 0xffff)
		if err != nil {
			return nil, err
		}
		return value.NewShort(uint16(n)), nil
	case value.KindInteger:
		n, err := asUint(native, 0xffffffff)
		if err != nil {
			return nil, err
		}
		return value.NewInteger(uint32(n)), nil
	case value.KindIpv4:
		s, ok := native.(string)
		if !ok {
			return nil, typeMismatch("dotted-quad string", native)
		}
		return value.NewIpv4(s)
	case value.KindDate:
		t, ok := native.(time.Time)
		if !ok {
			return nil, typeMismatch("time.Time", native)
		}
		return value.NewDate(t), nil
	default:
		return nil, &errors.TypeError{Operation: "build attribute value", Value: native, Message: "unsupported codec type"}
	}
}

func asUint(native interface{}, max uint64) (uint64, error) {
	var n int64
	switch v := native.(type) {
	case int:
		n = int64(v)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		n = int64(v)
	default:
		return 0, typeMismatch("integer", native)
	}
	if n < 0 || uint64(n) > max {
		return 0, &errors.RangeError{Operation: "build attribute value", Value: n, Max: int(max), Message: "numeric value out of range for attribute width"}
	}
	return uint64(n), nil
}

func typeMismatch(want string, got interface{}) error {
	return &errors.TypeError{Operation: "build attribute value", Value: got, Message: "expected " + want}
}

// String renders "<name>: <value>", or "<name>: <enum-name> (<n>)" when
// the descriptor declares an enum containing the attribute's numeric
// value.
func (a *Attribute) String() string {
	if n, ok := numericOf(a.Value); ok {
		if name, ok := a.Entry.ValueName(n); ok {
			return a.Entry.Name + ": " + name + " (" + a.Value.String() + ")"
		}
	}
	return a.Entry.Name + ": " + a.Value.String()
}

func numericOf(v value.Value) (int, bool) {
	switch x := v.(type) {
	case value.Byte:
		return int(x), true
	case value.Short:
		return int(x), true
	case value.Integer:
		return int(x), true
	default:
		return 0, false
	}
}

// Encode produces the attribute's TLV wire form: standard
// id/length/data framing, or the 26/length/vendor_id/sub_id[/sub_len]/data
// framing for a VSA, applying RFC 2865 §5.2 User-Password obfuscation
// first when the descriptor carries encrypt=1.
func (a *Attribute) Encode(secret []byte, requestAuthenticator []byte) ([]byte, error) {
	data := a.Value.Bytes()

	if scheme, ok := a.Entry.Encrypted(); ok {
		if scheme != userPasswordEncryptScheme {
			return nil, &errors.CryptoError{Operation: "encode attribute", Message: "unsupported encryption scheme"}
		}
		data = encryptUserPassword(data, secret, requestAuthenticator)
	}

	if !a.Entry.IsVSA() {
		total := 2 + len(data)
		if total > 255 {
			return nil, &errors.RangeError{Operation: "encode attribute", Value: total, Max: 255, Message: "encoded attribute overflows 255-byte TLV"}
		}
		out := make([]byte, total)
		out[0] = byte(a.Entry.ID)
		out[1] = byte(total)
		copy(out[2:], data)
		return out, nil
	}

	vendor := a.Entry.Vendor
	subLen := len(data)
	if subLen > 255 {
		subLen = 255
	}
	body := make([]byte, 0, 4+vendor.TypeSize+vendor.LengthSize+len(data))
	body = appendUintBE(body, uint64(vendor.ID), 4)
	body = appendUintBE(body, uint64(a.Entry.SubID), vendor.TypeSize)
	if vendor.LengthSize > 0 {
		body = appendUintBE(body, uint64(subLen), vendor.LengthSize)
	}
	body = append(body, data...)

	total := 2 + len(body)
	if total > 255 {
		return nil, &errors.RangeError{Operation: "encode attribute", Value: total, Max: 255, Message: "encoded VSA overflows 255-byte TLV"}
	}
	out := make([]byte, total)
	out[0] = 26
	out[1] = byte(total)
	copy(out[2:], body)
	return out, nil
}

func appendUintBE(dst []byte, v uint64, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(v>>(8*uint(i))))
	}
	return dst
}

// DecodeAttribute reads one TLV entry from the front of buf, resolving
// its descriptor against dict and unwrapping VSA framing and
// encrypt=1 obfuscation as needed. It returns the parsed Attribute and
// the number of bytes it consumed from buf.
func DecodeAttribute(dict *dictionary.Dictionary, buf []byte, secret []byte, requestAuthenticator []byte) (*Attribute, int, error) {
	if len(buf) < 2 {
		return nil, 0, &errors.ParseError{Operation: "decode attribute", Message: "fewer than 2 bytes remaining"}
	}
	id := int(buf[0])
	length := int(buf[1])
	if length < 2 || length > len(buf) {
		return nil, 0, &errors.ParseError{Operation: "decode attribute", Message: "declared length out of range"}
	}
	body := buf[2:length]

	if id == 26 {
		attr, err := decodeVSA(dict, body, secret, requestAuthenticator)
		if err != nil {
			return nil, 0, err
		}
		return attr, length, nil
	}

	e, err := dict.GetByID(id)
	if err != nil {
		return nil, 0, err
	}

	v, err := decodeBody(e, codecType(e), body, secret, requestAuthenticator)
	if err != nil {
		return nil, 0, err
	}
	return &Attribute{Entry: e, Value: v}, length, nil
}

func decodeVSA(dict *dictionary.Dictionary, body []byte, secret []byte, requestAuthenticator []byte) (*Attribute, error) {
	if len(body) < 4 {
		return nil, &errors.ParseError{Operation: "decode VSA", Message: "body shorter than vendor id field"}
	}
	vendorID := uint32(body[0])<<24 | uint32(body[1])<<16 | uint32(body[2])<<8 | uint32(body[3])
	vendor := dict.VendorByID(vendorID)

	minLen := 4 + vendor.TypeSize + vendor.LengthSize
	if len(body) < minLen {
		return nil, &errors.ParseError{Operation: "decode VSA", Message: "body shorter than vendor header"}
	}

	offset := 4
	subID := int(readUintBE(body[offset : offset+vendor.TypeSize]))
	offset += vendor.TypeSize

	var subLen int
	if vendor.LengthSize > 0 {
		subLen = int(readUintBE(body[offset : offset+vendor.LengthSize]))
		offset += vendor.LengthSize
	} else {
		subLen = len(body) - offset
	}

	effectiveEnd := offset + subLen
	if subLen < 0 || effectiveEnd > len(body) {
		effectiveEnd = len(body)
	}
	effective := body[offset:effectiveEnd]

	e, err := dict.VSA(vendorID, subID)
	if err != nil {
		return nil, err
	}

	v, err := decodeBody(e, codecType(e), effective, secret, requestAuthenticator)
	if err != nil {
		return nil, err
	}
	return &Attribute{Entry: e, Value: v}, nil
}

func readUintBE(b []byte) uint64 {
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	return n
}

func decodeBody(e *dictionary.Entry, typ value.Kind, body []byte, secret []byte, requestAuthenticator []byte) (value.Value, error) {
	if scheme, ok := e.Encrypted(); ok {
		if scheme != userPasswordEncryptScheme {
			return nil, &errors.CryptoError{Operation: "decode attribute", Message: "unsupported encryption scheme"}
		}
		plain, err := decryptUserPassword(body, secret, requestAuthenticator)
		if err != nil {
			return nil, err
		}
		body = plain
	}

	switch typ {
	case value.KindString:
		return value.DecodeString(body)
	case value.KindOctets:
		return value.DecodeOctets(body)
	case value.KindByte:
		return value.DecodeByte(body)
	case value.KindShort:
		return value.DecodeShort(body)
	case value.KindInteger:
		return value.DecodeInteger(body)
	case value.KindIpv4:
		return value.DecodeIpv4(body)
	case value.KindDate:
		return value.DecodeDate(body)
	default:
		return value.DecodeOctets(body)
	}
}
