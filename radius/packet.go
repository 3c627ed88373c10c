package radius

import (
	"crypto/rand"

	"github.com/david-macharia/isc-radius/dictionary"
	"github.com/david-macharia/isc-radius/internal/errors"
)

// scratchBufferSize is the initial capacity of the buffer ToWire
// encodes into: RFC 2865 caps a packet at 4096 bytes, so a packet of
// legal size is encoded without reallocation. ToWire does not reject a
// larger attribute stream; the buffer grows as attributes are appended.
const scratchBufferSize = 4096

// Packet is a RADIUS header plus an AttributeList. A Packet produced by
// DecodePacket is frozen: Code and Authenticator are fixed at the
// values read off the wire. A Packet built via NewPacket is mutable
// until the caller is done constructing it for ToWire.
type Packet struct {
	code          Code
	identifier    uint8
	authenticator [16]byte
	attributes    *AttributeList
	frozen        bool
}

// NewPacket constructs an outbound packet. identifier must be in
// 0..255; attributes may be nil (an empty list is used).
func NewPacket(codeVal interface{}, identifier int, attributes *AttributeList) (*Packet, error) {
	code, err := ParseCode(codeVal)
	if err != nil {
		return nil, err
	}
	if identifier < 0 || identifier > 255 {
		return nil, &errors.RangeError{Operation: "new packet", Value: identifier, Min: 0, Max: 255, Message: "identifier out of range"}
	}
	if attributes == nil {
		attributes = NewAttributeList()
	}
	return &Packet{code: code, identifier: uint8(identifier), attributes: attributes}, nil
}

func (p *Packet) Code() Code                   { return p.code }
func (p *Packet) Identifier() uint8            { return p.identifier }
func (p *Packet) Authenticator() [16]byte      { return p.authenticator }
func (p *Packet) Attributes() *AttributeList   { return p.attributes }
func (p *Packet) Frozen() bool                 { return p.frozen }

// SetAuthenticator copies b (which must be exactly 16 bytes) into the
// packet's authenticator field. It fails on a frozen (decoded) packet.
func (p *Packet) SetAuthenticator(b []byte) error {
	if p.frozen {
		return &errors.TypeError{Operation: "set authenticator", Message: "packet is frozen"}
	}
	if len(b) != 16 {
		return &errors.RangeError{Operation: "set authenticator", Value: len(b), Min: 16, Max: 16, Message: "authenticator must be exactly 16 bytes"}
	}
	copy(p.authenticator[:], b)
	return nil
}

// Has reports whether the packet carries any attribute resolving to
// entry.
func (p *Packet) Has(entry *dictionary.Entry) bool { return p.attributes.Has(entry) }

// Get returns the first attribute resolving to entry.
func (p *Packet) Get(entry *dictionary.Entry) (*Attribute, bool) { return p.attributes.Get(entry) }

// GetAll returns every attribute resolving to entry, in insertion order.
func (p *Packet) GetAll(entry *dictionary.Entry) []*Attribute { return p.attributes.GetAll(entry) }

// RandomAuthenticator draws 16 bytes from a CSPRNG, suitable for a
// fresh request authenticator.
func RandomAuthenticator() ([16]byte, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return b, &errors.TransportError{Operation: "generate authenticator", Err: err}
	}
	return b, nil
}

// ToWire serializes the packet. For a request (isResponse == false)
// with an all-zero authenticator, a fresh random authenticator is
// generated and stored on the packet before encoding. For a response
// (isResponse == true), the packet's current authenticator is treated
// as the associated request's authenticator: it is written into the
// header for the duration of attribute encoding (needed for
// encrypt=1 attributes and the response-authenticator hash) and then
// the header's authenticator field is overwritten with
// MD5(header-with-request-authenticator || attributes || secret)
// before the bytes are returned. The packet's own Authenticator field
// is left holding the request authenticator, not the response one.
func (p *Packet) ToWire(secret []byte, isResponse bool) ([]byte, error) {
	if !isResponse && p.authenticator == ([16]byte{}) {
		auth, err := RandomAuthenticator()
		if err != nil {
			return nil, err
		}
		p.authenticator = auth
	}

	buf := make([]byte, 0, scratchBufferSize)
	buf = append(buf, byte(p.code), p.identifier, 0, 0)
	buf = append(buf, p.authenticator[:]...)

	buf, err := p.attributes.EncodeTo(buf, secret, p.authenticator[:])
	if err != nil {
		return nil, err
	}

	total := len(buf)
	buf[2] = byte(total >> 8)
	buf[3] = byte(total)

	if isResponse {
		sum := md5Sum(buf, secret)
		copy(buf[4:20], sum)
	}

	return buf, nil
}

// DecodePacket parses a raw datagram into a frozen Packet. The request
// authenticator is not verified at this layer; server handlers trust
// the UDP boundary, and client-side verification happens via
// VerifyResponseAuthenticator.
func DecodePacket(dict *dictionary.Dictionary, buf []byte, secret []byte) (*Packet, error) {
	if len(buf) < 20 {
		return nil, &errors.ParseError{Operation: "decode packet", Message: "buffer shorter than 20-byte header"}
	}
	declared := int(buf[2])<<8 | int(buf[3])
	if declared > len(buf) {
		return nil, &errors.ParseError{Operation: "decode packet", Message: "declared length exceeds buffer"}
	}
	if declared < 20 {
		return nil, &errors.ParseError{Operation: "decode packet", Message: "declared length shorter than 20-byte header"}
	}

	code, err := ParseCode(int(buf[0]))
	if err != nil {
		return nil, err
	}

	p := &Packet{code: code, identifier: buf[1], frozen: true}
	copy(p.authenticator[:], buf[4:20])

	attrs, err := DecodeAttributeList(dict, buf[20:declared], secret, p.authenticator[:])
	if err != nil {
		return nil, err
	}
	p.attributes = attrs
	return p, nil
}

// VerifyResponseAuthenticator checks that resp's authenticator equals
// MD5(resp-header-with-request-authenticator || resp-attributes ||
// secret), given the authenticator of the request resp answers.
func VerifyResponseAuthenticator(resp *Packet, secret []byte, requestAuthenticator [16]byte) (bool, error) {
	buf, err := rebuildHeaderForVerification(resp, secret, requestAuthenticator)
	if err != nil {
		return false, err
	}
	expected := md5Sum(buf, secret)
	return constantTimeEqual(expected, resp.authenticator[:]), nil
}

// VerifyAccountingRequestAuthenticator checks the RFC 2866 §4.1
// authenticator for an Accounting-Request: MD5(code+id+len+16 zero
// bytes || attributes || secret). Computing/checking it is offered as
// a helper; the engine itself does not call this automatically, since
// accounting authenticator validation is out of scope for the core
// transaction engine.
func (p *Packet) VerifyAccountingRequestAuthenticator(secret []byte) (bool, error) {
	buf := []byte{byte(p.code), p.identifier, 0, 0}
	buf = append(buf, make([]byte, 16)...)
	var err error
	buf, err = p.attributes.EncodeTo(buf, secret, p.authenticator[:])
	if err != nil {
		return false, err
	}
	total := len(buf)
	buf[2] = byte(total >> 8)
	buf[3] = byte(total)
	expected := md5Sum(buf, secret)
	return constantTimeEqual(expected, p.authenticator[:]), nil
}

func rebuildHeaderForVerification(p *Packet, secret []byte, requestAuthenticator [16]byte) ([]byte, error) {
	buf := []byte{byte(p.code), p.identifier, 0, 0}
	buf = append(buf, requestAuthenticator[:]...)
	buf, err := p.attributes.EncodeTo(buf, secret, requestAuthenticator[:])
	if err != nil {
		return nil, err
	}
	total := len(buf)
	buf[2] = byte(total >> 8)
	buf[3] = byte(total)
	return buf, nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
