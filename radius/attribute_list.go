package radius

import (
	"github.com/david-macharia/isc-radius/dictionary"
	"github.com/david-macharia/isc-radius/internal/errors"
)

// AttributeList is an ordered, insertion-order-preserving sequence of
// Attribute. Insertion order is the wire order; there is no
// deduplication. A frozen list (produced by DecodeAttributeList) rejects
// all mutation.
type AttributeList struct {
	attrs  []*Attribute
	frozen bool
}

// NewAttributeList returns an empty, mutable list.
func NewAttributeList() *AttributeList {
	return &AttributeList{}
}

// Add appends attr. It fails if the list is frozen.
func (l *AttributeList) Add(attr *Attribute) error {
	if l.frozen {
		return &errors.TypeError{Operation: "attribute list add", Message: "list is frozen"}
	}
	l.attrs = append(l.attrs, attr)
	return nil
}

// AddValue resolves idOrName against dict, constructs an Attribute from
// native, and appends it.
func (l *AttributeList) AddValue(dict *dictionary.Dictionary, idOrName interface{}, native interface{}) error {
	attr, err := New(dict, idOrName, native)
	if err != nil {
		return err
	}
	return l.Add(attr)
}

// All returns the list contents in insertion order. The returned slice
// is a copy; mutating it does not affect the list.
func (l *AttributeList) All() []*Attribute {
	out := make([]*Attribute, len(l.attrs))
	copy(out, l.attrs)
	return out
}

// Len returns the number of attributes in the list.
func (l *AttributeList) Len() int { return len(l.attrs) }

// Has reports whether any attribute in the list resolves to entry.
func (l *AttributeList) Has(entry *dictionary.Entry) bool {
	for _, a := range l.attrs {
		if a.Entry == entry {
			return true
		}
	}
	return false
}

// Get returns the first attribute resolving to entry.
func (l *AttributeList) Get(entry *dictionary.Entry) (*Attribute, bool) {
	for _, a := range l.attrs {
		if a.Entry == entry {
			return a, true
		}
	}
	return nil, false
}

// GetAll returns every attribute resolving to entry, in insertion order.
func (l *AttributeList) GetAll(entry *dictionary.Entry) []*Attribute {
	var out []*Attribute
	for _, a := range l.attrs {
		if a.Entry == entry {
			out = append(out, a)
		}
	}
	return out
}

// Freeze marks the list immutable; subsequent Add/AddValue calls fail.
func (l *AttributeList) Freeze() { l.frozen = true }

// Frozen reports whether the list rejects mutation.
func (l *AttributeList) Frozen() bool { return l.frozen }

// EncodeTo appends the wire encoding of every attribute, in order, to
// dst and returns the extended slice.
func (l *AttributeList) EncodeTo(dst []byte, secret []byte, requestAuthenticator []byte) ([]byte, error) {
	for _, a := range l.attrs {
		b, err := a.Encode(secret, requestAuthenticator)
		if err != nil {
			return nil, err
		}
		dst = append(dst, b...)
	}
	return dst, nil
}

// DecodeAttributeList parses buf as a sequence of TLV attributes until
// exhausted, returning a frozen list. A trailing fragment shorter than
// 2 bytes is discarded silently, matching observed real-world leniency
// in deployed RADIUS stacks.
func DecodeAttributeList(dict *dictionary.Dictionary, buf []byte, secret []byte, requestAuthenticator []byte) (*AttributeList, error) {
	l := &AttributeList{}
	for len(buf) >= 2 {
		attr, n, err := DecodeAttribute(dict, buf, secret, requestAuthenticator)
		if err != nil {
			return nil, err
		}
		l.attrs = append(l.attrs, attr)
		buf = buf[n:]
	}
	l.frozen = true
	return l, nil
}
