package dictionary

import (
	"fmt"

	"github.com/david-macharia/isc-radius/value"
)

// Entry describes one RADIUS attribute: its name, its numeric id (the
// wire type code; always 26 for Vendor-Specific Attributes), its codec
// Type, and, for VSAs, the vendor it belongs to and the real codec
// (SubType) carried inside the vendor framing.
type Entry struct {
	Name    string
	ID      int
	SubID   int // 0 when not a VSA entry
	Vendor  *Vendor
	Type    value.Kind
	SubType value.Kind // only meaningful when Type == value.KindVSA
	Flags   map[string]int
	Values  map[string]int // enum name -> numeric value
	names   map[int]string // reverse of Values, built alongside it
}

// IsVSA reports whether e describes a vendor sub-attribute.
func (e *Entry) IsVSA() bool { return e.Vendor != nil }

// Encrypted reports whether e carries the RFC 2865 §5.2 encrypt=1 flag
// (User-Password obfuscation). Only encrypt=1 is supported; any other
// value is a configuration error the caller must reject.
func (e *Entry) Encrypted() (scheme int, ok bool) {
	scheme, ok = e.Flags["encrypt"]
	return scheme, ok
}

// ValueName returns the enum name for n if e declares one, for display
// purposes ("<name>: <enum> (<n>)").
func (e *Entry) ValueName(n int) (string, bool) {
	name, ok := e.names[n]
	return name, ok
}

func newEntry(name string, id int, typ value.Kind) *Entry {
	return &Entry{Name: name, ID: id, Type: typ, Flags: map[string]int{}}
}

func (e *Entry) addValue(name string, n int) {
	if e.Values == nil {
		e.Values = map[string]int{}
		e.names = map[int]string{}
	}
	e.Values[name] = n
	e.names[n] = name
}

func unknownAttributeName(id int) string {
	return fmt.Sprintf("Unknown-Attribute-%d", id)
}

func unknownVendorAttributeName(vendorName string, subID int) string {
	return fmt.Sprintf("%s-Unknown-Attribute-%d", vendorName, subID)
}
