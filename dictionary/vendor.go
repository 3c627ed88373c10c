package dictionary

import "fmt"

// Vendor is an IANA Enterprise-ID plus the Vendor-Specific Attribute
// header widths that enterprise uses. TypeSize and LengthSize default
// to 1,1 (FreeRADIUS's default VSA framing); a VENDOR dictionary line
// may override them via a format=T,L tag.
type Vendor struct {
	Name       string
	ID         uint32
	TypeSize   int
	LengthSize int
}

func defaultVendor(name string, id uint32) *Vendor {
	return &Vendor{Name: name, ID: id, TypeSize: 1, LengthSize: 1}
}

func syntheticVendorName(id uint32) string {
	return fmt.Sprintf("Vendor%d", id)
}
