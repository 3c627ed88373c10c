package dictionary

import (
	"strings"
	"sync"

	"github.com/david-macharia/isc-radius/internal/errors"
	"github.com/david-macharia/isc-radius/value"
)

// Dictionary is a thread-safe registry of Vendors and Entrys, loaded
// from FreeRADIUS-style dictionary text. Lookups are idempotent: the
// same id, name, or (vendor, sub-id) pair returns the same *Entry or
// *Vendor for the lifetime of the Dictionary, including ids synthesized
// on first unknown lookup.
//
// A Dictionary is not a process-wide singleton; callers construct one
// per server or client so tests and multi-tenant programs don't share
// mutable global state.
type Dictionary struct {
	mu            sync.RWMutex
	byID          map[int]*Entry
	byName        map[string]*Entry
	vendorsByID   map[uint32]*Vendor
	vendorsByName map[string]*Vendor
	vsa           map[uint32]map[int]*Entry
}

// New returns an empty Dictionary.
func New() *Dictionary {
	return &Dictionary{
		byID:          map[int]*Entry{},
		byName:        map[string]*Entry{},
		vendorsByID:   map[uint32]*Vendor{},
		vendorsByName: map[string]*Vendor{},
		vsa:           map[uint32]map[int]*Entry{},
	}
}

// Get resolves an attribute descriptor by numeric id (int) or by name
// (string), synthesizing an Unknown-Attribute-<id> entry the first time
// an unregistered numeric id in 1..255 is looked up.
func (d *Dictionary) Get(idOrName interface{}) (*Entry, error) {
	switch v := idOrName.(type) {
	case int:
		return d.GetByID(v)
	case string:
		return d.GetByName(v)
	default:
		return nil, &errors.TypeError{
			Operation: "dictionary get",
			Value:     idOrName,
			Message:   "key must be an integer or string",
		}
	}
}

// GetByID resolves a global (non-vendor) attribute by its numeric id.
func (d *Dictionary) GetByID(id int) (*Entry, error) {
	if id < 1 || id > 255 {
		return nil, &errors.RangeError{
			Operation: "dictionary get",
			Value:     id,
			Min:       1,
			Max:       255,
			Message:   "attribute id out of range",
		}
	}

	d.mu.RLock()
	e, ok := d.byID[id]
	d.mu.RUnlock()
	if ok {
		return e, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.byID[id]; ok {
		return e, nil
	}
	e = newEntry(unknownAttributeName(id), id, value.KindOctets)
	d.byID[id] = e
	d.byName[strings.ToLower(e.Name)] = e
	return e, nil
}

// GetByName resolves a global attribute by case-insensitive name.
// Unknown names are never synthesized (the spec only synthesizes by
// numeric id), so an unregistered name fails.
func (d *Dictionary) GetByName(name string) (*Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.byName[strings.ToLower(name)]
	if !ok {
		return nil, &errors.RangeError{
			Operation: "dictionary get",
			Value:     name,
			Message:   "unknown attribute name",
		}
	}
	return e, nil
}

// VendorByID resolves a Vendor by its Enterprise-ID, synthesizing
// Vendor<id> with default header widths (1,1) on first lookup.
func (d *Dictionary) VendorByID(id uint32) *Vendor {
	d.mu.RLock()
	v, ok := d.vendorsByID[id]
	d.mu.RUnlock()
	if ok {
		return v
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := d.vendorsByID[id]; ok {
		return v
	}
	v = defaultVendor(syntheticVendorName(id), id)
	d.vendorsByID[id] = v
	d.vendorsByName[strings.ToLower(v.Name)] = v
	return v
}

// VendorByName resolves a previously-declared Vendor by name. Unlike
// VendorByID, an unknown name is not synthesized.
func (d *Dictionary) VendorByName(name string) (*Vendor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.vendorsByName[strings.ToLower(name)]
	return v, ok
}

// VSA resolves a vendor sub-attribute by (vendor id, sub id),
// synthesizing <Vendor>-Unknown-Attribute-<subID> of type Octets on
// first lookup for an unregistered sub id.
func (d *Dictionary) VSA(vendorID uint32, subID int) (*Entry, error) {
	vendor := d.VendorByID(vendorID)

	d.mu.RLock()
	table := d.vsa[vendorID]
	var e *Entry
	if table != nil {
		e = table[subID]
	}
	d.mu.RUnlock()
	if e != nil {
		return e, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if table := d.vsa[vendorID]; table != nil {
		if e, ok := table[subID]; ok {
			return e, nil
		}
	}
	e = newEntry(unknownVendorAttributeName(vendor.Name, subID), 26, value.KindOctets)
	e.SubID = subID
	e.Vendor = vendor
	e.SubType = value.KindOctets
	if d.vsa[vendorID] == nil {
		d.vsa[vendorID] = map[int]*Entry{}
	}
	d.vsa[vendorID][subID] = e
	return e, nil
}
