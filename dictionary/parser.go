package dictionary

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/david-macharia/isc-radius/internal/errors"
	"github.com/david-macharia/isc-radius/value"
)

//go:embed embedded
var embeddedFS embed.FS

const embeddedDefaultPath = "embedded/default.dictionary"

// Load parses the dictionary file at path (and any $INCLUDE it
// references) into d. A relative path that cannot be opened directly
// falls back to the process-embedded dictionary directory; an absolute
// path is always used verbatim.
func (d *Dictionary) Load(path string) error {
	if filepath.IsAbs(path) {
		f, err := os.Open(path)
		if err != nil {
			return &errors.ParseError{Operation: "load dictionary", Message: err.Error(), Trace: []string{path}}
		}
		defer f.Close()
		return d.parse(f, path, nil)
	}

	if f, err := os.Open(path); err == nil {
		defer f.Close()
		return d.parse(f, path, nil)
	}

	f, err := embeddedFS.Open(filepath.ToSlash(filepath.Join("embedded", path)))
	if err != nil {
		return &errors.ParseError{Operation: "load dictionary", Message: fmt.Sprintf("cannot open %q (not found locally or embedded): %v", path, err), Trace: []string{path}}
	}
	defer f.Close()
	return d.parse(f, path, nil)
}

// LoadDefault loads the dictionary shipped inside the binary: the
// standard RFC 2865/2866 attribute set plus a handful of well-known
// vendors, enough to decode real-world Access-Request/Accounting-Request
// traffic without a dictionary file on disk.
func (d *Dictionary) LoadDefault() error {
	f, err := embeddedFS.Open(embeddedDefaultPath)
	if err != nil {
		return &errors.ParseError{Operation: "load default dictionary", Message: err.Error()}
	}
	defer f.Close()
	return d.parse(f, "default.dictionary", nil)
}

// LoadString parses dictionary text from an in-memory string, using
// name purely for error-trace reporting. $INCLUDE lines inside source
// resolve relative to cwd, since a string has no directory of its own.
func (d *Dictionary) LoadString(name, source string) error {
	return d.parse(strings.NewReader(source), name, nil)
}

func (d *Dictionary) parse(r io.Reader, filename string, trace []string) error {
	dir := filepath.Dir(filename)

	var vendorStack []*Vendor
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var cur *Vendor
		if n := len(vendorStack); n > 0 {
			cur = vendorStack[n-1]
		}

		loc := fmt.Sprintf("%s:%d", filename, lineNo)
		switch fields[0] {
		case "ATTRIBUTE":
			if err := d.parseAttribute(fields, cur); err != nil {
				return wrapTrace(err, append(trace, loc))
			}
		case "VALUE":
			if err := d.parseValue(fields); err != nil {
				return wrapTrace(err, append(trace, loc))
			}
		case "VENDOR":
			if err := d.parseVendor(fields); err != nil {
				return wrapTrace(err, append(trace, loc))
			}
		case "BEGIN-VENDOR":
			if len(fields) < 2 {
				return wrapTrace(fmt.Errorf("BEGIN-VENDOR requires a vendor name"), append(trace, loc))
			}
			v, ok := d.VendorByName(fields[1])
			if !ok {
				return wrapTrace(fmt.Errorf("BEGIN-VENDOR %s: unknown vendor", fields[1]), append(trace, loc))
			}
			vendorStack = append(vendorStack, v)
		case "END-VENDOR":
			if len(vendorStack) == 0 {
				return wrapTrace(fmt.Errorf("END-VENDOR without matching BEGIN-VENDOR"), append(trace, loc))
			}
			vendorStack = vendorStack[:len(vendorStack)-1]
		case "$INCLUDE":
			if len(fields) < 2 {
				return wrapTrace(fmt.Errorf("$INCLUDE requires a path"), append(trace, loc))
			}
			incPath := fields[1]
			if !filepath.IsAbs(incPath) {
				incPath = filepath.Join(dir, incPath)
			}
			incFile, err := os.Open(incPath)
			if err != nil {
				return wrapTrace(err, append(trace, loc))
			}
			err = func() error {
				defer incFile.Close()
				return d.parse(incFile, incPath, append(trace, loc))
			}()
			if err != nil {
				return err
			}
		default:
			// Unknown directives are forward-compatible no-ops.
		}
	}
	if err := scanner.Err(); err != nil {
		return wrapTrace(err, append(trace, fmt.Sprintf("%s:%d", filename, lineNo)))
	}
	return nil
}

func wrapTrace(err error, trace []string) error {
	return &errors.ParseError{
		Operation: "parse dictionary",
		Trace:     append([]string(nil), trace...),
		Message:   err.Error(),
		Err:       err,
	}
}

// parseAttribute handles: ATTRIBUTE <name> <id> <type> [flags] [extras...]
func (d *Dictionary) parseAttribute(fields []string, vendor *Vendor) error {
	if len(fields) < 4 {
		return fmt.Errorf("ATTRIBUTE requires name, id, and type")
	}
	name, idField, typeField := fields[1], fields[2], fields[3]

	id, err := strconv.Atoi(idField)
	if err != nil {
		return fmt.Errorf("ATTRIBUTE %s: id %q is not an integer", name, idField)
	}

	typ := mapType(typeField)
	flags := map[string]int{}
	if len(fields) > 4 {
		for _, tag := range fields[4:] {
			for _, kv := range strings.Split(tag, ",") {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					continue
				}
				n, err := strconv.Atoi(v)
				if err != nil {
					continue
				}
				flags[k] = n
			}
		}
	}

	e := newEntry(name, id, typ)
	e.Flags = flags

	d.mu.Lock()
	defer d.mu.Unlock()

	if vendor != nil {
		e.ID = 26
		e.SubID = id
		e.Vendor = vendor
		e.SubType = typ
		e.Type = value.KindVSA
		if d.vsa[vendor.ID] == nil {
			d.vsa[vendor.ID] = map[int]*Entry{}
		}
		d.vsa[vendor.ID][id] = e
		d.byName[strings.ToLower(name)] = e
		return nil
	}

	d.byID[id] = e
	d.byName[strings.ToLower(name)] = e
	return nil
}

// parseValue handles: VALUE <attr_name> <value_name> <numeric_value>
func (d *Dictionary) parseValue(fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("VALUE requires attribute name, value name, and numeric value")
	}
	attrName, valueName, numField := fields[1], fields[2], fields[3]

	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.byName[strings.ToLower(attrName)]
	if !ok {
		return fmt.Errorf("VALUE %s: unknown attribute", attrName)
	}
	if !isNumericKind(e.Type) && !(e.Type == value.KindVSA && isNumericKind(e.SubType)) {
		return fmt.Errorf("VALUE %s: attribute is not numeric", attrName)
	}
	n, err := strconv.Atoi(numField)
	if err != nil {
		return fmt.Errorf("VALUE %s %s: value %q is not an integer", attrName, valueName, numField)
	}
	e.addValue(valueName, n)
	return nil
}

// parseVendor handles: VENDOR <name> <id> [format=T,L]
func (d *Dictionary) parseVendor(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("VENDOR requires name and id")
	}
	name, idField := fields[1], fields[2]
	id64, err := strconv.ParseUint(idField, 10, 32)
	if err != nil {
		return fmt.Errorf("VENDOR %s: id %q is not an integer", name, idField)
	}
	id := uint32(id64)

	typeSize, lengthSize := 1, 1
	for _, tag := range fields[3:] {
		if !strings.HasPrefix(tag, "format=") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(tag, "format="), ",")
		if len(parts) >= 1 {
			if n, err := strconv.Atoi(parts[0]); err == nil {
				typeSize = n
			}
		}
		if len(parts) >= 2 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				lengthSize = n
			}
		}
	}
	if typeSize != 1 && typeSize != 2 && typeSize != 4 {
		return fmt.Errorf("VENDOR %s: invalid type size %d", name, typeSize)
	}
	if lengthSize != 0 && lengthSize != 1 && lengthSize != 2 {
		return fmt.Errorf("VENDOR %s: invalid length size %d", name, lengthSize)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.vendorsByID[id]; exists {
		return fmt.Errorf("VENDOR %s: duplicate vendor id %d", name, id)
	}
	v := &Vendor{Name: name, ID: id, TypeSize: typeSize, LengthSize: lengthSize}
	d.vendorsByID[id] = v
	d.vendorsByName[strings.ToLower(name)] = v
	return nil
}

func isNumericKind(k value.Kind) bool {
	switch k {
	case value.KindByte, value.KindShort, value.KindInteger:
		return true
	default:
		return false
	}
}

// mapType maps a dictionary type tag to a codec Kind. Unrecognized or
// not-yet-supported tags fall back to Octets, and an "octets[N]" shape
// is accepted with the width tag ignored.
func mapType(tag string) value.Kind {
	if idx := strings.IndexByte(tag, '['); idx >= 0 {
		tag = tag[:idx]
	}
	switch tag {
	case "string":
		return value.KindString
	case "octets":
		return value.KindOctets
	case "uint8", "byte":
		return value.KindByte
	case "uint16", "short":
		return value.KindShort
	case "integer", "signed":
		return value.KindInteger
	case "ipaddr":
		return value.KindIpv4
	case "date":
		return value.KindDate
	case "vsa":
		return value.KindVSA
	default:
		return value.KindOctets
	}
}
