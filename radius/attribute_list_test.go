package radius_test

import (
	"testing"

	"github.com/david-macharia/isc-radius/radius"
)

func TestAttributeList_PreservesInsertionOrder(t *testing.T) {
	d := testDictionary(t)
	l := radius.NewAttributeList()
	if err := l.AddValue(d, "User-Name", "alice"); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}
	if err := l.AddValue(d, "NAS-IP-Address", "10.0.0.1"); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}
	if err := l.AddValue(d, "Framed-Protocol", 1); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}

	all := l.All()
	if len(all) != 3 {
		t.Fatalf("Len() = %d, want 3", len(all))
	}
	wantNames := []string{"User-Name", "NAS-IP-Address", "Framed-Protocol"}
	for i, name := range wantNames {
		if all[i].Entry.Name != name {
			t.Errorf("attrs[%d].Entry.Name = %q, want %q", i, all[i].Entry.Name, name)
		}
	}
}

func TestAttributeList_FrozenRejectsMutation(t *testing.T) {
	d := testDictionary(t)
	l := radius.NewAttributeList()
	if err := l.AddValue(d, "User-Name", "alice"); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}
	l.Freeze()

	if !l.Frozen() {
		t.Fatal("Frozen() = false after Freeze()")
	}
	if err := l.AddValue(d, "User-Name", "bob"); err == nil {
		t.Error("AddValue() on frozen list should fail")
	}

	attr, err := radius.New(d, "User-Name", "carol")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := l.Add(attr); err == nil {
		t.Error("Add() on frozen list should fail")
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d after rejected mutations, want 1", l.Len())
	}
}

func TestAttributeList_HasGetGetAllUsePointerIdentity(t *testing.T) {
	d := testDictionary(t)
	userName, err := d.Get("User-Name")
	if err != nil {
		t.Fatalf("Get(User-Name) failed: %v", err)
	}
	nasIP, err := d.Get("NAS-IP-Address")
	if err != nil {
		t.Fatalf("Get(NAS-IP-Address) failed: %v", err)
	}

	l := radius.NewAttributeList()
	if err := l.AddValue(d, "User-Name", "alice"); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}
	if err := l.AddValue(d, "User-Name", "bob"); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}

	if !l.Has(userName) {
		t.Error("Has(User-Name) = false, want true")
	}
	if l.Has(nasIP) {
		t.Error("Has(NAS-IP-Address) = true, want false")
	}

	first, ok := l.Get(userName)
	if !ok {
		t.Fatal("Get(User-Name) returned ok=false")
	}
	if first.Value.String() != "alice" {
		t.Errorf("Get() first value = %q, want alice", first.Value.String())
	}

	all := l.GetAll(userName)
	if len(all) != 2 {
		t.Fatalf("GetAll(User-Name) len = %d, want 2", len(all))
	}
	if all[0].Value.String() != "alice" || all[1].Value.String() != "bob" {
		t.Errorf("GetAll() = [%q, %q], want [alice, bob]", all[0].Value.String(), all[1].Value.String())
	}
}

func TestAttributeList_EncodeDecodeRoundTrip(t *testing.T) {
	d := testDictionary(t)
	secret := []byte("secret")
	auth := make([]byte, 16)

	l := radius.NewAttributeList()
	if err := l.AddValue(d, "User-Name", "alice"); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}
	if err := l.AddValue(d, "Framed-IP-Address", "10.0.0.1"); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}

	wire, err := l.EncodeTo(nil, secret, auth)
	if err != nil {
		t.Fatalf("EncodeTo() failed: %v", err)
	}

	decoded, err := radius.DecodeAttributeList(d, wire, secret, auth)
	if err != nil {
		t.Fatalf("DecodeAttributeList() failed: %v", err)
	}
	if !decoded.Frozen() {
		t.Error("DecodeAttributeList() result should be frozen")
	}
	if decoded.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", decoded.Len())
	}
	all := decoded.All()
	if all[0].Entry.Name != "User-Name" || all[0].Value.String() != "alice" {
		t.Errorf("attrs[0] = %s, want User-Name: alice", all[0].String())
	}
	if all[1].Entry.Name != "Framed-IP-Address" || all[1].Value.String() != "10.0.0.1" {
		t.Errorf("attrs[1] = %s, want Framed-IP-Address: 10.0.0.1", all[1].String())
	}
}

func TestAttributeList_DecodeDiscardsTrailingFragment(t *testing.T) {
	d := testDictionary(t)
	secret := []byte("secret")
	auth := make([]byte, 16)

	l := radius.NewAttributeList()
	if err := l.AddValue(d, "User-Name", "alice"); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}
	wire, err := l.EncodeTo(nil, secret, auth)
	if err != nil {
		t.Fatalf("EncodeTo() failed: %v", err)
	}

	wire = append(wire, 0x01)

	decoded, err := radius.DecodeAttributeList(d, wire, secret, auth)
	if err != nil {
		t.Fatalf("DecodeAttributeList() with trailing fragment failed: %v", err)
	}
	if decoded.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (trailing byte should be discarded)", decoded.Len())
	}
}

func TestAttributeList_EmptyListEncodesToNothing(t *testing.T) {
	l := radius.NewAttributeList()
	wire, err := l.EncodeTo(nil, nil, make([]byte, 16))
	if err != nil {
		t.Fatalf("EncodeTo() failed: %v", err)
	}
	if len(wire) != 0 {
		t.Errorf("EncodeTo() on empty list = %v, want empty", wire)
	}
}
