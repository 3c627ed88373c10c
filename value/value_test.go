package value_test

import (
	"testing"
	"time"

	"github.com/david-macharia/isc-radius/value"
)

func TestOctets_RoundTrip(t *testing.T) {
	in := []byte{0x01, 0x02, 0x03}
	got, err := value.DecodeOctets(in)
	if err != nil {
		t.Fatalf("DecodeOctets() failed: %v", err)
	}
	if string(got.Bytes()) != string(in) {
		t.Errorf("Bytes() = %v, want %v", got.Bytes(), in)
	}
}

func TestOctets_RejectsOutOfRangeLength(t *testing.T) {
	if _, err := value.DecodeOctets(nil); err == nil {
		t.Error("DecodeOctets(empty) should fail")
	}
	big := make([]byte, 254)
	if _, err := value.DecodeOctets(big); err == nil {
		t.Error("DecodeOctets(254 bytes) should fail")
	}
}

func TestString_RoundTrip(t *testing.T) {
	tests := []string{"a", "alice", "hello, world"}
	for _, s := range tests {
		got, err := value.NewString(s)
		if err != nil {
			t.Fatalf("NewString(%q) failed: %v", s, err)
		}
		if got.String() != s {
			t.Errorf("String() = %q, want %q", got.String(), s)
		}
	}
}

func TestString_RejectsInvalidUTF8(t *testing.T) {
	if _, err := value.DecodeString([]byte{0xff, 0xfe}); err == nil {
		t.Error("DecodeString(invalid utf8) should fail")
	}
}

func TestByte_RejectsWrongWidth(t *testing.T) {
	if _, err := value.DecodeByte([]byte{1, 2}); err == nil {
		t.Error("DecodeByte(2 bytes) should fail")
	}
	if _, err := value.DecodeByte(nil); err == nil {
		t.Error("DecodeByte(0 bytes) should fail")
	}
}

func TestShort_RoundTrip(t *testing.T) {
	got, err := value.DecodeShort([]byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("DecodeShort() failed: %v", err)
	}
	if got != 0x0102 {
		t.Errorf("DecodeShort() = %d, want %d", got, 0x0102)
	}
	if string(got.Bytes()) != string([]byte{0x01, 0x02}) {
		t.Errorf("Bytes() = %v, want [0x01 0x02]", got.Bytes())
	}
}

func TestInteger_RoundTrip(t *testing.T) {
	for _, n := range []uint32{0, 1, 256, 4294967295} {
		iv := value.NewInteger(n)
		decoded, err := value.DecodeInteger(iv.Bytes())
		if err != nil {
			t.Fatalf("DecodeInteger(%d) failed: %v", n, err)
		}
		if uint32(decoded) != n {
			t.Errorf("round trip %d => %d", n, decoded)
		}
	}
}

func TestInteger_WireFormat(t *testing.T) {
	got := value.NewInteger(1).Bytes()
	want := []byte{0x00, 0x00, 0x00, 0x01}
	if string(got) != string(want) {
		t.Errorf("Bytes() = %v, want %v", got, want)
	}
}

func TestIpv4_RoundTrip(t *testing.T) {
	tests := []string{"10.0.0.1", "255.255.255.255", "0.0.0.0"}
	for _, s := range tests {
		ip, err := value.NewIpv4(s)
		if err != nil {
			t.Fatalf("NewIpv4(%q) failed: %v", s, err)
		}
		if ip.String() != s {
			t.Errorf("String() = %q, want %q", ip.String(), s)
		}
	}
}

func TestIpv4_WireFormat(t *testing.T) {
	ip, err := value.NewIpv4("10.0.0.1")
	if err != nil {
		t.Fatalf("NewIpv4() failed: %v", err)
	}
	want := []byte{0x0A, 0x00, 0x00, 0x01}
	if string(ip.Bytes()) != string(want) {
		t.Errorf("Bytes() = %v, want %v", ip.Bytes(), want)
	}
}

func TestIpv4_RejectsMalformed(t *testing.T) {
	tests := []string{"10.0.0", "10.0.0.1.2", "256.0.0.1", "10..0.1", "a.b.c.d"}
	for _, s := range tests {
		if _, err := value.NewIpv4(s); err == nil {
			t.Errorf("NewIpv4(%q) should fail", s)
		}
	}
}

func TestDate_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d := value.NewDate(now)
	decoded, err := value.DecodeDate(d.Bytes())
	if err != nil {
		t.Fatalf("DecodeDate() failed: %v", err)
	}
	if decoded.Time().Unix() != now.Unix() {
		t.Errorf("Time() = %v, want %v", decoded.Time(), now)
	}
}
