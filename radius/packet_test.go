package radius_test

import (
	"testing"

	"github.com/david-macharia/isc-radius/dictionary"
	"github.com/david-macharia/isc-radius/radius"
)

func TestPacket_ToWireFromWireRoundTrip(t *testing.T) {
	d := testDictionary(t)
	secret := []byte("sharedsecret")

	attrs := radius.NewAttributeList()
	if err := attrs.AddValue(d, "User-Name", "alice"); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}
	if err := attrs.AddValue(d, "NAS-IP-Address", "10.0.0.1"); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}

	p, err := radius.NewPacket(radius.CodeAccessRequest, 7, attrs)
	if err != nil {
		t.Fatalf("NewPacket() failed: %v", err)
	}

	wire, err := p.ToWire(secret, false)
	if err != nil {
		t.Fatalf("ToWire() failed: %v", err)
	}

	decoded, err := radius.DecodePacket(d, wire, secret)
	if err != nil {
		t.Fatalf("DecodePacket() failed: %v", err)
	}

	if decoded.Code() != radius.CodeAccessRequest {
		t.Errorf("Code() = %v, want Access-Request", decoded.Code())
	}
	if decoded.Identifier() != 7 {
		t.Errorf("Identifier() = %d, want 7", decoded.Identifier())
	}
	if decoded.Attributes().Len() != 2 {
		t.Fatalf("Attributes().Len() = %d, want 2", decoded.Attributes().Len())
	}
	for i, a := range decoded.Attributes().All() {
		want := attrs.All()[i]
		if a.Entry.Name != want.Entry.Name || a.Value.String() != want.Value.String() {
			t.Errorf("attribute[%d] = %s, want %s", i, a.String(), want.String())
		}
	}
}

func TestPacket_ResponseAuthenticatorVerifies(t *testing.T) {
	d := testDictionary(t)
	secret := []byte("sharedsecret")

	reqAttrs := radius.NewAttributeList()
	req, err := radius.NewPacket(radius.CodeAccessRequest, 3, reqAttrs)
	if err != nil {
		t.Fatalf("NewPacket() failed: %v", err)
	}
	reqWire, err := req.ToWire(secret, false)
	if err != nil {
		t.Fatalf("ToWire(request) failed: %v", err)
	}
	reqAuth := req.Authenticator()

	respAttrs := radius.NewAttributeList()
	resp, err := radius.NewPacket(radius.CodeAccessAccept, 3, respAttrs)
	if err != nil {
		t.Fatalf("NewPacket() failed: %v", err)
	}
	if err := resp.SetAuthenticator(reqAuth[:]); err != nil {
		t.Fatalf("SetAuthenticator() failed: %v", err)
	}
	respWire, err := resp.ToWire(secret, true)
	if err != nil {
		t.Fatalf("ToWire(response) failed: %v", err)
	}

	decodedResp, err := radius.DecodePacket(d, respWire, secret)
	if err != nil {
		t.Fatalf("DecodePacket(response) failed: %v", err)
	}

	ok, err := radius.VerifyResponseAuthenticator(decodedResp, secret, reqAuth)
	if err != nil {
		t.Fatalf("VerifyResponseAuthenticator() failed: %v", err)
	}
	if !ok {
		t.Error("VerifyResponseAuthenticator() = false, want true")
	}

	_ = reqWire
}

func TestDecodePacket_RejectsShortBuffer(t *testing.T) {
	d := dictionary.New()
	if _, err := radius.DecodePacket(d, make([]byte, 19), nil); err == nil {
		t.Error("DecodePacket(19 bytes) should fail")
	}
}

func TestDecodePacket_RejectsDeclaredLengthBeyondBuffer(t *testing.T) {
	d := dictionary.New()
	buf := make([]byte, 20)
	buf[2] = 0xFF
	buf[3] = 0xFF
	if _, err := radius.DecodePacket(d, buf, nil); err == nil {
		t.Error("DecodePacket with declared length > buffer should fail")
	}
}

func TestPacket_ProxyStateRoundTrip(t *testing.T) {
	d := testDictionary(t)
	attrs := radius.NewAttributeList()
	if err := attrs.AddValue(d, "Proxy-State", []byte("test")); err != nil {
		t.Fatalf("AddValue() failed: %v", err)
	}
	p, err := radius.NewPacket(radius.CodeAccessReject, 1, attrs)
	if err != nil {
		t.Fatalf("NewPacket() failed: %v", err)
	}
	wire, err := p.ToWire(nil, true)
	if err != nil {
		t.Fatalf("ToWire() failed: %v", err)
	}
	decoded, err := radius.DecodePacket(d, wire, nil)
	if err != nil {
		t.Fatalf("DecodePacket() failed: %v", err)
	}
	if decoded.Attributes().Len() != 1 {
		t.Fatalf("Attributes().Len() = %d, want 1", decoded.Attributes().Len())
	}
	if decoded.Attributes().All()[0].Value.String() != "74657374" {
		t.Errorf("Proxy-State value = %q, want hex(test)", decoded.Attributes().All()[0].Value.String())
	}
}
