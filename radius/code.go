package radius

import (
	"strconv"
	"strings"

	"github.com/david-macharia/isc-radius/internal/errors"
)

// Code is the closed set of RADIUS packet type codes (RFC 2865 §3, RFC
// 2866 §3, RFC 3576 §3).
type Code int

const (
	CodeAccessRequest      Code = 1
	CodeAccessAccept       Code = 2
	CodeAccessReject       Code = 3
	CodeAccountingRequest  Code = 4
	CodeAccountingResponse Code = 5
	CodeAccessChallenge    Code = 11
	CodeStatusServer       Code = 12
	CodeStatusClient       Code = 13
	CodeDisconnectRequest  Code = 40
	CodeDisconnectACK      Code = 41
	CodeDisconnectNAK      Code = 42
	CodeCoARequest         Code = 43
	CodeCoAACK             Code = 44
	CodeCoANAK             Code = 45
)

var codeNames = map[Code]string{
	CodeAccessRequest:      "Access-Request",
	CodeAccessAccept:       "Access-Accept",
	CodeAccessReject:       "Access-Reject",
	CodeAccountingRequest:  "Accounting-Request",
	CodeAccountingResponse: "Accounting-Response",
	CodeAccessChallenge:    "Access-Challenge",
	CodeStatusServer:       "Status-Server",
	CodeStatusClient:       "Status-Client",
	CodeDisconnectRequest:  "Disconnect-Request",
	CodeDisconnectACK:      "Disconnect-ACK",
	CodeDisconnectNAK:      "Disconnect-NAK",
	CodeCoARequest:         "CoA-Request",
	CodeCoAACK:             "CoA-ACK",
	CodeCoANAK:             "CoA-NAK",
}

var namesToCode = buildNameIndex()

func buildNameIndex() map[string]Code {
	m := make(map[string]Code, len(codeNames))
	for c, name := range codeNames {
		m[normalizeCodeName(name)] = c
	}
	return m
}

func normalizeCodeName(s string) string {
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "_", "-")
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Unknown-Code-" + strconv.Itoa(int(c))
}

// requestCodes and responseCodes back IsRequest and IsResponse.
var requestCodes = map[Code]bool{
	CodeAccessRequest:     true,
	CodeAccountingRequest: true,
	CodeStatusServer:      true,
	CodeStatusClient:      true,
	CodeDisconnectRequest: true,
	CodeCoARequest:        true,
}

var responseCodes = map[Code]bool{
	CodeAccessAccept:       true,
	CodeAccessReject:       true,
	CodeAccessChallenge:    true,
	CodeAccountingResponse: true,
	CodeDisconnectACK:      true,
	CodeDisconnectNAK:      true,
	CodeCoAACK:             true,
	CodeCoANAK:             true,
}

// IsRequest reports whether c is a code a client originates.
func (c Code) IsRequest() bool { return requestCodes[c] }

// IsResponse reports whether c is a code a server originates in reply
// to a request. A server must ignore any datagram whose code is not a
// recognized request code: inbound response codes on a listening port
// are not RADIUS requests and must not enter dispatch.
func (c Code) IsResponse() bool { return responseCodes[c] }

// ParseCode resolves a Code from a numeric value, a canonical name
// (case-insensitive, hyphen or underscore), or an existing Code.
func ParseCode(v interface{}) (Code, error) {
	switch x := v.(type) {
	case Code:
		if _, ok := codeNames[x]; !ok {
			return 0, &errors.RangeError{Operation: "parse code", Value: int(x), Message: "unknown code"}
		}
		return x, nil
	case int:
		c := Code(x)
		if _, ok := codeNames[c]; !ok {
			return 0, &errors.RangeError{Operation: "parse code", Value: x, Message: "unknown code"}
		}
		return c, nil
	case string:
		if c, ok := namesToCode[normalizeCodeName(x)]; ok {
			return c, nil
		}
		return 0, &errors.RangeError{Operation: "parse code", Value: x, Message: "unknown code name"}
	default:
		return 0, &errors.TypeError{Operation: "parse code", Value: v, Message: "code must be a Code, int, or string"}
	}
}
