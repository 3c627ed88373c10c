package client

import "github.com/david-macharia/isc-radius/radius"

// RejectError wraps an Access-Reject response. Request returns it as the
// error value alongside the rejecting packet so callers can inspect why
// the request was rejected.
type RejectError struct {
	Response *radius.Packet
}

func (e *RejectError) Error() string { return "request rejected by server" }
