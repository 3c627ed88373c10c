// Package transport provides the UDP socket abstraction shared by the
// RADIUS server and client engines.
//
// Both engines talk to exactly one conceptual peer set over a single UDP
// socket: a server receives from many clients on one bound port, a client
// sends to one server at a time and waits for its reply. Neither needs
// anything beyond send/receive/close, so the interface stays that small;
// server/client build retry, dispatch, and identifier bookkeeping on top.
package transport

import (
	"context"
	"net"
)

// Transport sends and receives RADIUS datagrams over UDP.
//
// Send and Receive must both honor ctx cancellation and, where the
// context carries a deadline, propagate it to the underlying socket.
// Close must not swallow the close error: a caller that calls Close
// twice should see a non-nil error on the second call.
type Transport interface {
	Send(ctx context.Context, packet []byte, dest net.Addr) error
	Receive(ctx context.Context) ([]byte, net.Addr, error)
	Close() error
}
