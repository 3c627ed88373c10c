package transport

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/ipv4"

	"github.com/david-macharia/isc-radius/internal/errors"
)

// UDPv4Transport is a unicast IPv4 UDP transport for RADIUS datagrams.
//
// A single socket serves both directions: a server binds it to a fixed
// local address:port and receives from arbitrary clients; a client binds
// it to an ephemeral port and sends to whichever server address the
// caller passes to Send. The underlying connection is wrapped in an
// ipv4.PacketConn so a server bound to a wildcard address can report
// which local address a given request arrived on (DestAddr), which
// matters for a host with more than one network interface.
type UDPv4Transport struct {
	conn    *net.UDPConn
	pconn   *ipv4.PacketConn
	lastDst net.IP
}

// NewUDPv4Transport binds a UDP socket to laddr. An empty or nil laddr
// binds to an ephemeral port on the wildcard address, suitable for a
// client. A server passes its fixed listen address (e.g. ":1812").
func NewUDPv4Transport(laddr *net.UDPAddr) (*UDPv4Transport, error) {
	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, &errors.TransportError{
			Operation: "create socket",
			Err:       err,
			Details:   fmt.Sprintf("failed to bind to %v", laddr),
		}
	}

	pconn := ipv4.NewPacketConn(conn)
	if err := pconn.SetControlMessage(ipv4.FlagDst, true); err != nil {
		// Not every platform/socket type supports this; the transport
		// still works, it just can't report a wildcard bind's local
		// destination address.
		pconn = nil
	}

	if err := conn.SetReadBuffer(65536); err != nil {
		_ = conn.Close()
		return nil, &errors.TransportError{
			Operation: "configure socket",
			Err:       err,
			Details:   "failed to set read buffer size",
		}
	}

	return &UDPv4Transport{conn: conn, pconn: pconn}, nil
}

// LocalAddr returns the socket's bound local address.
func (t *UDPv4Transport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// DestAddr returns the local destination address reported by the most
// recent Receive call's control message, or nil if unavailable.
func (t *UDPv4Transport) DestAddr() net.IP {
	return t.lastDst
}

// Send transmits packet to dest, failing fast if ctx is already done.
func (t *UDPv4Transport) Send(ctx context.Context, packet []byte, dest net.Addr) error {
	select {
	case <-ctx.Done():
		return &errors.TransportError{
			Operation: "send packet",
			Err:       ctx.Err(),
			Details:   "context canceled before send",
		}
	default:
	}

	n, err := t.conn.WriteTo(packet, dest)
	if err != nil {
		return &errors.TransportError{
			Operation: "send packet",
			Err:       err,
			Details:   fmt.Sprintf("failed to send %d bytes to %s", len(packet), dest),
		}
	}
	if n != len(packet) {
		return &errors.TransportError{
			Operation: "send packet",
			Err:       fmt.Errorf("partial write: %d/%d bytes", n, len(packet)),
			Details:   "incomplete transmission",
		}
	}
	return nil
}

// Receive waits for an incoming datagram, honoring ctx cancellation and
// deadline. The returned byte slice is the caller's own copy; the
// buffer it was read into is returned to the pool before Receive
// returns.
func (t *UDPv4Transport) Receive(ctx context.Context) ([]byte, net.Addr, error) {
	select {
	case <-ctx.Done():
		return nil, nil, &errors.TransportError{
			Operation: "receive packet",
			Err:       ctx.Err(),
			Details:   "context canceled before receive",
		}
	default:
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return nil, nil, &errors.TransportError{
				Operation: "set read deadline",
				Err:       err,
				Details:   fmt.Sprintf("failed to set deadline %v", deadline),
			}
		}
	}

	bufPtr := GetBuffer()
	defer PutBuffer(bufPtr)
	buffer := *bufPtr

	if t.pconn != nil {
		n, cm, srcAddr, err := t.pconn.ReadFrom(buffer)
		if err != nil {
			return nil, nil, receiveErr(err)
		}
		if cm != nil {
			t.lastDst = cm.Dst
		}
		result := make([]byte, n)
		copy(result, buffer[:n])
		return result, srcAddr, nil
	}

	n, srcAddr, err := t.conn.ReadFrom(buffer)
	if err != nil {
		return nil, nil, receiveErr(err)
	}
	result := make([]byte, n)
	copy(result, buffer[:n])
	return result, srcAddr, nil
}

func receiveErr(err error) error {
	details := "failed to read from socket"
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		details = "timeout"
	}
	return &errors.TransportError{Operation: "receive packet", Err: err, Details: details}
}

// Close releases the underlying socket. Calling Close twice returns a
// non-nil error on the second call rather than swallowing it.
func (t *UDPv4Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	if err := t.conn.Close(); err != nil {
		return &errors.TransportError{
			Operation: "close socket",
			Err:       err,
			Details:   "failed to close UDP connection",
		}
	}
	return nil
}
