// Package client implements the RADIUS client engine: round-robin server
// selection, per-server identifier allocation, retry/timeout handling, and
// response authenticator verification.
package client

import (
	"context"
	"crypto/rand"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/david-macharia/isc-radius/dictionary"
	"github.com/david-macharia/isc-radius/internal/errors"
	"github.com/david-macharia/isc-radius/internal/metrics"
	"github.com/david-macharia/isc-radius/internal/transport"
	"github.com/david-macharia/isc-radius/radius"
)

const (
	defaultRetry = 3
	defaultDelay = 1 * time.Second

	defaultAuthPort = 1812
	defaultAcctPort = 1813
)

// ServerConfig describes one upstream RADIUS server.
type ServerConfig struct {
	Address  string
	AuthPort int
	AcctPort int
	Secret   []byte
}

// Client sends RADIUS requests to one or more upstream servers with
// round-robin selection and retry.
type Client struct {
	dict    *dictionary.Dictionary
	servers []*serverTarget
	retry   int
	delay   time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics

	// newTransport is overridable in tests to avoid binding a real socket.
	newTransport func() (transport.Transport, error)
}

// New constructs a Client against the given dictionary and upstream
// servers. At least one server is required.
func New(dict *dictionary.Dictionary, servers []ServerConfig, opts ...Option) (*Client, error) {
	if dict == nil {
		return nil, &errors.TypeError{Operation: "new client", Message: "dictionary must not be nil"}
	}
	if len(servers) == 0 {
		return nil, &errors.TypeError{Operation: "new client", Message: "at least one server is required"}
	}

	c := &Client{
		dict:    dict,
		retry:   defaultRetry,
		delay:   defaultDelay,
		logger:  zap.NewNop(),
		metrics: metrics.New(nil),
		newTransport: func() (transport.Transport, error) {
			return transport.NewUDPv4Transport(nil)
		},
	}

	for _, cfg := range servers {
		st, err := newServerTarget(cfg)
		if err != nil {
			return nil, err
		}
		c.servers = append(c.servers, st)
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.retry < 1 {
		return nil, &errors.RangeError{Operation: "new client", Value: c.retry, Min: 1, Max: 2147483647, Message: "retry must be positive"}
	}
	if c.delay <= 0 {
		return nil, &errors.RangeError{Operation: "new client", Message: "delay must be positive"}
	}

	return c, nil
}

// serverTarget tracks one upstream server's resolved address and its own
// monotonic identifier counter.
type serverTarget struct {
	cfg ServerConfig

	mu         sync.Mutex
	identifier uint8
}

func newServerTarget(cfg ServerConfig) (*serverTarget, error) {
	if cfg.Address == "" {
		return nil, &errors.TypeError{Operation: "new server target", Message: "address must not be empty"}
	}
	if cfg.AuthPort == 0 {
		cfg.AuthPort = defaultAuthPort
	}
	if cfg.AcctPort == 0 {
		cfg.AcctPort = defaultAcctPort
	}

	var seed [1]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, &errors.TransportError{Operation: "new server target", Err: err}
	}

	return &serverTarget{cfg: cfg, identifier: seed[0]}, nil
}

// nextIdentifier returns the next identifier to allocate and advances the
// counter mod 256.
func (st *serverTarget) nextIdentifier() uint8 {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := st.identifier
	st.identifier++
	return id
}

func (st *serverTarget) targetAddr(code radius.Code) *net.UDPAddr {
	port := st.cfg.AuthPort
	if code == radius.CodeAccountingRequest {
		port = st.cfg.AcctPort
	}
	return &net.UDPAddr{IP: net.ParseIP(st.cfg.Address), Port: port}
}

// attemptState is the cached packet/wire encoding for one server within a
// single Request call: reused across repeated round-robin visits to the
// same server so retries carry the same identifier and authenticator.
type attemptState struct {
	packet     *radius.Packet
	wire       []byte
	identifier uint8
}

// Request sends a RADIUS request of the given code with attrs, retrying
// across the configured servers in round-robin order. It resolves with the
// response packet on Access-Accept/Accounting-Response, returns a
// *RejectError wrapping the response on Access-Reject, or a transport error
// once retry*server_count attempts are exhausted.
func (c *Client) Request(ctx context.Context, codeVal interface{}, attrs *radius.AttributeList) (*radius.Packet, error) {
	code, err := radius.ParseCode(codeVal)
	if err != nil {
		return nil, err
	}

	tr, err := c.newTransport()
	if err != nil {
		return nil, err
	}
	defer tr.Close()

	k := len(c.servers)
	cache := make(map[int]*attemptState)

	for i := 0; i < c.retry*k; i++ {
		idx := i % k
		srv := c.servers[idx]

		st, ok := cache[idx]
		if !ok {
			id := srv.nextIdentifier()
			p, err := radius.NewPacket(code, int(id), attrs)
			if err != nil {
				return nil, err
			}
			wire, err := p.ToWire(srv.cfg.Secret, false)
			if err != nil {
				return nil, err
			}
			st = &attemptState{packet: p, wire: wire, identifier: id}
			cache[idx] = st
		} else {
			c.metrics.ClientRetries.Inc()
		}

		if err := tr.Send(ctx, st.wire, srv.targetAddr(code)); err != nil {
			c.logger.Debug("send failed, continuing retry loop", zap.Error(err))
			continue
		}

		resp, rejErr, matched := c.waitForResponse(ctx, tr, srv, st, code)
		if matched {
			return resp, rejErr
		}
	}

	c.metrics.ClientTimeouts.Inc()
	return nil, &errors.TransportError{Operation: "client request", Details: "no response accepted within retry*server_count attempts"}
}

// waitForResponse listens for up to c.delay for a response that matches
// srv, st's identifier, and a valid response authenticator, mapping the
// result by (request code, response code). It returns matched=false if the
// delay window elapses with no acceptable datagram.
func (c *Client) waitForResponse(ctx context.Context, tr transport.Transport, srv *serverTarget, st *attemptState, code radius.Code) (resp *radius.Packet, rejErr error, matched bool) {
	deadline, cancel := context.WithTimeout(ctx, c.delay)
	defer cancel()

	want := srv.targetAddr(code)
	reqAuth := st.packet.Authenticator()

	for {
		buf, addr, err := tr.Receive(deadline)
		if err != nil {
			return nil, nil, false
		}
		if !sameHostPort(addr, want) {
			continue
		}

		p, err := radius.DecodePacket(c.dict, buf, srv.cfg.Secret)
		if err != nil {
			continue
		}
		if p.Identifier() != st.identifier {
			continue
		}
		ok, err := radius.VerifyResponseAuthenticator(p, srv.cfg.Secret, reqAuth)
		if err != nil || !ok {
			continue
		}

		switch {
		case code == radius.CodeAccessRequest && p.Code() == radius.CodeAccessAccept:
			return p, nil, true
		case code == radius.CodeAccessRequest && p.Code() == radius.CodeAccessReject:
			return p, &RejectError{Response: p}, true
		case code == radius.CodeAccountingRequest && p.Code() == radius.CodeAccountingResponse:
			return p, nil, true
		default:
			continue
		}
	}
}

func sameHostPort(addr net.Addr, want *net.UDPAddr) bool {
	got, ok := addr.(*net.UDPAddr)
	if !ok {
		return false
	}
	return got.IP.Equal(want.IP) && got.Port == want.Port
}
