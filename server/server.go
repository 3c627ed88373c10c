// Package server implements the RADIUS server engine: a UDP receive loop on
// the auth and accounting ports, a client/secret registry, an ordered
// handler chain, and default-response synthesis for unhandled requests.
package server

import (
	"context"
	"net"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/david-macharia/isc-radius/dictionary"
	"github.com/david-macharia/isc-radius/internal/errors"
	"github.com/david-macharia/isc-radius/internal/metrics"
	"github.com/david-macharia/isc-radius/internal/transport"
	"github.com/david-macharia/isc-radius/radius"
)

// Role identifies which listening socket a request arrived on.
type Role string

const (
	RoleAuth Role = "auth"
	RoleAcct Role = "acct"
)

const (
	defaultAuthPort = 1812
	defaultAcctPort = 1813
)

// Handler is a single link in the handler chain. It may mutate res (change
// its code, append attributes). Returning handled=true short-circuits the
// chain and res is sent as-is. Returning a non-nil error aborts the chain;
// no response is sent for that transaction.
type Handler func(ctx context.Context, role Role, req, res *radius.Packet) (handled bool, err error)

// Server is a RADIUS auth+accounting UDP server.
type Server struct {
	dict *dictionary.Dictionary

	authPort int
	acctPort int

	authTransport transport.Transport
	acctTransport transport.Transport

	clientsMu sync.RWMutex
	clients   map[string][]byte

	handlers []Handler

	logger  *zap.Logger
	metrics *metrics.Metrics

	proxyState *dictionary.Entry
}

// New constructs a Server bound to dict. The server does not start listening
// until ListenAndServe is called.
func New(dict *dictionary.Dictionary, opts ...Option) (*Server, error) {
	if dict == nil {
		return nil, &errors.TypeError{Operation: "new server", Message: "dictionary must not be nil"}
	}
	proxyState, err := dict.Get("Proxy-State")
	if err != nil {
		return nil, err
	}

	s := &Server{
		dict:       dict,
		authPort:   defaultAuthPort,
		acctPort:   defaultAcctPort,
		clients:    make(map[string][]byte),
		logger:     zap.NewNop(),
		metrics:    metrics.New(nil),
		proxyState: proxyState,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.authPort < 1 || s.authPort > 65535 {
		return nil, &errors.RangeError{Operation: "new server", Value: s.authPort, Min: 1, Max: 65535, Message: "auth port out of range"}
	}
	if s.acctPort < 1 || s.acctPort > 65535 {
		return nil, &errors.RangeError{Operation: "new server", Value: s.acctPort, Min: 1, Max: 65535, Message: "acct port out of range"}
	}

	return s, nil
}

// AddClient registers ip (exact-match source address string) with the given
// shared secret. Safe to call concurrently with ListenAndServe.
func (s *Server) AddClient(ip string, secret []byte) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[ip] = secret
}

func (s *Server) secretFor(ip string) ([]byte, bool) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	secret, ok := s.clients[ip]
	return secret, ok
}

// ListenAndServe binds the auth and accounting UDP sockets and serves until
// ctx is cancelled or either socket reports a fatal error. Both loops are
// torn down together via errgroup.
func (s *Server) ListenAndServe(ctx context.Context) error {
	authTr, err := transport.NewUDPv4Transport(&net.UDPAddr{Port: s.authPort})
	if err != nil {
		return err
	}
	acctTr, err := transport.NewUDPv4Transport(&net.UDPAddr{Port: s.acctPort})
	if err != nil {
		_ = authTr.Close()
		return err
	}
	s.authTransport = authTr
	s.acctTransport = acctTr

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.serveLoop(gctx, authTr, RoleAuth) })
	g.Go(func() error { return s.serveLoop(gctx, acctTr, RoleAcct) })

	err = g.Wait()
	_ = authTr.Close()
	_ = acctTr.Close()
	return err
}

func (s *Server) serveLoop(ctx context.Context, tr transport.Transport, role Role) error {
	for {
		buf, addr, err := tr.Receive(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				s.logger.Debug("receive error", zap.String("role", string(role)), zap.Error(err))
				continue
			}
		}
		datagram := make([]byte, len(buf))
		copy(datagram, buf)
		go s.handleDatagram(ctx, tr, role, datagram, addr)
	}
}

func (s *Server) handleDatagram(ctx context.Context, tr transport.Transport, role Role, buf []byte, addr net.Addr) {
	host := addrIP(addr)
	secret, ok := s.secretFor(host)
	if !ok {
		s.metrics.IncDropped("unknown-client")
		s.logger.Warn("dropped datagram from unregistered client", zap.String("source", host))
		return
	}

	req, err := radius.DecodePacket(s.dict, buf, secret)
	if err != nil {
		s.metrics.IncDropped("parse-error")
		s.logger.Debug("dropped unparseable datagram", zap.String("source", host), zap.Error(err))
		return
	}

	if !req.Code().IsRequest() {
		s.metrics.IncDropped("not-a-request")
		return
	}
	s.metrics.IncReceived(req.Code().String(), string(role))

	res, ok := defaultResponse(s.proxyState, role, req)
	if !ok {
		s.metrics.IncDropped("no-default-response")
		return
	}

	if req.Code() == radius.CodeStatusServer {
		s.send(ctx, tr, role, res, secret, addr)
		return
	}

	for _, h := range s.handlers {
		handled, err := h(ctx, role, req, res)
		if err != nil {
			s.logger.Warn("handler chain aborted", zap.Error(err))
			return
		}
		if handled {
			break
		}
	}

	s.send(ctx, tr, role, res, secret, addr)
}

func (s *Server) send(ctx context.Context, tr transport.Transport, role Role, res *radius.Packet, secret []byte, addr net.Addr) {
	wire, err := res.ToWire(secret, true)
	if err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
		return
	}
	if err := tr.Send(ctx, wire, addr); err != nil {
		s.logger.Warn("failed to send response", zap.Error(err))
		return
	}
	s.metrics.IncSent(res.Code().String(), string(role))
}

func addrIP(addr net.Addr) string {
	if udpAddr, ok := addr.(*net.UDPAddr); ok {
		return udpAddr.IP.String()
	}
	return addr.String()
}

// defaultResponse builds the response template from the default-response
// table, seeded with the request's identifier and
// authenticator, with the request's Proxy-State attributes copied onto it
// in order.
func defaultResponse(proxyState *dictionary.Entry, role Role, req *radius.Packet) (*radius.Packet, bool) {
	var code radius.Code
	switch {
	case role == RoleAuth && req.Code() == radius.CodeAccessRequest:
		code = radius.CodeAccessReject
	case role == RoleAuth && req.Code() == radius.CodeStatusServer:
		code = radius.CodeAccessAccept
	case role == RoleAcct && req.Code() == radius.CodeAccountingRequest:
		code = radius.CodeAccountingResponse
	default:
		return nil, false
	}

	res, err := radius.NewPacket(code, int(req.Identifier()), nil)
	if err != nil {
		return nil, false
	}
	reqAuth := req.Authenticator()
	if err := res.SetAuthenticator(reqAuth[:]); err != nil {
		return nil, false
	}
	for _, a := range req.GetAll(proxyState) {
		_ = res.Attributes().Add(a)
	}
	return res, true
}
