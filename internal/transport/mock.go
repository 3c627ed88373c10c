package transport

import (
	"context"
	"net"
	"sync"
)

// MockTransport is a Transport test double that records Send calls and
// replays a queue of canned Receive results, so server/client unit tests
// can run without a live UDP socket.
type MockTransport struct {
	mu        sync.Mutex
	sendCalls []SendCall
	recvQueue []recvResult
	closed    bool
}

// SendCall records a single Send invocation.
type SendCall struct {
	Packet []byte
	Dest   net.Addr
}

type recvResult struct {
	data []byte
	addr net.Addr
	err  error
}

// NewMockTransport returns an empty MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Send records the call and always succeeds.
func (m *MockTransport) Send(_ context.Context, packet []byte, dest net.Addr) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendCalls = append(m.sendCalls, SendCall{
		Packet: append([]byte(nil), packet...),
		Dest:   dest,
	})
	return nil
}

// QueueReceive enqueues a result that the next Receive call returns.
func (m *MockTransport) QueueReceive(data []byte, addr net.Addr, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recvQueue = append(m.recvQueue, recvResult{data: data, addr: addr, err: err})
}

// Receive returns the next queued result, or blocks until ctx is done
// if the queue is empty.
func (m *MockTransport) Receive(ctx context.Context) ([]byte, net.Addr, error) {
	m.mu.Lock()
	if len(m.recvQueue) > 0 {
		r := m.recvQueue[0]
		m.recvQueue = m.recvQueue[1:]
		m.mu.Unlock()
		return r.data, r.addr, r.err
	}
	m.mu.Unlock()

	<-ctx.Done()
	return nil, nil, ctx.Err()
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SendCalls returns a copy of every recorded Send call, in order.
func (m *MockTransport) SendCalls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]SendCall, len(m.sendCalls))
	copy(calls, m.sendCalls)
	return calls
}

// Closed reports whether Close has been called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
