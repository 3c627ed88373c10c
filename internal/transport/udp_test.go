package transport_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/david-macharia/isc-radius/internal/transport"
)

func TestUDPv4Transport_ImplementsTransportInterface(_ *testing.T) {
	var _ transport.Transport = (*transport.UDPv4Transport)(nil)
}

func TestUDPv4Transport_SendAndReceive_RoundTrip(t *testing.T) {
	server, err := transport.NewUDPv4Transport(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("NewUDPv4Transport(server) failed: %v", err)
	}
	defer func() { _ = server.Close() }()

	client, err := transport.NewUDPv4Transport(nil)
	if err != nil {
		t.Fatalf("NewUDPv4Transport(client) failed: %v", err)
	}
	defer func() { _ = client.Close() }()

	payload := []byte{0x01, 0x02, 0x03, 0x04}
	ctx := context.Background()
	if err := client.Send(ctx, payload, server.LocalAddr()); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	recvCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	data, addr, err := server.Receive(recvCtx)
	if err != nil {
		t.Fatalf("Receive() failed: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("Receive() data = %v, want %v", data, payload)
	}
	if addr == nil {
		t.Error("Receive() addr = nil, want sender address")
	}
}

func TestUDPv4Transport_Receive_RespectsContextCancellation(t *testing.T) {
	tr, err := transport.NewUDPv4Transport(nil)
	if err != nil {
		t.Fatalf("NewUDPv4Transport() failed: %v", err)
	}
	defer func() { _ = tr.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, _, err = tr.Receive(ctx)
	duration := time.Since(start)

	if err == nil {
		t.Error("Receive() should return error when context is canceled")
	}
	if duration > 100*time.Millisecond {
		t.Errorf("Receive() took too long (%v) to detect cancellation", duration)
	}
}

func TestUDPv4Transport_Receive_PropagatesContextDeadline(t *testing.T) {
	tr, err := transport.NewUDPv4Transport(nil)
	if err != nil {
		t.Fatalf("NewUDPv4Transport() failed: %v", err)
	}
	defer func() { _ = tr.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err = tr.Receive(ctx)
	duration := time.Since(start)

	if err == nil {
		t.Fatal("Receive() on an idle socket should time out")
	}
	if duration > 200*time.Millisecond {
		t.Errorf("Receive() took too long (%v) to time out, expected ~50ms", duration)
	}
}

func TestUDPv4Transport_Close_PropagatesErrors(t *testing.T) {
	tr, err := transport.NewUDPv4Transport(nil)
	if err != nil {
		t.Fatalf("NewUDPv4Transport() failed: %v", err)
	}

	if err := tr.Close(); err != nil {
		t.Errorf("first Close() should succeed, got error: %v", err)
	}
	if err := tr.Close(); err == nil {
		t.Error("second Close() should return error (socket already closed)")
	}
}

func TestBufferPool_GetPutRoundTrip(t *testing.T) {
	bufPtr := transport.GetBuffer()
	if bufPtr == nil {
		t.Fatal("GetBuffer() returned nil")
	}
	buf := *bufPtr
	buf[0] = 0xAA
	transport.PutBuffer(bufPtr)

	bufPtr2 := transport.GetBuffer()
	defer transport.PutBuffer(bufPtr2)
	if bufPtr2 == nil {
		t.Fatal("GetBuffer() after Put() returned nil")
	}
}

func BenchmarkUDPv4Transport_ReceivePath(b *testing.B) {
	tr, err := transport.NewUDPv4Transport(nil)
	if err != nil {
		b.Fatalf("NewUDPv4Transport() failed: %v", err)
	}
	defer func() { _ = tr.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, _ = tr.Receive(ctx)
	}
}
