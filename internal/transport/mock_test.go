package transport_test

import (
	"context"
	"net"
	"testing"

	"github.com/david-macharia/isc-radius/internal/transport"
)

func TestMockTransport_ImplementsTransportInterface(_ *testing.T) {
	var _ transport.Transport = (*transport.MockTransport)(nil)
}

func TestMockTransport_Send_RecordsCalls(t *testing.T) {
	mock := transport.NewMockTransport()
	defer func() { _ = mock.Close() }()

	ctx := context.Background()
	packet1 := []byte{0x01, 0x02}
	packet2 := []byte{0x03, 0x04}
	addr1 := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1812}
	addr2 := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1813}

	if err := mock.Send(ctx, packet1, addr1); err != nil {
		t.Fatalf("Send(packet1) failed: %v", err)
	}
	if err := mock.Send(ctx, packet2, addr2); err != nil {
		t.Fatalf("Send(packet2) failed: %v", err)
	}

	calls := mock.SendCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 Send() calls, got %d", len(calls))
	}
	if string(calls[0].Packet) != string(packet1) {
		t.Errorf("first call packet mismatch: got %v, want %v", calls[0].Packet, packet1)
	}
	if calls[0].Dest.String() != addr1.String() {
		t.Errorf("first call addr mismatch: got %v, want %v", calls[0].Dest, addr1)
	}
	if string(calls[1].Packet) != string(packet2) {
		t.Errorf("second call packet mismatch: got %v, want %v", calls[1].Packet, packet2)
	}
	if calls[1].Dest.String() != addr2.String() {
		t.Errorf("second call addr mismatch: got %v, want %v", calls[1].Dest, addr2)
	}
}

func TestMockTransport_QueueReceive_ReturnsQueuedResult(t *testing.T) {
	mock := transport.NewMockTransport()
	defer func() { _ = mock.Close() }()

	want := []byte{0xAA, 0xBB}
	wantAddr := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 1812}
	mock.QueueReceive(want, wantAddr, nil)

	data, addr, err := mock.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive() failed: %v", err)
	}
	if string(data) != string(want) {
		t.Errorf("Receive() data = %v, want %v", data, want)
	}
	if addr.String() != wantAddr.String() {
		t.Errorf("Receive() addr = %v, want %v", addr, wantAddr)
	}
}

func TestMockTransport_Receive_BlocksUntilContextDone(t *testing.T) {
	mock := transport.NewMockTransport()
	defer func() { _ = mock.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := mock.Receive(ctx)
	if err == nil {
		t.Error("Receive() with empty queue and canceled context should return an error")
	}
}

func TestMockTransport_Close_MarksClosed(t *testing.T) {
	mock := transport.NewMockTransport()
	if mock.Closed() {
		t.Fatal("Closed() = true before Close()")
	}
	if err := mock.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !mock.Closed() {
		t.Error("Closed() = false after Close()")
	}
}
