package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/david-macharia/isc-radius/internal/metrics"
)

func TestNew_RegistersAllInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	if m.PacketsReceived == nil || m.PacketsSent == nil || m.PacketsDropped == nil {
		t.Fatal("New() returned nil counter vectors")
	}

	m.IncReceived("Access-Request", "auth")
	m.IncSent("Access-Reject", "auth")
	m.IncDropped("unknown-client")

	if _, err := reg.Gather(); err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
}

func TestNew_NilRegistererSkipsRegistration(t *testing.T) {
	m := metrics.New(nil)
	if m == nil {
		t.Fatal("New(nil) returned nil")
	}
	m.IncReceived("Access-Request", "auth")
}
