// Package metrics defines the Prometheus instruments shared by the server
// and client engines.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "radius"

// Label names shared across the instrument set.
const (
	labelCode   = "code"
	labelRole   = "role"
	labelReason = "reason"
)

// Metrics bundles every counter exported by the engine. A nil Registerer
// passed to New means the instruments are constructed but never registered,
// so unit tests can use a Metrics value without standing up a registry.
type Metrics struct {
	PacketsReceived *prometheus.CounterVec
	PacketsSent     *prometheus.CounterVec
	PacketsDropped  *prometheus.CounterVec
	ClientRetries   prometheus.Counter
	ClientTimeouts  prometheus.Counter
}

// New creates the instrument set and registers it against reg. reg may be
// nil, in which case registration is skipped entirely.
func New(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	if reg == nil {
		return m
	}
	reg.MustRegister(m.PacketsReceived, m.PacketsSent, m.PacketsDropped, m.ClientRetries, m.ClientTimeouts)
	return m
}

func newMetrics() *Metrics {
	return &Metrics{
		PacketsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_received_total",
			Help:      "RADIUS packets received, labeled by code and role (auth/acct).",
		}, []string{labelCode, labelRole}),
		PacketsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_sent_total",
			Help:      "RADIUS packets sent, labeled by code and role (auth/acct).",
		}, []string{labelCode, labelRole}),
		PacketsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_dropped_total",
			Help:      "RADIUS datagrams dropped, labeled by reason.",
		}, []string{labelReason}),
		ClientRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_retries_total",
			Help:      "Client retry attempts across all servers.",
		}),
		ClientTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_timeouts_total",
			Help:      "Client requests that exhausted retry*server_count attempts.",
		}),
	}
}

// IncReceived increments the received-packet counter for code/role.
func (m *Metrics) IncReceived(code, role string) { m.PacketsReceived.WithLabelValues(code, role).Inc() }

// IncSent increments the sent-packet counter for code/role.
func (m *Metrics) IncSent(code, role string) { m.PacketsSent.WithLabelValues(code, role).Inc() }

// IncDropped increments the dropped-datagram counter for reason.
func (m *Metrics) IncDropped(reason string) { m.PacketsDropped.WithLabelValues(reason).Inc() }
