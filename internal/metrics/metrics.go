// Package metrics exposes the server's runtime counters as Prometheus
// collectors, scraped by the admin API's /metrics route (C15). Every
// other package updates the package-level collector variables here
// instead of touching a *prometheus.Registry directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

var (
	ConnectedPlayers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "classicd",
		Name:      "connected_players",
		Help:      "Number of players currently connected.",
	})

	PacketsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classicd",
		Name:      "packets_received_total",
		Help:      "Inbound packets processed, by packet id.",
	}, []string{"packet_id"})

	PacketsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classicd",
		Name:      "packets_sent_total",
		Help:      "Outbound packets written, by packet id.",
	}, []string{"packet_id"})

	BlockUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classicd",
		Name:      "block_updates_total",
		Help:      "Block placements/breaks applied across all worlds.",
	})

	WorldSaves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classicd",
		Name:      "world_saves_total",
		Help:      "World save attempts, by result (ok/error).",
	}, []string{"result"})

	BytesPerConnection = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "classicd",
		Name:      "connection_bytes_total",
		Help:      "Cumulative bytes seen per connection.",
	}, []string{"direction", "username"})
)

// Registry holds every collector declared above, all registered by this
// package's init; internal/adminapi serves it.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		ConnectedPlayers,
		PacketsReceived,
		PacketsSent,
		BlockUpdates,
		WorldSaves,
		BytesPerConnection,
	)
}

// SumCounterVec totals every label combination of cv, for callers (the
// net-info sampler) that need a single running count rather than a
// per-label breakdown.
func SumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 256)
	cv.Collect(ch)
	close(ch)

	var total float64
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil || pb.Counter == nil {
			continue
		}
		total += pb.Counter.GetValue()
	}
	return total
}
