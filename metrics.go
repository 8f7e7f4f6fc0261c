package boschalarm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors a Panel updates over its
// lifetime. Callers who don't need metrics can ignore this type entirely
// — nothing in the package requires registering it.
//
// Each Metrics owns a private registry rather than registering against
// prometheus.DefaultRegisterer: a process may run more than one Panel (one
// per site, say), and the teacher's promauto-against-the-default-registry
// pattern assumes a single process-wide instance, which doesn't hold here.
type Metrics struct {
	Registry *prometheus.Registry

	ConnectionState *prometheus.GaugeVec
	CommandDuration *prometheus.HistogramVec
	NackTotal       *prometheus.CounterVec
	DecodeErrors    *prometheus.CounterVec
	Reconnects      *prometheus.CounterVec
}

// NewMetrics creates a Panel's Prometheus collectors, registered against a
// fresh private registry returned as Metrics.Registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	fac := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		ConnectionState: fac.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "boschalarm_connection_state",
				Help: "1 if the panel connection is up, 0 otherwise",
			},
			[]string{"addr"},
		),
		CommandDuration: fac.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boschalarm_command_duration_seconds",
				Help:    "Round-trip duration of a command sent through the multiplexer",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		NackTotal: fac.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boschalarm_nack_total",
				Help: "Total number of commands rejected by the panel with a NACK",
			},
			[]string{"command"},
		),
		DecodeErrors: fac.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boschalarm_decode_errors_total",
				Help: "Total number of history or enum decode failures",
			},
			[]string{"context"},
		),
		Reconnects: fac.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boschalarm_reconnects_total",
				Help: "Total number of supervisor-initiated reconnects",
			},
			[]string{"reason"},
		),
	}
}
