// Package metrics provides Prometheus metrics for the coverage service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	MedicationsCreated prometheus.Counter
	MedicationsUpdated prometheus.Counter
	MedicationsDeleted prometheus.Counter
	LookupHits         prometheus.Counter
	LookupMisses       prometheus.Counter
	RequestDuration    prometheus.Histogram
	ChatRelayRequests  prometheus.Counter
	ChatRelayFailures  *prometheus.CounterVec
	ChatRelayDuration  prometheus.Histogram
	OutboxPending      prometheus.Gauge
}

// New creates and registers all metrics.
func New() *Metrics {
	m := &Metrics{
		MedicationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medications_created_total",
			Help: "Total medications created",
		}),
		MedicationsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medications_updated_total",
			Help: "Total medications updated",
		}),
		MedicationsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medications_deleted_total",
			Help: "Total medications deleted",
		}),
		LookupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medication_lookup_hits_total",
			Help: "Total successful medication lookups",
		}),
		LookupMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medication_lookup_misses_total",
			Help: "Total medication lookups with no match",
		}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "medication_request_duration_seconds",
			Help:    "Medication request handling duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		ChatRelayRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_relay_requests_total",
			Help: "Total chat relay requests",
		}),
		ChatRelayFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_relay_failures_total",
			Help: "Total chat relay failures by kind",
		}, []string{"kind"}),
		ChatRelayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_relay_upstream_duration_seconds",
			Help:    "Chat provider round-trip duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 16},
		}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_pending_entries",
			Help: "Pending outbox entries",
		}),
	}

	prometheus.MustRegister(
		m.MedicationsCreated,
		m.MedicationsUpdated,
		m.MedicationsDeleted,
		m.LookupHits,
		m.LookupMisses,
		m.RequestDuration,
		m.ChatRelayRequests,
		m.ChatRelayFailures,
		m.ChatRelayDuration,
		m.OutboxPending,
	)

	return m
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
