package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Inbound webhook events by type and outcome.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatpress",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Total webhook events processed",
		},
		[]string{"event_type", "status"},
	)

	// Event handling duration.
	EventDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chatpress",
			Subsystem: "webhook",
			Name:      "event_duration_seconds",
			Help:      "Webhook event handling duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"event_type"},
	)

	// Active sessions as reported by the store, when supported.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chatpress",
			Subsystem: "session",
			Name:      "active_total",
			Help:      "Active conversation sessions",
		},
	)
)
