// Package metrics exposes the coordinator's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsTotal counts inbound events by type.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roomcast",
		Name:      "events_total",
		Help:      "Inbound events processed, by event type.",
	}, []string{"type"})

	// DeliveriesTotal counts outbound event deliveries to individual
	// connections.
	DeliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roomcast",
		Name:      "deliveries_total",
		Help:      "Outbound event deliveries.",
	})

	// DroppedEvents counts inbound events rejected because the hub queue
	// was full.
	DroppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roomcast",
		Name:      "dropped_events_total",
		Help:      "Inbound events dropped at the hub boundary.",
	})

	// ActiveConnections tracks live websocket connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "roomcast",
		Name:      "active_connections",
		Help:      "Currently open websocket connections.",
	})
)
