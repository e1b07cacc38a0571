package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vibesync_realtime_clients_connected",
			Help: "Currently connected realtime clients",
		},
	)

	EventsFannedOut = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesync_realtime_events_total",
			Help: "Realtime events delivered to client buffers",
		},
		[]string{"type"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesync_realtime_events_dropped_total",
			Help: "Realtime events dropped because a client buffer was full",
		},
		[]string{"type"},
	)

	MessagesSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vibesync_chat_messages_saved_total",
			Help: "Chat messages persisted",
		},
	)

	TasksGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesync_tasks_generated_total",
			Help: "Daily tasks created",
		},
		[]string{"source"}, // "ai" or "fallback"
	)
)
