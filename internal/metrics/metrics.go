// Package metrics provides Prometheus metrics for the loader.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

var (
	// EventsTotal tracks inbound records by outcome
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ddsloader",
			Subsystem: "worker",
			Name:      "events_total",
			Help:      "Total number of inbound records by outcome",
		},
		[]string{"outcome"},
	)

	// SkippedTotal tracks skipped records by reason
	SkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ddsloader",
			Subsystem: "worker",
			Name:      "skipped_total",
			Help:      "Total number of skipped inbound records by reason",
		},
		[]string{"reason"},
	)

	// EventDuration tracks the time to fully process one accepted event
	EventDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ddsloader",
			Subsystem: "worker",
			Name:      "event_duration_seconds",
			Help:      "Duration of accepted event processing in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// BatchesTotal tracks batch runs by status
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ddsloader",
			Subsystem: "worker",
			Name:      "batches_total",
			Help:      "Total number of batch runs by status",
		},
		[]string{"status"},
	)

	// MessagesPublished tracks outbound counter messages by kind
	MessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ddsloader",
			Subsystem: "publisher",
			Name:      "messages_total",
			Help:      "Total number of counter messages published by kind",
		},
		[]string{"kind"},
	)
)
