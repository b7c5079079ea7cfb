package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomePersisted     = "persisted"
	OutcomeRejected      = "rejected"
	OutcomeStorageFailed = "storage_failed"
)

var (
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_ingest_messages_total",
			Help: "Total number of messages processed, by outcome",
		},
		[]string{"outcome"},
	)

	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_ingest_rejections_total",
			Help: "Total number of rejected messages, by rejection kind",
		},
		[]string{"kind"},
	)

	MessageBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telemetry_ingest_message_bytes_total",
			Help: "Total bytes of payload received",
		},
	)

	OutOfOrderTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telemetry_ingest_out_of_order_total",
			Help: "Accepted events older than the device's last seen timestamp",
		},
	)

	StorageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telemetry_ingest_storage_duration_seconds",
			Help:    "Duration of store writes in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
	)

	StorageRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telemetry_ingest_storage_retries_total",
			Help: "Total number of retried store writes",
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "telemetry_ingest_queue_depth",
			Help: "Current depth of the ingestion queue",
		},
	)

	QueueCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "telemetry_ingest_queue_capacity",
			Help: "Maximum capacity of the ingestion queue",
		},
	)

	QueueDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telemetry_ingest_queue_dropped_total",
			Help: "Messages not enqueued before the enqueue timeout",
		},
	)

	SessionConnected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "telemetry_ingest_session_connected",
			Help: "1 while the subscriber session is connected",
		},
		[]string{"transport"},
	)
)
