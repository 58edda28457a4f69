package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resv_bookings_total",
			Help: "Booking attempts by result (created, conflict, invalid, error)",
		},
		[]string{"result"},
	)

	CancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resv_cancellations_total",
			Help: "Cancellation attempts by result (cancelled, not_found, error)",
		},
		[]string{"result"},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resv_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resv_outbox_lag_seconds",
			Help: "Age of the oldest unpublished outbox record",
		},
	)

	RabbitPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resv_rabbit_publish_retries_total",
			Help: "Total rabbit publish retries",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resv_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resv_cache_hits_total",
			Help: "Catalog cache lookups by outcome (hit, miss)",
		},
		[]string{"outcome"},
	)
)
