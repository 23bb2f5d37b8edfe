package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Domain metrics
	AssignmentOperations *prometheus.CounterVec
	StatusTransitions    *prometheus.CounterVec
	PatientRejections    prometheus.Counter
	RepliesSent          *prometheus.CounterVec

	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
	OutboxBatchSize         prometheus.Gauge
	OutboxRetries           *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisLatency    *prometheus.HistogramVec
}

// New creates all application metrics and registers them with reg. A nil
// registerer leaves the metrics unregistered, which tests rely on.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),

		AssignmentOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assignments",
			Name:      "operations_total",
			Help:      "Assignment mutations by operation and discipline",
		}, []string{"operation", "discipline"}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "patients",
			Name:      "status_transitions_total",
			Help:      "Patient status changes by source and target status",
		}, []string{"from", "to"}),
		PatientRejections: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "patients",
			Name:      "rejections_total",
			Help:      "Total number of rejected patient referrals",
		}),
		RepliesSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "replies",
			Name:      "sent_total",
			Help:      "Replies sent to agencies by kind",
		}, []string{"kind"}),

		OutboxEventsProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_failed_total",
			Help:      "Total number of outbox events that exhausted their retries",
		}),
		OutboxProcessingLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "processing_duration_seconds",
			Help:      "Time spent processing an outbox batch",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		OutboxBatchSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "batch_size",
			Help:      "Number of events picked up by the last poll",
		}),
		OutboxRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "retry_attempts_total",
			Help:      "Total number of retry attempts for outbox events",
		}, []string{"event_type"}),

		RedisOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operations_total",
			Help:      "Total number of Redis operations",
		}, []string{"operation", "status"}),
		RedisLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operation_duration_seconds",
			Help:      "Duration of Redis operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		}, []string{"operation"}),
	}
}
