package observer

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsEnabled = true // Flag to control metric collection

	// Labels for intake event metrics
	eventProcessingLabels = []string{"event_type", "consumer_type"}
	// Labels for tracking specific processing actions
	eventActionLabels = []string{"event_type", "consumer_type", "action", "error_type"}

	EventsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agency_core_intake_events_received_total",
			Help: "Total number of intake events received from NATS, labeled by consumer type.",
		},
		eventProcessingLabels,
	)
	EventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agency_core_intake_events_processed_total",
			Help: "Total number of intake events successfully processed and acknowledged.",
		},
		eventProcessingLabels,
	)
	EventsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agency_core_intake_events_failed_total",
			Help: "Total number of intake events that failed processing (resulting in Nack or error).",
		},
		eventProcessingLabels,
	)
	EventProcessingDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agency_core_intake_event_processing_duration_seconds",
			Help:    "Histogram of intake event processing durations.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		eventProcessingLabels,
	)
	EventProcessingActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agency_core_intake_event_processing_actions_total",
			Help: "Total count of ack/nak/dlq actions taken after event processing, labeled by error type.",
		},
		eventActionLabels,
	)
)

var (
	dbOperationLabels = []string{"operation", "entity", "status"}

	DatabaseOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agency_core_db_operation_duration_seconds",
			Help:    "Histogram of database operation durations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		dbOperationLabels,
	)

	FieldValueUpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agency_core_field_value_upserts_total",
			Help: "Total number of field value writes, labeled by source and outcome.",
		},
		[]string{"source", "status"},
	)

	ExternalCallDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agency_core_external_call_duration_seconds",
			Help:    "Histogram of calls to AI and voice providers.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"provider", "operation", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agency_core_http_requests_total",
			Help: "Total number of HTTP requests, labeled by route and status code.",
		},
		[]string{"method", "route", "code"},
	)
)

// --- DLQ Worker Metrics ---
var (
	DlqTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agency_core_dlq_tasks_total",
			Help: "Total number of DLQ messages handled by the re-drive worker, labeled by outcome.",
		},
		[]string{"outcome"},
	)
	DlqProcessingDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agency_core_dlq_processing_duration_seconds",
			Help:    "Histogram of DLQ message re-drive durations.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
)

// --- Load Generator Metrics ---
var (
	loadgenLabels = []string{"subject"}

	loadgenMessagesAttemptedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadgen_messages_attempted_total",
			Help: "Total number of messages the load generator attempted to publish.",
		},
		loadgenLabels,
	)
	loadgenMessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadgen_messages_published_total",
			Help: "Total number of messages successfully published by the load generator.",
		},
		loadgenLabels,
	)
	loadgenPublishErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadgen_publish_errors_total",
			Help: "Total number of errors encountered by the load generator during publishing.",
		},
		loadgenLabels,
	)
)

// InitMetrics toggles metric collection. Call this function during application startup.
func InitMetrics(enabled bool) {
	metricsEnabled = enabled
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// IncEventsReceived increments the events received counter.
func IncEventsReceived(eventType, consumerType string) {
	if !metricsEnabled {
		return
	}
	EventsReceivedTotal.WithLabelValues(eventType, consumerType).Inc()
}

// IncEventsProcessed increments the events processed counter.
func IncEventsProcessed(eventType, consumerType string) {
	if !metricsEnabled {
		return
	}
	EventsProcessedTotal.WithLabelValues(eventType, consumerType).Inc()
}

// IncEventsFailed increments the events failed counter.
func IncEventsFailed(eventType, consumerType string) {
	if !metricsEnabled {
		return
	}
	EventsFailedTotal.WithLabelValues(eventType, consumerType).Inc()
}

// ObserveEventProcessingDuration records the processing time for a specific event.
func ObserveEventProcessingDuration(eventType, consumerType string, duration time.Duration) {
	if !metricsEnabled {
		return
	}
	EventProcessingDurationSeconds.WithLabelValues(eventType, consumerType).Observe(duration.Seconds())
}

// IncEventProcessingAction increments the counter for a specific processing outcome.
func IncEventProcessingAction(eventType, consumerType, action, errorType string) {
	if !metricsEnabled {
		return
	}
	EventProcessingActionsTotal.WithLabelValues(eventType, consumerType, action, SanitizeErrorType(errorType)).Inc()
}

// ObserveDbOperationDuration records the duration for a database operation.
func ObserveDbOperationDuration(operation, entity string, duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	DatabaseOperationDurationSeconds.WithLabelValues(operation, entity, statusLabel(err)).Observe(duration.Seconds())
}

// IncFieldValueUpsert counts a field value write.
func IncFieldValueUpsert(source string, err error) {
	if !metricsEnabled {
		return
	}
	FieldValueUpsertsTotal.WithLabelValues(source, statusLabel(err)).Inc()
}

// ObserveExternalCall records the duration of a provider call.
func ObserveExternalCall(provider, operation string, duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	ExternalCallDurationSeconds.WithLabelValues(provider, operation, statusLabel(err)).Observe(duration.Seconds())
}

// IncHTTPRequest counts a served HTTP request.
func IncHTTPRequest(method, route, code string) {
	if !metricsEnabled {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
}

// SanitizeErrorType maps specific errors or provides a default category.
// Keep this simple to avoid high cardinality.
func SanitizeErrorType(errStr string) string {
	if errStr == "" || errStr == "none" {
		return "none"
	}

	errStr = strings.ToLower(errStr)
	switch {
	case strings.Contains(errStr, "database"), strings.Contains(errStr, "sql"), strings.Contains(errStr, "duplicate"), strings.Contains(errStr, "constraint"), strings.Contains(errStr, "connection"):
		return "database"
	case strings.Contains(errStr, "validation failed"), strings.Contains(errStr, "bad request"), strings.Contains(errStr, "invalid"), strings.Contains(errStr, "missing field"):
		return "validation"
	case strings.Contains(errStr, "not found"), strings.Contains(errStr, "no rows"):
		return "not_found"
	case strings.Contains(errStr, "nats"), strings.Contains(errStr, "jetstream"):
		return "nats"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return "timeout"
	case strings.Contains(errStr, "unmarshal"), strings.Contains(errStr, "json"):
		return "unmarshal"
	case strings.Contains(errStr, "panic"):
		return "panic"
	default:
		return "unknown"
	}
}

// IncDlqTask counts a DLQ message outcome (redriven, retry, exhausted, parked, dropped).
func IncDlqTask(outcome string) {
	if !metricsEnabled {
		return
	}
	DlqTasksTotal.WithLabelValues(outcome).Inc()
}

// ObserveDlqProcessingDuration records the time spent re-driving one DLQ message.
func ObserveDlqProcessingDuration(duration time.Duration) {
	if !metricsEnabled {
		return
	}
	DlqProcessingDurationSeconds.Observe(duration.Seconds())
}

// --- Load Generator Metric Helpers ---

// IncLoadgenMessagesAttempted increments the counter for attempted message publications.
func IncLoadgenMessagesAttempted(subject string) {
	if metricsEnabled {
		loadgenMessagesAttemptedTotal.WithLabelValues(subject).Inc()
	}
}

// IncLoadgenMessagesPublished increments the counter for successfully published messages.
func IncLoadgenMessagesPublished(subject string) {
	if metricsEnabled {
		loadgenMessagesPublishedTotal.WithLabelValues(subject).Inc()
	}
}

// IncLoadgenPublishErrors increments the counter for publishing errors.
func IncLoadgenPublishErrors(subject string) {
	if metricsEnabled {
		loadgenPublishErrorsTotal.WithLabelValues(subject).Inc()
	}
}
