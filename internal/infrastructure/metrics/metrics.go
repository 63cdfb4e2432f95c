package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chatbot",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "api",
			Name:      "auth_requests_total",
			Help:      "Total authentication requests",
		},
		[]string{"operation", "status"},
	)

	ChatsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "api",
			Name:      "chats_created_total",
			Help:      "Total chats created",
		},
	)

	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chatbot",
			Subsystem: "api",
			Name:      "completion_duration_seconds",
			Help:      "Model completion duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model", "outcome"},
	)

	ActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "chatbot",
			Subsystem: "api",
			Name:      "active_streams",
			Help:      "Currently active streaming connections",
		},
		[]string{"model"},
	)

	AttachmentsStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "api",
			Name:      "attachments_stored_total",
			Help:      "Attachments stored, by file category",
		},
		[]string{"category"},
	)
)

// RecordRequest records an HTTP request with its duration.
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordAuthRequest records a register or login attempt.
func RecordAuthRequest(operation, status string) {
	AuthRequestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordCompletion records a finished model turn.
func RecordCompletion(model, outcome string, durationSec float64) {
	CompletionDuration.WithLabelValues(model, outcome).Observe(durationSec)
}
