// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// InferenceDuration tracks chat completion round-trip duration.
	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_duration_seconds",
			Help:    "Chat completion round-trip duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"model", "status"},
	)

	// InferenceTokensTotal tracks tokens reported by the inference endpoint.
	InferenceTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_tokens_total",
			Help: "Total tokens reported by the inference endpoint",
		},
		[]string{"model", "direction"},
	)

	// InferenceInFlight tracks sends waiting on the inference endpoint.
	InferenceInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inference_in_flight",
			Help: "Number of sends waiting on the inference endpoint",
		},
	)

	// ConversationsTotal tracks total conversations created.
	ConversationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_total",
			Help: "Total conversations created",
		},
	)

	// ConversationsStored tracks the number of stored conversations.
	ConversationsStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversations_stored",
			Help: "Number of conversations currently stored",
		},
	)

	// MessagesTotal tracks total messages appended.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages appended to conversations",
		},
		[]string{"role"},
	)

	// PersistDuration tracks state file write duration.
	PersistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "persist_duration_seconds",
			Help:    "State file write duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"file", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordInference records metrics for a chat completion round trip.
func RecordInference(model, status string, duration float64, tokensIn, tokensOut int) {
	InferenceDuration.WithLabelValues(model, status).Observe(duration)
	if tokensIn > 0 {
		InferenceTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	}
	if tokensOut > 0 {
		InferenceTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
	}
}

// RecordPersist records metrics for a state file write.
func RecordPersist(file string, err error, duration float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	PersistDuration.WithLabelValues(file, status).Observe(duration)
}
