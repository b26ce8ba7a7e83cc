// File: /observability/metrics.go
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsSubmitted counts registration submissions by outcome.
	RegistrationsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfc_registrations_submitted_total",
		Help: "Total registration submissions by outcome",
	}, []string{"outcome"})

	// UploadsRejected counts uploads refused before reaching storage.
	UploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfc_uploads_rejected_total",
		Help: "Total uploads rejected by validation",
	}, []string{"reason"})

	// EventActivations counts activate/deactivate attempts by outcome.
	EventActivations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfc_event_activations_total",
		Help: "Total event activation changes by outcome",
	}, []string{"outcome"})

	// ActiveEvents is the number of events flagged active at the last audit.
	ActiveEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cfc_active_events",
		Help: "Number of events flagged active at the last audit",
	})

	// RequestDuration records HTTP latency by route and status class.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cfc_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveRequest records the latency of a finished request.
func ObserveRequest(method, route, status string, start time.Time) {
	if route == "" {
		route = "unmatched"
	}
	RequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}
