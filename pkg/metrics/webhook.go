package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records deliveries as they move through the pipeline.
type WebhookMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	scans    *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_duration_seconds",
		Help:    "Duration of webhook deliveries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries",
		Help: "Webhook deliveries by topic and outcome.",
	}, []string{"topic", "outcome"})
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ticket_scans",
		Help: "Ticket scan attempts by result.",
	}, []string{"result"})
	reg.MustRegister(duration, outcomes, scans)
	return &WebhookMetrics{
		duration: duration,
		outcomes: outcomes,
		scans:    scans,
	}
}

// ObserveDuration records the processing time for the given topic.
func (m *WebhookMetrics) ObserveDuration(topic string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(topic)).Observe(duration.Seconds())
}

// IncDelivery increments the delivery counter for a topic and outcome.
func (m *WebhookMetrics) IncDelivery(topic, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(topic), normalizeLabel(outcome)).Inc()
}

// IncScan increments the ticket scan counter for the given result.
func (m *WebhookMetrics) IncScan(result string) {
	if m == nil || m.scans == nil {
		return
	}
	m.scans.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
