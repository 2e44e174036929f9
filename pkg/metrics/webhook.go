package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records processing metadata for payment-provider deliveries.
type WebhookMetrics struct {
	duration *prometheus.HistogramVec
	events   *prometheus.CounterVec
	lines    *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_handle_duration_seconds",
		Help:    "Duration of webhook delivery handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Webhook deliveries by event type and outcome.",
	}, []string{"event_type", "outcome"})
	lines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_line_items_total",
		Help: "Reconciled cart line items by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, events, lines)
	return &WebhookMetrics{
		duration: duration,
		events:   events,
		lines:    lines,
	}
}

// ObserveDuration records the handling duration for the given event type.
func (m *WebhookMetrics) ObserveDuration(eventType string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// IncEvent increments the delivery counter for the event type and outcome.
func (m *WebhookMetrics) IncEvent(eventType, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// IncLine increments the reconciled line-item counter for the outcome.
func (m *WebhookMetrics) IncLine(outcome string) {
	m.AddLines(outcome, 1)
}

// AddLines adds a batch of reconciled line items under one outcome.
func (m *WebhookMetrics) AddLines(outcome string, count int) {
	if m == nil || m.lines == nil || count <= 0 {
		return
	}
	m.lines.WithLabelValues(normalizeLabel(outcome)).Add(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
