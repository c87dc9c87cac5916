package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
	OutcomeBusy    = "busy"
)

// BillingSyncMetrics tracks pushes of catalog products to the billing provider.
type BillingSyncMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewBillingSyncMetrics registers billing_sync_total and billing_sync_duration_seconds.
func NewBillingSyncMetrics(reg prometheus.Registerer) *BillingSyncMetrics {
	if reg == nil {
		return &BillingSyncMetrics{}
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_sync_total",
		Help: "Billing provider sync attempts by provider and outcome.",
	}, []string{"provider", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "billing_sync_duration_seconds",
		Help:    "Duration of billing provider sync attempts in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
	}, []string{"provider"})
	reg.MustRegister(total, duration)
	return &BillingSyncMetrics{total: total, duration: duration}
}

// Observe records one sync attempt.
func (m *BillingSyncMetrics) Observe(provider, outcome string, elapsed time.Duration) {
	if m == nil || m.total == nil {
		return
	}
	provider = normalizeLabel(provider)
	m.total.WithLabelValues(provider, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// OutboxMetrics tracks billing-sync-worker event handling.
type OutboxMetrics struct {
	events *prometheus.CounterVec
	batch  prometheus.Histogram
}

const (
	EventPublished    = "published"
	EventRetried      = "retried"
	EventDeadLettered = "dead_lettered"
	EventDuplicate    = "duplicate"
)

// NewOutboxMetrics registers the worker counters.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_total",
		Help: "Outbox events handled by result.",
	}, []string{"event_type", "result"})
	batch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_size",
		Help:    "Number of events fetched per poll.",
		Buckets: prometheus.LinearBuckets(0, 5, 11),
	})
	reg.MustRegister(events, batch)
	return &OutboxMetrics{events: events, batch: batch}
}

// IncEvent counts one handled event.
func (m *OutboxMetrics) IncEvent(eventType, result string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}

// ObserveBatch records how many events a poll returned.
func (m *OutboxMetrics) ObserveBatch(size int) {
	if m == nil || m.batch == nil {
		return
	}
	m.batch.Observe(float64(size))
}
