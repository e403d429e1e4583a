package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Webhook delivery outcomes used as the result label.
const (
	WebhookResultVerified     = "verified"
	WebhookResultFailed       = "failed"
	WebhookResultNoop         = "noop"
	WebhookResultBadSignature = "bad_signature"
	WebhookResultError        = "error"
)

// WebhookMetrics records gateway notification handling.
type WebhookMetrics struct {
	deliveries *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_deliveries_total",
		Help: "Payment gateway webhook deliveries by outcome.",
	}, []string{"result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_webhook_duration_seconds",
		Help:    "Duration of webhook handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	reg.MustRegister(deliveries, duration)
	return &WebhookMetrics{
		deliveries: deliveries,
		duration:   duration,
	}
}

// ObserveDelivery records one handled delivery with its outcome and duration.
func (w *WebhookMetrics) ObserveDelivery(result string, elapsed time.Duration) {
	if w == nil || w.deliveries == nil {
		return
	}
	w.deliveries.WithLabelValues(result).Inc()
	w.duration.WithLabelValues(result).Observe(elapsed.Seconds())
}
