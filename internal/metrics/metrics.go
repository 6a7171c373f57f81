// Package metrics registers the prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook outcome labels.
const (
	WebhookOutcomeConfirmed  = "confirmed"
	WebhookOutcomeDuplicate  = "duplicate"
	WebhookOutcomeRejected   = "rejected"
	WebhookOutcomeBadRequest = "bad_request"
	WebhookOutcomeError      = "error"
)

// WebhookOutcomes counts processed payment webhooks by final outcome.
var WebhookOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "uzeed_payment_webhooks_total",
	Help: "Payment webhook notifications by processing outcome.",
}, []string{"outcome"})

// PaymentsCreated counts payment creation attempts by result.
var PaymentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "uzeed_payments_created_total",
	Help: "Payment creation attempts by result.",
}, []string{"result"})
