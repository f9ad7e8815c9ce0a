// Package metrics registers the Prometheus instruments shared across the
// payment pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

type Metrics struct {
	PaymentsSucceeded    prometheus.Counter
	PaymentsFailed       *prometheus.CounterVec
	ReconciliationNeeded prometheus.Counter
	ConfirmTimeouts      prometheus.Counter
	InvoiceEmails        *prometheus.CounterVec
	RecurringCharges     *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		PaymentsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "causeway_payments_succeeded_total",
			Help: "Donation payments that completed and were recorded.",
		}),
		PaymentsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "causeway_payments_failed_total",
			Help: "Donation payments that failed, by failure class.",
		}, []string{"reason"}),
		ReconciliationNeeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "causeway_payments_reconciliation_needed_total",
			Help: "Charges that succeeded at the gateway but could not be recorded.",
		}),
		ConfirmTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "causeway_confirmation_timeouts_total",
			Help: "Confirmation polls that exhausted their attempts.",
		}),
		InvoiceEmails: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "causeway_invoice_emails_total",
			Help: "Invoice email deliveries, by outcome.",
		}, []string{"outcome"}),
		RecurringCharges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "causeway_recurring_charges_total",
			Help: "Recurring charge attempts, by outcome.",
		}, []string{"outcome"}),
	}
}

// Module provides the metrics registry.
var Module = fx.Module("metrics", fx.Provide(New))
