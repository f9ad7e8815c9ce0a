package domain

import (
	"context"

	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	invoicedomain "github.com/smallbiznis/causeway/internal/invoice/domain"
	recurringdomain "github.com/smallbiznis/causeway/internal/recurring/domain"
)

// ProcessResult carries everything a completed payment produced. Invoice
// and subscription are secondary outcomes: their absence never means the
// payment failed.
type ProcessResult struct {
	Donation           *donationdomain.Donation               `json:"donation"`
	Invoice            *invoicedomain.Invoice                 `json:"invoice,omitempty"`
	InvoiceEmailStatus invoicedomain.EmailStatus              `json:"invoice_email_status"`
	Subscription       *recurringdomain.RecurringSubscription `json:"subscription,omitempty"`
}

// Orchestrator runs a donation payment end to end: validate, tokenize,
// charge, persist, then invoice and enroll. The donation row is written
// only after the gateway reports success, and a recorded charge is never
// charged again.
type Orchestrator interface {
	ProcessPayment(ctx context.Context, draft donationdomain.DonationDraft, card Card) (*ProcessResult, error)
}
