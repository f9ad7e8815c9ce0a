package domain

import (
	"context"

	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
)

// EmailStatus reports whether the invoice email went out with the response.
type EmailStatus string

const (
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusPending EmailStatus = "pending"
)

// Result pairs an invoice with the delivery outcome of its email.
type Result struct {
	Invoice     *Invoice    `json:"invoice"`
	EmailStatus EmailStatus `json:"email_status"`
}

// Service issues and re-issues invoices. Generation is idempotent per
// donation: one invoice row ever exists for a donation id.
type Service interface {
	// GenerateAndSend creates the invoice for a donation (or reuses the
	// existing one) and emails it. Email failure is reported in the
	// result, never as a hard error, and leaves EmailSent false so the
	// send can be retried.
	GenerateAndSend(ctx context.Context, donation *donationdomain.Donation) (Result, error)

	// Resend emails an existing invoice again.
	Resend(ctx context.Context, invoiceID string) (Result, error)

	// Regenerate rebuilds the invoice document after donor-detail
	// corrections. Invoice number and donation linkage are preserved;
	// only the content revision advances.
	Regenerate(ctx context.Context, invoiceID string) (*Invoice, error)

	// Download renders the invoice PDF.
	Download(ctx context.Context, invoiceID string) ([]byte, error)

	Get(ctx context.Context, invoiceID string) (*Invoice, error)
	GetByDonationID(ctx context.Context, donationID string) (*Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]Invoice, error)
}
