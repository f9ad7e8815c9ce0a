package pdf

import "context"

// ReceiptData is everything the donation receipt PDF needs.
type ReceiptData struct {
	OrgName    string
	OrgAddress string
	OrgEmail   string

	InvoiceNumber string
	IssueDate     string
	Revision      int

	DonorName    string
	DonorEmail   string
	DonorAddress string
	DonorTaxID   string

	AmountDisplay string
	DonationType  string
	CampaignRef   string

	TaxExemption    bool
	TaxSectionLabel string
}

type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateReceipt(ctx context.Context, data ReceiptData) ([]byte, error) {
	return nil, nil
}
