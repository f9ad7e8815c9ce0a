package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/causeway/internal/clock"
	"github.com/smallbiznis/causeway/internal/config"
	countrydomain "github.com/smallbiznis/causeway/internal/countryconfig/domain"
	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	"github.com/smallbiznis/causeway/internal/invoice/domain"
	"github.com/smallbiznis/causeway/internal/invoice/format"
	"github.com/smallbiznis/causeway/internal/metrics"
	"github.com/smallbiznis/causeway/internal/providers/email"
	"github.com/smallbiznis/causeway/internal/providers/pdf"
	"github.com/smallbiznis/causeway/pkg/db"
)

// ServiceParam defines dependencies for the invoice service.
type ServiceParam struct {
	fx.In

	Config    config.Config
	DB        *gorm.DB
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Donations donationdomain.Repository
	Countries countrydomain.Service
	Email     email.Provider
	PDF       pdf.Provider
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

type invoiceService struct {
	cfg       config.Config
	db        *gorm.DB
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	donations donationdomain.Repository
	countries countrydomain.Service
	email     email.Provider
	pdf       pdf.Provider
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewService creates the invoice service.
func NewService(p ServiceParam) domain.Service {
	return &invoiceService{
		cfg:       p.Config,
		db:        p.DB,
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		donations: p.Donations,
		countries: p.Countries,
		email:     p.Email,
		pdf:       p.PDF,
		metrics:   p.Metrics,
		log:       p.Log.Named("invoice.service"),
	}
}

func (s *invoiceService) GenerateAndSend(ctx context.Context, donation *donationdomain.Donation) (domain.Result, error) {
	if donation == nil || donation.PaymentStatus != donationdomain.PaymentStatusSucceeded {
		return domain.Result{}, domain.ErrInvoiceNotFound
	}

	invoice, err := s.ensureInvoice(ctx, donation)
	if err != nil {
		return domain.Result{}, err
	}

	status := domain.EmailStatusSent
	if !invoice.EmailSent {
		if err := s.deliver(ctx, invoice, donation); err != nil {
			s.metrics.InvoiceEmails.WithLabelValues("failed").Inc()
			s.log.Warn("invoice email deferred",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err),
			)
			status = domain.EmailStatusPending
		} else {
			s.metrics.InvoiceEmails.WithLabelValues("sent").Inc()
		}
	}

	return domain.Result{Invoice: invoice, EmailStatus: status}, nil
}

// issueAttempts bounds re-allocation when concurrent first invoices of a
// year collide on the sequence row or the invoice number.
const issueAttempts = 3

// ensureInvoice creates the invoice row for a donation, or returns the one
// already written. Sequence allocation and insert share a transaction so a
// lost race never burns a number on a duplicate row.
func (s *invoiceService) ensureInvoice(ctx context.Context, donation *donationdomain.Donation) (*domain.Invoice, error) {
	existing, err := s.repo.FindByDonationID(ctx, s.db, donation.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	country, resolveErr := s.countries.Resolve(ctx, donation.Donor.Country)
	taxExemption := resolveErr == nil && country.TaxBenefit

	// A duplicate key does not always mean this donation's invoice exists:
	// the collision can be on the sequence table's year row or the invoice
	// number. Refetch to tell the cases apart; when no row exists for this
	// donation the allocation itself lost a race and must run again.
	for attempt := 0; attempt < issueAttempts; attempt++ {
		invoice, txErr := s.issue(ctx, donation, taxExemption)
		if txErr == nil {
			s.log.Info("invoice issued",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.String("donation_id", donation.ID.String()),
			)
			return invoice, nil
		}
		if !db.IsDuplicateKeyErr(txErr) {
			return nil, txErr
		}
		existing, err := s.repo.FindByDonationID(ctx, s.db, donation.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("issue invoice for donation %s: %w", donation.ID, gorm.ErrDuplicatedKey)
}

func (s *invoiceService) issue(ctx context.Context, donation *donationdomain.Donation, taxExemption bool) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		seq, err := s.repo.NextSequence(ctx, tx, now.Year())
		if err != nil {
			return err
		}
		number, err := format.FormatInvoiceNumber(s.cfg.InvoiceNumberTemplate, now, seq)
		if err != nil {
			return err
		}

		invoice = &domain.Invoice{
			ID:                     s.genID.Generate(),
			InvoiceNumber:          number,
			DonationID:             donation.ID,
			TaxExemptionApplicable: taxExemption,
			ContentRevision:        1,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		return s.repo.Create(ctx, tx, invoice)
	})
	if txErr != nil {
		return nil, txErr
	}
	return invoice, nil
}

// deliver renders the receipt and emails it, then marks the invoice sent.
// EmailSent only ever moves false to true.
func (s *invoiceService) deliver(ctx context.Context, invoice *domain.Invoice, donation *donationdomain.Donation) error {
	data := s.receiptData(ctx, invoice, donation)

	if _, err := s.pdf.GenerateReceipt(ctx, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmailDelivery, err)
	}

	payload := map[string]interface{}{
		"donor_name":        data.DonorName,
		"invoice_number":    invoice.InvoiceNumber,
		"issued_on":         data.IssueDate,
		"amount_display":    data.AmountDisplay,
		"tax_exemption":     invoice.TaxExemptionApplicable,
		"tax_section_label": data.TaxSectionLabel,
	}
	if err := s.email.SendTemplate(ctx, []string{donation.Donor.Email}, "donation_receipt", payload); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmailDelivery, err)
	}

	now := s.clock.Now()
	invoice.EmailSent = true
	invoice.EmailSentAt = &now
	invoice.UpdatedAt = now
	return s.repo.Update(ctx, s.db, invoice)
}

func (s *invoiceService) Resend(ctx context.Context, invoiceID string) (domain.Result, error) {
	invoice, donation, err := s.load(ctx, invoiceID)
	if err != nil {
		return domain.Result{}, err
	}

	if err := s.deliver(ctx, invoice, donation); err != nil {
		s.metrics.InvoiceEmails.WithLabelValues("failed").Inc()
		return domain.Result{Invoice: invoice, EmailStatus: domain.EmailStatusPending}, err
	}
	s.metrics.InvoiceEmails.WithLabelValues("sent").Inc()
	return domain.Result{Invoice: invoice, EmailStatus: domain.EmailStatusSent}, nil
}

func (s *invoiceService) Regenerate(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, _, err := s.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	// Number and donation linkage survive regeneration; only the content
	// revision moves.
	invoice.ContentRevision++
	invoice.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return nil, err
	}

	s.log.Info("invoice regenerated",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int("content_revision", invoice.ContentRevision),
	)
	return invoice, nil
}

func (s *invoiceService) Download(ctx context.Context, invoiceID string) ([]byte, error) {
	invoice, donation, err := s.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.pdf.GenerateReceipt(ctx, s.receiptData(ctx, invoice, donation))
}

func (s *invoiceService) Get(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *invoiceService) GetByDonationID(ctx context.Context, donationID string) (*domain.Invoice, error) {
	id, err := snowflake.ParseString(donationID)
	if err != nil {
		return nil, domain.ErrInvoiceNotFound
	}
	invoice, err := s.repo.FindByDonationID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *invoiceService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Invoice, error) {
	return s.repo.List(ctx, s.db, filter)
}

func (s *invoiceService) load(ctx context.Context, invoiceID string) (*domain.Invoice, *donationdomain.Donation, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if invoice == nil {
		return nil, nil, domain.ErrInvoiceNotFound
	}

	donation, err := s.donations.FindByID(ctx, s.db, invoice.DonationID.String())
	if err != nil {
		return nil, nil, err
	}
	if donation == nil {
		return nil, nil, donationdomain.ErrDonationNotFound
	}
	return invoice, donation, nil
}

func (s *invoiceService) receiptData(ctx context.Context, invoice *domain.Invoice, donation *donationdomain.Donation) pdf.ReceiptData {
	symbol := ""
	sectionLabel := ""
	if country, err := s.countries.Resolve(ctx, donation.Donor.Country); err == nil {
		symbol = country.CurrencySymbol
		sectionLabel = country.TaxSectionLabel
	}

	taxID := ""
	if donation.Donor.TaxID != nil {
		taxID = *donation.Donor.TaxID
	}
	campaign := ""
	if donation.CampaignRef != nil {
		campaign = *donation.CampaignRef
	}

	return pdf.ReceiptData{
		OrgName:         s.cfg.OrgName,
		OrgAddress:      s.cfg.OrgAddress,
		OrgEmail:        s.cfg.OrgEmail,
		InvoiceNumber:   invoice.InvoiceNumber,
		IssueDate:       invoice.CreatedAt.Format("02 Jan 2006"),
		Revision:        invoice.ContentRevision,
		DonorName:       donation.Donor.FullName,
		DonorEmail:      donation.Donor.Email,
		DonorAddress:    donation.Donor.Address,
		DonorTaxID:      taxID,
		AmountDisplay:   symbol + strconv.FormatInt(donation.Amount, 10) + " " + donation.Currency,
		DonationType:    string(donation.Type),
		CampaignRef:     campaign,
		TaxExemption:    invoice.TaxExemptionApplicable,
		TaxSectionLabel: sectionLabel,
	}
}
