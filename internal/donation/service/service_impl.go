package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smallbiznis/causeway/internal/clock"
	"github.com/smallbiznis/causeway/internal/donation/domain"
	paymentdomain "github.com/smallbiznis/causeway/internal/payment/domain"
	"github.com/smallbiznis/causeway/pkg/db"
)

// ServiceParam defines dependencies for the donation service.
type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Gateway paymentdomain.Gateway
	Log     *zap.Logger
}

type donationService struct {
	db      *gorm.DB
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	gateway paymentdomain.Gateway
	log     *zap.Logger
}

// NewService creates the donation store service.
func NewService(p ServiceParam) domain.Service {
	return &donationService{
		db:      p.DB,
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		gateway: p.Gateway,
		log:     p.Log.Named("donation.service"),
	}
}

func (s *donationService) CreateIntent(ctx context.Context, draft domain.DonationDraft, paymentMethodID string) (domain.IntentHandle, error) {
	if err := validateDraft(draft); err != nil {
		return domain.IntentHandle{}, err
	}

	metadata := map[string]string{
		"donation_type": string(draft.Type),
		"donor_email":   draft.Donor.Email,
		"donor_country": draft.Donor.Country,
	}
	if draft.CampaignRef != nil {
		metadata["campaign_ref"] = *draft.CampaignRef
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, paymentdomain.CreateIntentRequest{
		Amount:          draft.Amount,
		Currency:        draft.Currency,
		PaymentMethodID: paymentMethodID,
		Description:     fmt.Sprintf("%s donation", draft.Type),
		IdempotencyKey:  uuid.NewString(),
		Metadata:        metadata,
	})
	if err != nil {
		return domain.IntentHandle{}, err
	}

	s.log.Info("payment intent opened",
		zap.String("payment_intent_id", intent.ID),
		zap.Int64("amount", draft.Amount),
		zap.String("currency", draft.Currency),
	)
	return domain.IntentHandle{PaymentIntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (s *donationService) SaveAfterPayment(ctx context.Context, draft domain.DonationDraft, intentID string, status domain.PaymentStatus) (*domain.Donation, error) {
	if status != domain.PaymentStatusSucceeded {
		return nil, domain.ErrIntentNotSucceeded
	}
	if strings.TrimSpace(intentID) == "" {
		return nil, domain.ErrIntentNotSucceeded
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	donation := &domain.Donation{
		ID:              s.genID.Generate(),
		Amount:          draft.Amount,
		Currency:        strings.ToUpper(draft.Currency),
		Type:            draft.Type,
		CampaignRef:     draft.CampaignRef,
		Donor:           draft.Donor,
		PaymentStatus:   domain.PaymentStatusSucceeded,
		PaymentIntentID: intentID,
		Metadata:        datatypes.JSONMap(draft.Metadata),
		CreatedAt:       s.clock.Now(),
	}

	if err := s.repo.Create(ctx, s.db, donation); err != nil {
		if db.IsDuplicateKeyErr(err) {
			existing, findErr := s.repo.FindByIntentID(ctx, s.db, intentID)
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				s.log.Info("donation already recorded for intent",
					zap.String("payment_intent_id", intentID),
					zap.String("donation_id", existing.ID.String()),
				)
				return existing, nil
			}
		}
		return nil, err
	}

	s.log.Info("donation recorded",
		zap.String("donation_id", donation.ID.String()),
		zap.String("payment_intent_id", intentID),
	)
	return donation, nil
}

func (s *donationService) ConfirmByIntent(ctx context.Context, intentID string) (*domain.Donation, error) {
	donation, err := s.repo.FindByIntentID(ctx, s.db, intentID)
	if err != nil {
		return nil, err
	}
	if donation != nil {
		return donation, nil
	}

	intent, err := s.gateway.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	switch intent.Status {
	case paymentdomain.IntentSucceeded, paymentdomain.IntentProcessing,
		paymentdomain.IntentRequiresAction, paymentdomain.IntentRequiresConfirmation:
		// Charge still settling, or settled but not yet recorded.
		return nil, domain.ErrIntentPending
	default:
		return nil, domain.ErrDonationNotFound
	}
}

func (s *donationService) Get(ctx context.Context, id string) (*domain.Donation, error) {
	donation, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, domain.ErrDonationNotFound
	}
	return donation, nil
}

func (s *donationService) GetByIntentID(ctx context.Context, intentID string) (*domain.Donation, error) {
	donation, err := s.repo.FindByIntentID(ctx, s.db, intentID)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, domain.ErrDonationNotFound
	}
	return donation, nil
}

func (s *donationService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Donation, error) {
	return s.repo.List(ctx, s.db, filter)
}

func validateDraft(draft domain.DonationDraft) error {
	if draft.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidDraft)
	}
	if strings.TrimSpace(draft.Currency) == "" {
		return fmt.Errorf("%w: currency is required", domain.ErrInvalidDraft)
	}
	if !draft.Type.Valid() {
		return fmt.Errorf("%w: unknown donation type %q", domain.ErrInvalidDraft, draft.Type)
	}
	donor := draft.Donor
	if strings.TrimSpace(donor.FullName) == "" || strings.TrimSpace(donor.Email) == "" || strings.TrimSpace(donor.Country) == "" {
		return fmt.Errorf("%w: donor name, email and country are required", domain.ErrInvalidDraft)
	}
	return nil
}
