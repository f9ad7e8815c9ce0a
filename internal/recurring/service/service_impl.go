package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/causeway/internal/clock"
	"github.com/smallbiznis/causeway/internal/config"
	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	"github.com/smallbiznis/causeway/internal/metrics"
	paymentdomain "github.com/smallbiznis/causeway/internal/payment/domain"
	"github.com/smallbiznis/causeway/internal/ratelimit"
	"github.com/smallbiznis/causeway/internal/recurring/domain"
)

const (
	dueBatchSize   = 100
	chargeLockTTL  = 2 * time.Minute
	chargeLockKeyF = "recurring:charge:%s"
)

// ServiceParam defines dependencies for the recurring subscription service.
type ServiceParam struct {
	fx.In

	Config    config.Config
	DB        *gorm.DB
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Donations donationdomain.Repository
	Gateway   paymentdomain.Gateway
	Locker    *ratelimit.Locker `optional:"true"`
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

type recurringService struct {
	cfg       config.Config
	db        *gorm.DB
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	donations donationdomain.Repository
	gateway   paymentdomain.Gateway
	locker    *ratelimit.Locker
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewService creates the recurring subscription service.
func NewService(p ServiceParam) domain.Service {
	return &recurringService{
		cfg:       p.Config,
		db:        p.DB,
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		donations: p.Donations,
		gateway:   p.Gateway,
		locker:    p.Locker,
		metrics:   p.Metrics,
		log:       p.Log.Named("recurring.service"),
	}
}

func (s *recurringService) Enroll(ctx context.Context, donation *donationdomain.Donation) (*domain.RecurringSubscription, error) {
	if donation == nil || !donation.Type.Recurring() {
		return nil, fmt.Errorf("%w: donation is not recurring", domain.ErrInvalidTransition)
	}
	if donation.PaymentStatus != donationdomain.PaymentStatusSucceeded {
		return nil, donationdomain.ErrIntentNotSucceeded
	}

	existing, err := s.repo.FindByDonationID(ctx, s.db, donation.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.clock.Now()
	next := nextPaymentTime(now, donation.Type)
	sub := &domain.RecurringSubscription{
		ID:            s.genID.Generate(),
		DonationID:    donation.ID,
		Status:        domain.StatusActive,
		NextPaymentAt: &next,
		PaymentCount:  1, // the enrolling donation is the first payment
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, s.db, sub); err != nil {
		return nil, err
	}

	s.log.Info("subscription enrolled",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("donation_id", donation.ID.String()),
		zap.Time("next_payment_at", next),
	)
	return sub, nil
}

func (s *recurringService) Pause(ctx context.Context, id string) (*domain.RecurringSubscription, error) {
	return s.transition(ctx, id, domain.StatusPaused, func(sub *domain.RecurringSubscription, now time.Time) {
		sub.PausedAt = &now
	})
}

func (s *recurringService) Resume(ctx context.Context, id string) (*domain.RecurringSubscription, error) {
	return s.transition(ctx, id, domain.StatusActive, func(sub *domain.RecurringSubscription, now time.Time) {
		sub.ResumedAt = &now
	})
}

func (s *recurringService) Cancel(ctx context.Context, id string, reason string) (*domain.RecurringSubscription, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Cancelling an already-cancelled subscription is a no-op, not an error.
	if current.Status == domain.StatusCancelled {
		return current, nil
	}

	return s.transition(ctx, id, domain.StatusCancelled, func(sub *domain.RecurringSubscription, now time.Time) {
		sub.CancelledAt = &now
		sub.NextPaymentAt = nil
		if reason != "" {
			sub.CancellationReason = &reason
		}
	})
}

func (s *recurringService) transition(ctx context.Context, id string, to domain.Status, apply func(*domain.RecurringSubscription, time.Time)) (*domain.RecurringSubscription, error) {
	var out *domain.RecurringSubscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrSubscriptionNotFound
		}
		if !domain.CanTransition(sub.Status, to) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, sub.Status, to)
		}

		now := s.clock.Now()
		sub.Status = to
		sub.UpdatedAt = now
		apply(sub, now)

		if err := s.repo.Update(ctx, tx, sub); err != nil {
			return err
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("subscription transitioned",
		zap.String("subscription_id", out.ID.String()),
		zap.String("status", string(out.Status)),
	)
	return out, nil
}

func (s *recurringService) ProcessPayment(ctx context.Context, id string) (*domain.RecurringSubscription, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.StatusActive {
		return nil, fmt.Errorf("%w: cannot charge %s subscription", domain.ErrInvalidTransition, sub.Status)
	}
	now := s.clock.Now()
	if sub.NextPaymentAt == nil || sub.NextPaymentAt.After(now) {
		return nil, domain.ErrNotDue
	}

	donation, err := s.donations.FindByID(ctx, s.db, sub.DonationID.String())
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, donationdomain.ErrDonationNotFound
	}

	chargeErr := s.charge(ctx, sub, donation)
	if chargeErr != nil {
		s.metrics.RecurringCharges.WithLabelValues("failed").Inc()
		if _, err := s.recordFailure(ctx, id); err != nil {
			s.log.Error("failed to record charge failure", zap.Error(err))
		}
		return nil, chargeErr
	}

	s.metrics.RecurringCharges.WithLabelValues("succeeded").Inc()
	return s.recordSuccess(ctx, id, donation.Type)
}

// charge runs the off-session gateway payment, retrying transient failures
// only. Card declines and other terminal errors go straight through.
func (s *recurringService) charge(ctx context.Context, sub *domain.RecurringSubscription, donation *donationdomain.Donation) error {
	method, _ := donation.Metadata[donationdomain.MetadataKeyPaymentMethod].(string)
	if method == "" {
		return fmt.Errorf("subscription %s has no stored payment method", sub.ID)
	}

	maxAttempts := s.cfg.RecurringMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	_, err := backoff.Retry(ctx, func() (*paymentdomain.PaymentIntent, error) {
		intent, err := s.gateway.CreatePaymentIntent(ctx, paymentdomain.CreateIntentRequest{
			Amount:          donation.Amount,
			Currency:        donation.Currency,
			PaymentMethodID: method,
			Description:     fmt.Sprintf("%s donation renewal", donation.Type),
			IdempotencyKey:  fmt.Sprintf("recurring-%s-%d", sub.ID, sub.PaymentCount+1),
			OffSession:      true,
		})
		if err != nil {
			if paymentdomain.Transient(err) {
				s.log.Info("retrying recurring charge after transient failure",
					zap.String("subscription_id", sub.ID.String()),
					zap.Error(err),
				)
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		if intent.Status != paymentdomain.IntentSucceeded {
			return nil, backoff.Permanent(&paymentdomain.GatewayCardError{Code: paymentdomain.CardDeclined})
		}
		return intent, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(uint(maxAttempts)))
	return err
}

func (s *recurringService) recordSuccess(ctx context.Context, id string, donationType donationdomain.DonationType) (*domain.RecurringSubscription, error) {
	var out *domain.RecurringSubscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrSubscriptionNotFound
		}

		now := s.clock.Now()
		sub.PaymentCount++
		sub.FailedPaymentCount = 0
		sub.UpdatedAt = now

		if sub.MaxPaymentCount > 0 && sub.PaymentCount >= sub.MaxPaymentCount {
			sub.Status = domain.StatusCompleted
			sub.CompletedAt = &now
			sub.NextPaymentAt = nil
		} else {
			next := nextPaymentTime(now, donationType)
			sub.NextPaymentAt = &next
		}

		if err := s.repo.Update(ctx, tx, sub); err != nil {
			return err
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *recurringService) recordFailure(ctx context.Context, id string) (*domain.RecurringSubscription, error) {
	var out *domain.RecurringSubscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrSubscriptionNotFound
		}

		sub.FailedPaymentCount++
		sub.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, sub); err != nil {
			return err
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *recurringService) ProcessDue(ctx context.Context) error {
	due, err := s.repo.FindDue(ctx, s.db, s.clock.Now(), dueBatchSize)
	if err != nil {
		return err
	}

	for _, sub := range due {
		id := sub.ID.String()
		lockKey := fmt.Sprintf(chargeLockKeyF, id)
		token, ok, err := s.locker.TryLock(ctx, lockKey, chargeLockTTL)
		if err != nil {
			s.log.Warn("charge lock unavailable", zap.String("subscription_id", id), zap.Error(err))
			continue
		}
		if !ok {
			// Another instance is already charging this subscription.
			continue
		}

		if _, err := s.ProcessPayment(ctx, id); err != nil {
			s.log.Warn("recurring charge failed",
				zap.String("subscription_id", id),
				zap.Error(err),
			)
		}
		if err := s.locker.Release(ctx, lockKey, token); err != nil {
			s.log.Warn("charge lock release failed", zap.String("subscription_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *recurringService) Get(ctx context.Context, id string) (*domain.RecurringSubscription, error) {
	sub, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (s *recurringService) List(ctx context.Context, filter domain.ListFilter) ([]domain.RecurringSubscription, error) {
	return s.repo.List(ctx, s.db, filter)
}

func nextPaymentTime(from time.Time, donationType donationdomain.DonationType) time.Time {
	switch donationType {
	case donationdomain.DonationTypeQuarterly:
		return from.AddDate(0, 3, 0)
	case donationdomain.DonationTypeYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}
