package service

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/causeway/internal/clock"
	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	invoicedomain "github.com/smallbiznis/causeway/internal/invoice/domain"
	"github.com/smallbiznis/causeway/internal/metrics"
	"github.com/smallbiznis/causeway/internal/payment/confirm"
	"github.com/smallbiznis/causeway/internal/payment/domain"
	recurringdomain "github.com/smallbiznis/causeway/internal/recurring/domain"
)

const (
	maxChargeAttempts = 3
	maxActionAttempts = 3
)

// OrchestratorParam defines dependencies for the payment orchestrator.
type OrchestratorParam struct {
	fx.In

	Clock     clock.Clock
	Gateway   domain.Gateway
	Donations donationdomain.Service
	Invoices  invoicedomain.Service
	Recurring recurringdomain.Service
	Poller    *confirm.Poller
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

type orchestrator struct {
	clock     clock.Clock
	gateway   domain.Gateway
	donations donationdomain.Service
	invoices  invoicedomain.Service
	recurring recurringdomain.Service
	poller    *confirm.Poller
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewOrchestrator creates the payment orchestrator.
func NewOrchestrator(p OrchestratorParam) domain.Orchestrator {
	return &orchestrator{
		clock:     p.Clock,
		gateway:   p.Gateway,
		donations: p.Donations,
		invoices:  p.Invoices,
		recurring: p.Recurring,
		poller:    p.Poller,
		metrics:   p.Metrics,
		log:       p.Log.Named("payment.orchestrator"),
	}
}

func (o *orchestrator) ProcessPayment(ctx context.Context, draft donationdomain.DonationDraft, card domain.Card) (*domain.ProcessResult, error) {
	if fieldErr := domain.ValidateCard(card, o.clock.Now()); fieldErr != nil {
		o.metrics.PaymentsFailed.WithLabelValues("validation").Inc()
		return nil, fieldErr
	}

	method, err := o.gateway.CreatePaymentMethod(ctx, card, domain.BillingDetails{
		Name:    draft.Donor.FullName,
		Email:   draft.Donor.Email,
		Phone:   draft.Donor.Phone,
		Country: draft.Donor.Country,
	})
	if err != nil {
		return nil, o.fail(err)
	}

	handle, err := o.donations.CreateIntent(ctx, draft, method.ID)
	if err != nil {
		return nil, o.fail(err)
	}

	intent, err := o.charge(ctx, handle.PaymentIntentID, method.ID)
	if err != nil {
		return nil, o.fail(err)
	}
	if intent.Status != domain.IntentSucceeded {
		o.log.Warn("charge ended without success",
			zap.String("payment_intent_id", intent.ID),
			zap.String("status", string(intent.Status)),
		)
		return nil, o.fail(&domain.GatewayCardError{Code: domain.CardDeclined})
	}

	// The charge succeeded. From here on the money has moved: any failure
	// is a confirmation failure, never a reason to charge again.
	if draft.Type.Recurring() {
		if draft.Metadata == nil {
			draft.Metadata = map[string]interface{}{}
		}
		draft.Metadata[donationdomain.MetadataKeyPaymentMethod] = method.ID
		o.saveCardForOffSession(ctx, intent.ID, method.ID)
	}
	donation, err := o.donations.SaveAfterPayment(ctx, draft, intent.ID, donationdomain.PaymentStatusSucceeded)
	if err != nil {
		o.metrics.ReconciliationNeeded.Inc()
		o.metrics.PaymentsFailed.WithLabelValues("confirmation").Inc()
		o.log.Error("charged but could not record donation",
			zap.String("payment_intent_id", intent.ID),
			zap.Error(err),
		)
		return nil, &domain.BackendConfirmationError{PaymentIntentID: intent.ID, Err: err}
	}
	o.metrics.PaymentsSucceeded.Inc()

	result := &domain.ProcessResult{
		Donation:           donation,
		InvoiceEmailStatus: invoicedomain.EmailStatusPending,
	}

	invoiceResult, err := o.invoices.GenerateAndSend(ctx, donation)
	if err != nil {
		o.log.Warn("invoice generation deferred",
			zap.String("donation_id", donation.ID.String()),
			zap.Error(err),
		)
	} else {
		result.Invoice = invoiceResult.Invoice
		result.InvoiceEmailStatus = invoiceResult.EmailStatus
	}

	if draft.Type.Recurring() {
		sub, err := o.recurring.Enroll(ctx, donation)
		if err != nil {
			o.log.Warn("recurring enrollment deferred",
				zap.String("donation_id", donation.ID.String()),
				zap.Error(err),
			)
		} else {
			result.Subscription = sub
		}
	}

	return result, nil
}

// saveCardForOffSession sets the payment method up for future renewals.
// Failure only degrades later charges; the completed payment stands either
// way, so this never surfaces to the donor.
func (o *orchestrator) saveCardForOffSession(ctx context.Context, intentID, paymentMethodID string) {
	setup, err := o.gateway.CreateSetupIntent(ctx, paymentMethodID)
	if err == nil {
		_, err = o.gateway.ConfirmCardSetup(ctx, setup.ID, paymentMethodID)
	}
	if err != nil {
		o.log.Warn("card setup for renewals failed",
			zap.String("payment_intent_id", intentID),
			zap.Error(err),
		)
	}
}

// charge confirms the intent, working through step-up authentication and
// asynchronous processing until the gateway gives a final answer.
func (o *orchestrator) charge(ctx context.Context, intentID, paymentMethodID string) (*domain.PaymentIntent, error) {
	intent, err := o.confirmWithRetry(ctx, intentID, paymentMethodID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; intent.Status == domain.IntentRequiresAction; attempt++ {
		if attempt == maxActionAttempts {
			return nil, domain.ErrActionIncomplete
		}
		intent, err = o.confirmWithRetry(ctx, intentID, paymentMethodID)
		if err != nil {
			return nil, err
		}
	}

	if intent.Status == domain.IntentProcessing {
		if err := o.awaitSettlement(ctx, intentID); err != nil {
			return nil, err
		}
		return o.gateway.GetPaymentIntent(ctx, intentID)
	}

	return intent, nil
}

func (o *orchestrator) confirmWithRetry(ctx context.Context, intentID, paymentMethodID string) (*domain.PaymentIntent, error) {
	return backoff.Retry(ctx, func() (*domain.PaymentIntent, error) {
		intent, err := o.gateway.ConfirmCardPayment(ctx, intentID, paymentMethodID)
		if err != nil {
			if domain.Transient(err) {
				o.log.Info("retrying confirmation after transient failure",
					zap.String("payment_intent_id", intentID),
					zap.Error(err),
				)
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return intent, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(maxChargeAttempts))
}

func (o *orchestrator) awaitSettlement(ctx context.Context, intentID string) error {
	return o.poller.Await(ctx, intentID, func(ctx context.Context) (bool, error) {
		intent, err := o.gateway.GetPaymentIntent(ctx, intentID)
		if err != nil {
			if domain.Transient(err) {
				return false, err
			}
			return true, err
		}
		switch intent.Status {
		case domain.IntentSucceeded:
			return true, nil
		case domain.IntentProcessing, domain.IntentRequiresAction:
			return false, nil
		default:
			return true, &domain.GatewayCardError{Code: domain.CardDeclined}
		}
	})
}

// fail records the failure class before passing the error through.
func (o *orchestrator) fail(err error) error {
	o.metrics.PaymentsFailed.WithLabelValues(failureReason(err)).Inc()
	return err
}

func failureReason(err error) string {
	var cardErr *domain.GatewayCardError
	var transientErr *domain.GatewayTransientError
	var fieldErr *domain.FieldValidationError
	var timeoutErr *domain.TimeoutError
	switch {
	case errors.As(err, &cardErr):
		return "card"
	case errors.As(err, &transientErr):
		return "transient"
	case errors.As(err, &fieldErr):
		return "validation"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.Is(err, domain.ErrNetwork):
		return "network"
	case errors.Is(err, domain.ErrActionIncomplete):
		return "authentication"
	default:
		return "other"
	}
}
