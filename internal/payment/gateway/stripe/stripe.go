// Package stripe implements the payment gateway against the Stripe API.
package stripe

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/paymentmethod"
	"github.com/stripe/stripe-go/v83/setupintent"
	"go.uber.org/zap"

	"github.com/smallbiznis/causeway/internal/config"
	paymentdomain "github.com/smallbiznis/causeway/internal/payment/domain"
)

type Gateway struct {
	log *zap.Logger
}

// New configures the global Stripe client key and returns the gateway.
func New(cfg config.Config, log *zap.Logger) paymentdomain.Gateway {
	stripe.Key = cfg.GatewaySecretKey
	return &Gateway{log: log.Named("payment.gateway.stripe")}
}

func (g *Gateway) CreatePaymentMethod(ctx context.Context, card paymentdomain.Card, billing paymentdomain.BillingDetails) (*paymentdomain.PaymentMethod, error) {
	params := &stripe.PaymentMethodParams{
		Type: stripe.String("card"),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.Int64(int64(card.ExpMonth)),
			ExpYear:  stripe.Int64(int64(card.ExpYear)),
			CVC:      stripe.String(card.CVC),
		},
		BillingDetails: &stripe.PaymentMethodBillingDetailsParams{
			Name:  stripe.String(billing.Name),
			Email: stripe.String(billing.Email),
			Phone: stripe.String(billing.Phone),
			Address: &stripe.AddressParams{
				Country: stripe.String(billing.Country),
			},
		},
	}
	params.Context = ctx

	pm, err := paymentmethod.New(params)
	if err != nil {
		return nil, g.mapError(err)
	}
	return &paymentdomain.PaymentMethod{ID: pm.ID}, nil
}

func (g *Gateway) CreatePaymentIntent(ctx context.Context, req paymentdomain.CreateIntentRequest) (*paymentdomain.PaymentIntent, error) {
	// Amounts are whole currency units; Stripe expects the smallest
	// denomination.
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount * 100),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod: stripe.String(req.PaymentMethodID),
	}
	params.Context = ctx
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	}
	if len(req.Metadata) > 0 {
		params.Metadata = req.Metadata
	}
	if req.OffSession {
		params.OffSession = stripe.Bool(true)
		params.Confirm = stripe.Bool(true)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, g.mapError(err)
	}
	return buildIntent(pi), nil
}

func (g *Gateway) ConfirmCardPayment(ctx context.Context, intentID, paymentMethodID string) (*paymentdomain.PaymentIntent, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}

	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		return nil, g.mapError(err)
	}
	return buildIntent(pi), nil
}

func (g *Gateway) CreateSetupIntent(ctx context.Context, paymentMethodID string) (*paymentdomain.SetupIntent, error) {
	params := &stripe.SetupIntentParams{
		Usage: stripe.String(string(stripe.SetupIntentUsageOffSession)),
	}
	params.Context = ctx
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}

	si, err := setupintent.New(params)
	if err != nil {
		return nil, g.mapError(err)
	}
	return &paymentdomain.SetupIntent{
		ID:           si.ID,
		ClientSecret: si.ClientSecret,
		Status:       paymentdomain.IntentStatus(si.Status),
	}, nil
}

func (g *Gateway) ConfirmCardSetup(ctx context.Context, setupIntentID, paymentMethodID string) (*paymentdomain.SetupIntent, error) {
	params := &stripe.SetupIntentConfirmParams{}
	params.Context = ctx
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}

	si, err := setupintent.Confirm(setupIntentID, params)
	if err != nil {
		return nil, g.mapError(err)
	}
	return &paymentdomain.SetupIntent{
		ID:           si.ID,
		ClientSecret: si.ClientSecret,
		Status:       paymentdomain.IntentStatus(si.Status),
	}, nil
}

func (g *Gateway) GetPaymentIntent(ctx context.Context, intentID string) (*paymentdomain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, g.mapError(err)
	}
	return buildIntent(pi), nil
}

func buildIntent(pi *stripe.PaymentIntent) *paymentdomain.PaymentIntent {
	return &paymentdomain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       paymentdomain.IntentStatus(pi.Status),
		Amount:       pi.Amount / 100,
		Currency:     strings.ToUpper(string(pi.Currency)),
	}
}

// cardCodes are decline codes that terminate the attempt for this card.
var cardCodes = map[string]string{
	"card_declined":          paymentdomain.CardDeclined,
	"generic_decline":        paymentdomain.CardDeclined,
	"insufficient_funds":     paymentdomain.InsufficientFunds,
	"incorrect_cvc":          paymentdomain.IncorrectCVC,
	"invalid_cvc":            paymentdomain.IncorrectCVC,
	"expired_card":           paymentdomain.ExpiredCard,
	"incorrect_number":       paymentdomain.IncorrectNumber,
	"invalid_number":         paymentdomain.IncorrectNumber,
	"currency_not_supported": paymentdomain.CurrencyNotSupported,
}

var transientCodes = map[string]string{
	"processing_error": paymentdomain.ProcessingError,
	"rate_limit":       paymentdomain.RateLimit,
	"lock_timeout":     paymentdomain.ProcessingError,
}

func (g *Gateway) mapError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
			return paymentdomain.ErrNetwork
		}
		g.log.Warn("unclassified gateway failure", zap.Error(err))
		return paymentdomain.ErrNetwork
	}

	code := string(stripeErr.Code)
	if stripeErr.DeclineCode != "" {
		if mapped, ok := cardCodes[string(stripeErr.DeclineCode)]; ok {
			return &paymentdomain.GatewayCardError{Code: mapped}
		}
	}
	if mapped, ok := cardCodes[code]; ok {
		return &paymentdomain.GatewayCardError{Code: mapped}
	}
	if mapped, ok := transientCodes[code]; ok {
		return &paymentdomain.GatewayTransientError{Code: mapped}
	}
	if stripeErr.Type == stripe.ErrorTypeCard {
		return &paymentdomain.GatewayCardError{Code: paymentdomain.CardDeclined}
	}

	g.log.Warn("gateway request rejected",
		zap.String("code", code),
		zap.String("type", string(stripeErr.Type)),
	)
	return &paymentdomain.GatewayTransientError{Code: paymentdomain.ProcessingError}
}
