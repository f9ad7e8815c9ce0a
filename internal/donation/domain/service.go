package domain

import "context"

// IntentHandle is returned when a payment intent is opened for a draft. The
// draft itself stays in memory until the charge succeeds.
type IntentHandle struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
}

// Service exposes donation store operations. Writing a donation row is only
// possible through SaveAfterPayment, after the gateway reports success.
type Service interface {
	// CreateIntent validates the draft and opens a gateway payment intent
	// for it. No donation row is written.
	CreateIntent(ctx context.Context, draft DonationDraft, paymentMethodID string) (IntentHandle, error)

	// SaveAfterPayment persists the draft as a donation once its intent
	// has succeeded. Calling it twice with the same intent id returns the
	// already-persisted row.
	SaveAfterPayment(ctx context.Context, draft DonationDraft, intentID string, status PaymentStatus) (*Donation, error)

	// ConfirmByIntent resolves the donation recorded for a gateway intent.
	// When no row exists it consults the gateway to distinguish a payment
	// still in flight (ErrIntentPending) from one that never succeeded.
	ConfirmByIntent(ctx context.Context, intentID string) (*Donation, error)

	Get(ctx context.Context, id string) (*Donation, error)
	GetByIntentID(ctx context.Context, intentID string) (*Donation, error)
	List(ctx context.Context, filter ListFilter) ([]Donation, error)
}
