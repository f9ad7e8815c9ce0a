package domain

import "context"

// IntentStatus is the gateway-side lifecycle of a payment intent.
type IntentStatus string

const (
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentRequiresAction        IntentStatus = "requires_action"
	IntentProcessing            IntentStatus = "processing"
	IntentSucceeded             IntentStatus = "succeeded"
	IntentCanceled              IntentStatus = "canceled"
)

// Card carries raw card input. It is tokenized into a PaymentMethod before
// any charge and never persisted.
type Card struct {
	Number   string `json:"number"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	CVC      string `json:"cvc"`
}

// BillingDetails accompany tokenization.
type BillingDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
}

// PaymentMethod is the gateway token standing in for a card.
type PaymentMethod struct {
	ID string `json:"id"`
}

// PaymentIntent is the gateway's view of a single charge attempt.
type PaymentIntent struct {
	ID           string       `json:"id"`
	ClientSecret string       `json:"client_secret"`
	Status       IntentStatus `json:"status"`
	Amount       int64        `json:"amount"`
	Currency     string       `json:"currency"`
}

// SetupIntent captures a payment method for later off-session charges.
type SetupIntent struct {
	ID           string       `json:"id"`
	ClientSecret string       `json:"client_secret"`
	Status       IntentStatus `json:"status"`
}

// CreateIntentRequest opens a payment intent for a draft donation.
type CreateIntentRequest struct {
	Amount          int64
	Currency        string
	PaymentMethodID string
	Description     string
	IdempotencyKey  string
	Metadata        map[string]string
	OffSession      bool
}

// Gateway abstracts the card processor. Implementations translate processor
// failures into the taxonomy in errors.go.
type Gateway interface {
	CreatePaymentMethod(ctx context.Context, card Card, billing BillingDetails) (*PaymentMethod, error)
	CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (*PaymentIntent, error)
	ConfirmCardPayment(ctx context.Context, intentID, paymentMethodID string) (*PaymentIntent, error)
	CreateSetupIntent(ctx context.Context, paymentMethodID string) (*SetupIntent, error)
	ConfirmCardSetup(ctx context.Context, setupIntentID, paymentMethodID string) (*SetupIntent, error)
	GetPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
}
