// Package domain defines the payment gateway abstraction and the error
// taxonomy every payment surface maps from.
package domain

import (
	"errors"
	"fmt"
)

// ErrNetwork indicates the gateway was unreachable before a charge could be
// attempted. Safe to retry from the payment step.
var ErrNetwork = errors.New("payment network error")

// ErrActionIncomplete indicates the cardholder challenge was not completed
// within the allowed confirmation attempts.
var ErrActionIncomplete = errors.New("card authentication not completed")

// FieldValidationError reports a single invalid input field, detected before
// any gateway call is made.
type FieldValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Gateway decline codes with a fixed donor-facing message each.
const (
	CardDeclined         = "card_declined"
	InsufficientFunds    = "insufficient_funds"
	IncorrectCVC         = "incorrect_cvc"
	ExpiredCard          = "expired_card"
	IncorrectNumber      = "incorrect_number"
	CurrencyNotSupported = "currency_not_supported"
)

var cardErrorMessages = map[string]string{
	CardDeclined:         "Your card was declined. Please try a different card.",
	InsufficientFunds:    "Your card has insufficient funds.",
	IncorrectCVC:         "The security code you entered is incorrect.",
	ExpiredCard:          "Your card has expired. Please use a different card.",
	IncorrectNumber:      "The card number you entered is incorrect.",
	CurrencyNotSupported: "Your card does not support this currency.",
}

// GatewayCardError is a terminal decline. Retrying with the same card will
// not succeed.
type GatewayCardError struct {
	Code string `json:"code"`
}

func (e *GatewayCardError) Error() string {
	return fmt.Sprintf("card error: %s", e.Code)
}

// Message returns the donor-facing text for the decline code.
func (e *GatewayCardError) Message() string {
	if msg, ok := cardErrorMessages[e.Code]; ok {
		return msg
	}
	return "Your payment could not be processed. Please try again."
}

// Transient gateway codes, eligible for automatic retry.
const (
	ProcessingError = "processing_error"
	RateLimit       = "rate_limit"
)

// GatewayTransientError is a temporary gateway failure. The same request may
// succeed on retry.
type GatewayTransientError struct {
	Code string `json:"code"`
}

func (e *GatewayTransientError) Error() string {
	return fmt.Sprintf("transient gateway error: %s", e.Code)
}

// BackendConfirmationError means the charge succeeded at the gateway but the
// donation could not be recorded. It must never trigger a new charge; the
// intent id is carried for reconciliation.
type BackendConfirmationError struct {
	PaymentIntentID string `json:"payment_intent_id"`
	Err             error  `json:"-"`
}

func (e *BackendConfirmationError) Error() string {
	return fmt.Sprintf("payment %s succeeded but confirmation failed: %v", e.PaymentIntentID, e.Err)
}

func (e *BackendConfirmationError) Unwrap() error { return e.Err }

// TimeoutError means confirmation polling exhausted its attempts without a
// definitive answer. The payment may still complete asynchronously.
type TimeoutError struct {
	PaymentIntentID string `json:"payment_intent_id"`
	Attempts        int    `json:"attempts"`
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("confirmation of %s timed out after %d attempts", e.PaymentIntentID, e.Attempts)
}

// Transient reports whether err may succeed if the same request is retried.
func Transient(err error) bool {
	var gte *GatewayTransientError
	return errors.As(err, &gte) || errors.Is(err, ErrNetwork)
}
