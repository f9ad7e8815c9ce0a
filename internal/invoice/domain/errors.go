package domain

import "errors"

var (
	// ErrInvoiceNotFound indicates no invoice exists for the lookup key.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrEmailDelivery indicates the invoice exists but its email could not
	// be delivered. The invoice row is unaffected.
	ErrEmailDelivery = errors.New("invoice email delivery failed")
)
