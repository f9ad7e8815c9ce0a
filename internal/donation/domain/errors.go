package domain

import "errors"

var (
	// ErrDonationNotFound indicates no donation row exists for the lookup key.
	ErrDonationNotFound = errors.New("donation not found")

	// ErrIntentNotSucceeded rejects any attempt to persist a donation whose
	// payment intent has not reached the succeeded status.
	ErrIntentNotSucceeded = errors.New("payment intent has not succeeded")

	// ErrIntentPending indicates the gateway still reports the intent as in
	// flight, so no donation row can exist yet.
	ErrIntentPending = errors.New("payment intent still pending")

	// ErrInvalidDraft indicates the draft is missing required fields or
	// carries an unknown donation type.
	ErrInvalidDraft = errors.New("invalid donation draft")
)
