package domain

import "errors"

var (
	// ErrSessionNotFound indicates the wizard session id is unknown or the
	// session has ended.
	ErrSessionNotFound = errors.New("wizard session not found")

	// ErrSubmissionInFlight rejects a second submit while a payment is
	// already being processed for the session.
	ErrSubmissionInFlight = errors.New("submission already in flight")

	// ErrNotReadyForPayment rejects a submit before the wizard has reached
	// the payment step.
	ErrNotReadyForPayment = errors.New("wizard is not at the payment step")

	// ErrAlreadyCompleted rejects inputs after the wizard finished.
	ErrAlreadyCompleted = errors.New("wizard already completed")
)
