package domain

import "errors"

var (
	// ErrSubscriptionNotFound indicates no subscription exists for the id.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrInvalidTransition rejects a status change the lifecycle does not
	// allow, including any change out of a terminal state.
	ErrInvalidTransition = errors.New("invalid subscription transition")

	// ErrNotDue indicates the subscription has no payment due yet.
	ErrNotDue = errors.New("no payment due")
)
