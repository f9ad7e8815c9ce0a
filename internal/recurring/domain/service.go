package domain

import (
	"context"

	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
)

// Service manages the recurring subscription lifecycle.
type Service interface {
	// Enroll creates an active subscription for a successfully paid
	// recurring donation and schedules its next payment.
	Enroll(ctx context.Context, donation *donationdomain.Donation) (*RecurringSubscription, error)

	Pause(ctx context.Context, id string) (*RecurringSubscription, error)
	Resume(ctx context.Context, id string) (*RecurringSubscription, error)

	// Cancel is idempotent: cancelling an already-cancelled subscription
	// returns it unchanged.
	Cancel(ctx context.Context, id string, reason string) (*RecurringSubscription, error)

	// ProcessPayment charges the next due payment for one subscription,
	// retrying transient gateway failures before giving up.
	ProcessPayment(ctx context.Context, id string) (*RecurringSubscription, error)

	// ProcessDue charges every subscription whose next payment is due.
	ProcessDue(ctx context.Context) error

	Get(ctx context.Context, id string) (*RecurringSubscription, error)
	List(ctx context.Context, filter ListFilter) ([]RecurringSubscription, error)
}
