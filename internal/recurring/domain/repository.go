package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows subscription listings.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// Repository persists subscriptions. FindByIDForUpdate takes a row lock so
// lifecycle transitions serialize per subscription.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, sub *RecurringSubscription) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*RecurringSubscription, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id string) (*RecurringSubscription, error)
	FindByDonationID(ctx context.Context, db *gorm.DB, donationID snowflake.ID) (*RecurringSubscription, error)
	FindDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]RecurringSubscription, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]RecurringSubscription, error)
	Update(ctx context.Context, db *gorm.DB, sub *RecurringSubscription) error
}
