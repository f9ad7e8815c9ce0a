package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows invoice listings.
type ListFilter struct {
	EmailSent *bool
	Limit     int
	Offset    int
}

// Repository persists invoices and hands out sequence numbers.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Invoice, error)
	FindByDonationID(ctx context.Context, db *gorm.DB, donationID snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Invoice, error)
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error

	// NextSequence atomically increments and returns the counter for year.
	NextSequence(ctx context.Context, db *gorm.DB, year int) (int64, error)
}
