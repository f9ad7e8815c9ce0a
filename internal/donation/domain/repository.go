package domain

import (
	"context"

	"gorm.io/gorm"
)

// ListFilter narrows donation listings.
type ListFilter struct {
	Country     string
	Type        DonationType
	CampaignRef string
	Limit       int
	Offset      int
}

// Repository persists donations. Implementations receive the gorm handle so
// callers can run them inside an open transaction.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, donation *Donation) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Donation, error)
	FindByIntentID(ctx context.Context, db *gorm.DB, intentID string) (*Donation, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Donation, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id string, status PaymentStatus) error
}
