package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smallbiznis/causeway/internal/donation/domain"
)

type repositoryImpl struct{}

// Provide creates a donation repository.
func Provide() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(ctx context.Context, db *gorm.DB, donation *domain.Donation) error {
	return db.WithContext(ctx).Create(donation).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Donation, error) {
	var donation domain.Donation
	if err := db.WithContext(ctx).First(&donation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &donation, nil
}

func (r *repositoryImpl) FindByIntentID(ctx context.Context, db *gorm.DB, intentID string) (*domain.Donation, error) {
	var donation domain.Donation
	if err := db.WithContext(ctx).First(&donation, "payment_intent_id = ?", intentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &donation, nil
}

func (r *repositoryImpl) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Donation, error) {
	query := db.WithContext(ctx).Model(&domain.Donation{})
	if filter.Country != "" {
		query = query.Where("donor_country = ?", filter.Country)
	}
	if filter.Type != "" {
		query = query.Where("donation_type = ?", filter.Type)
	}
	if filter.CampaignRef != "" {
		query = query.Where("campaign_ref = ?", filter.CampaignRef)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var donations []domain.Donation
	if err := query.Order("created_at DESC").Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, db *gorm.DB, id string, status domain.PaymentStatus) error {
	return db.WithContext(ctx).
		Model(&domain.Donation{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}
