package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smallbiznis/causeway/internal/recurring/domain"
)

type repositoryImpl struct{}

// Provide creates a recurring subscription repository.
func Provide() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(ctx context.Context, db *gorm.DB, sub *domain.RecurringSubscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.RecurringSubscription, error) {
	return r.find(ctx, db, id, false)
}

func (r *repositoryImpl) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id string) (*domain.RecurringSubscription, error) {
	return r.find(ctx, db, id, true)
}

func (r *repositoryImpl) find(ctx context.Context, db *gorm.DB, id string, lock bool) (*domain.RecurringSubscription, error) {
	query := db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var sub domain.RecurringSubscription
	if err := query.First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repositoryImpl) FindByDonationID(ctx context.Context, db *gorm.DB, donationID snowflake.ID) (*domain.RecurringSubscription, error) {
	var sub domain.RecurringSubscription
	if err := db.WithContext(ctx).First(&sub, "donation_id = ?", donationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repositoryImpl) FindDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.RecurringSubscription, error) {
	query := db.WithContext(ctx).
		Where("status = ?", domain.StatusActive).
		Where("next_payment_at IS NOT NULL AND next_payment_at <= ?", now).
		Order("next_payment_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var subs []domain.RecurringSubscription
	if err := query.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repositoryImpl) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.RecurringSubscription, error) {
	query := db.WithContext(ctx).Model(&domain.RecurringSubscription{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var subs []domain.RecurringSubscription
	if err := query.Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repositoryImpl) Update(ctx context.Context, db *gorm.DB, sub *domain.RecurringSubscription) error {
	return db.WithContext(ctx).Save(sub).Error
}
