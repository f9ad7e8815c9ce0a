package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smallbiznis/causeway/internal/invoice/domain"
)

type repositoryImpl struct{}

// Provide creates an invoice repository.
func Provide() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	if err := db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repositoryImpl) FindByDonationID(ctx context.Context, db *gorm.DB, donationID snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	if err := db.WithContext(ctx).First(&invoice, "donation_id = ?", donationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repositoryImpl) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Invoice, error) {
	query := db.WithContext(ctx).Model(&domain.Invoice{})
	if filter.EmailSent != nil {
		query = query.Where("email_sent = ?", *filter.EmailSent)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var invoices []domain.Invoice
	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repositoryImpl) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Save(invoice).Error
}

// NextSequence bumps the per-year counter under a row lock so concurrent
// invoice generation never hands out the same number twice.
func (r *repositoryImpl) NextSequence(ctx context.Context, db *gorm.DB, year int) (int64, error) {
	var seq domain.InvoiceSequence
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "year = ?", year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = domain.InvoiceSequence{Year: year, Value: 1}
		if createErr := db.WithContext(ctx).Create(&seq).Error; createErr != nil {
			return 0, createErr
		}
		return seq.Value, nil
	}
	if err != nil {
		return 0, err
	}

	seq.Value++
	if err := db.WithContext(ctx).Save(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}
