package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/causeway/internal/countryconfig/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) List(ctx context.Context, db *gorm.DB) ([]domain.CountryConfig, error) {
	var configs []domain.CountryConfig
	if err := db.WithContext(ctx).Order("code asc").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *repository) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.CountryConfig, error) {
	var config domain.CountryConfig
	err := db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

func (r *repository) Upsert(ctx context.Context, db *gorm.DB, config *domain.CountryConfig) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "currency_code", "currency_symbol", "min_donation", "tax_benefit", "tax_section_label", "state_label", "postal_label", "updated_at"}),
	}).Create(config).Error
}
