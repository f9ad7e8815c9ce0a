package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context, db *gorm.DB) ([]CountryConfig, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*CountryConfig, error)
	Upsert(ctx context.Context, db *gorm.DB, config *CountryConfig) error
}
