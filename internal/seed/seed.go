// Package seed populates reference data required for a working install.
package seed

import (
	"context"
	"time"

	countrydomain "github.com/smallbiznis/causeway/internal/countryconfig/domain"
	countryrepository "github.com/smallbiznis/causeway/internal/countryconfig/repository"
	"gorm.io/gorm"
)

// EnsureCountryConfigs upserts the compiled country catalog so a fresh
// database serves the same set the resolver falls back to.
func EnsureCountryConfigs(conn *gorm.DB) error {
	repo := countryrepository.Provide()
	now := time.Now().UTC()
	for _, config := range countrydomain.Defaults() {
		config.CreatedAt = now
		config.UpdatedAt = now
		if err := repo.Upsert(context.Background(), conn, &config); err != nil {
			return err
		}
	}
	return nil
}
