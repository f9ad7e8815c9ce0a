package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/causeway/internal/countryconfig/domain"
	"github.com/smallbiznis/causeway/internal/countryconfig/repository"
	"github.com/smallbiznis/causeway/internal/seed"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CountryConfig{}))
	require.NoError(t, seed.EnsureCountryConfigs(db))

	svc := NewService(ServiceParam{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
	return svc, db
}

func TestResolveSeededCountry(t *testing.T) {
	svc, _ := newTestService(t)

	config, err := svc.Resolve(context.Background(), "IN")
	require.NoError(t, err)
	require.Equal(t, "INR", config.CurrencyCode)
	require.Equal(t, int64(200), config.MinDonation)
	require.True(t, config.TaxBenefit)
	require.Equal(t, "Section 80G", config.TaxSectionLabel)
}

func TestResolveNormalizesCode(t *testing.T) {
	svc, _ := newTestService(t)

	config, err := svc.Resolve(context.Background(), " gb ")
	require.NoError(t, err)
	require.Equal(t, "GB", config.Code)
}

func TestResolveUnknownCountry(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Resolve(context.Background(), "ZZ")
	require.ErrorIs(t, err, domain.ErrCountryNotFound)
}

func TestResolveServesCacheAfterCatalogLoss(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Resolve(context.Background(), "US")
	require.NoError(t, err)

	// Losing the table must not take resolved countries down with it.
	require.NoError(t, db.Migrator().DropTable(&domain.CountryConfig{}))

	config, err := svc.Resolve(context.Background(), "US")
	require.NoError(t, err)
	require.Equal(t, "USD", config.CurrencyCode)
}

func TestResolveFallsBackToDefaultsWithoutCatalog(t *testing.T) {
	svc, db := newTestService(t)
	require.NoError(t, db.Migrator().DropTable(&domain.CountryConfig{}))

	config, err := svc.Resolve(context.Background(), "SG")
	require.NoError(t, err)
	require.Equal(t, "SGD", config.CurrencyCode)
}

func TestListReturnsCatalog(t *testing.T) {
	svc, _ := newTestService(t)

	configs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, configs)

	codes := make(map[string]bool, len(configs))
	for _, config := range configs {
		codes[config.Code] = true
	}
	require.True(t, codes["IN"])
	require.True(t, codes["US"])
}

func TestListFallsBackToDefaults(t *testing.T) {
	svc, db := newTestService(t)
	require.NoError(t, db.Migrator().DropTable(&domain.CountryConfig{}))

	configs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, len(domain.Defaults()))
}
