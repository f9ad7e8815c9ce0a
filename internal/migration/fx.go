package migration

import (
	"github.com/smallbiznis/causeway/internal/config"
	countrydomain "github.com/smallbiznis/causeway/internal/countryconfig/domain"
	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	invoicedomain "github.com/smallbiznis/causeway/internal/invoice/domain"
	recurringdomain "github.com/smallbiznis/causeway/internal/recurring/domain"
	"github.com/smallbiznis/causeway/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite/mysql installs (dev, tests) use gorm's migrator.
			if err := conn.AutoMigrate(
				&countrydomain.CountryConfig{},
				&donationdomain.Donation{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceSequence{},
				&recurringdomain.RecurringSubscription{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureCountryConfigs(conn)
	}),
)
