package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/causeway/internal/clock"
	"github.com/smallbiznis/causeway/internal/config"
	"github.com/smallbiznis/causeway/internal/countryconfig"
	"github.com/smallbiznis/causeway/internal/donation"
	"github.com/smallbiznis/causeway/internal/invoice"
	"github.com/smallbiznis/causeway/internal/logger"
	"github.com/smallbiznis/causeway/internal/metrics"
	"github.com/smallbiznis/causeway/internal/migration"
	"github.com/smallbiznis/causeway/internal/payment"
	"github.com/smallbiznis/causeway/internal/providers/email"
	"github.com/smallbiznis/causeway/internal/providers/pdf"
	"github.com/smallbiznis/causeway/internal/ratelimit"
	"github.com/smallbiznis/causeway/internal/recurring"
	"github.com/smallbiznis/causeway/internal/server"
	"github.com/smallbiznis/causeway/internal/wizard"
	"github.com/smallbiznis/causeway/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		ratelimit.Module,
		migration.Module,

		// Providers
		email.Module,
		pdf.Module,

		// Domains
		countryconfig.Module,
		donation.Module,
		payment.Module,
		invoice.Module,
		recurring.Module,
		wizard.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
