package invoice

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/causeway/internal/invoice/repository"
	"github.com/smallbiznis/causeway/internal/invoice/service"
)

// Module provides invoice components.
var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
