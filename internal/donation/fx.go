package donation

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/causeway/internal/donation/repository"
	"github.com/smallbiznis/causeway/internal/donation/service"
)

// Module provides donation components.
var Module = fx.Module("donation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
