package countryconfig

import (
	"github.com/smallbiznis/causeway/internal/countryconfig/repository"
	"github.com/smallbiznis/causeway/internal/countryconfig/service"
	"go.uber.org/fx"
)

var Module = fx.Module("countryconfig.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
