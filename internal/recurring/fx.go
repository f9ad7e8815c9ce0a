package recurring

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/causeway/internal/recurring/repository"
	"github.com/smallbiznis/causeway/internal/recurring/service"
)

// Module provides recurring subscription components.
var Module = fx.Module("recurring.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
