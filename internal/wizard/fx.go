package wizard

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/causeway/internal/wizard/service"
)

// Module provides the wizard session manager.
var Module = fx.Module("wizard.service",
	fx.Provide(service.NewManager),
)
