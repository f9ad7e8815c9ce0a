package payment

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/causeway/internal/payment/confirm"
	"github.com/smallbiznis/causeway/internal/payment/gateway/stripe"
	"github.com/smallbiznis/causeway/internal/payment/service"
)

// Module provides payment components.
var Module = fx.Module("payment.service",
	fx.Provide(stripe.New),
	fx.Provide(confirm.NewPoller),
	fx.Provide(service.NewOrchestrator),
)
