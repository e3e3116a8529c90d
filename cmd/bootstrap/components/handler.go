package components

import (
	"harborline/internal/handler"
	"harborline/internal/handler/api"
	"harborline/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewMerchantHandler,
		api.NewCrewHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
