package controllers_fx

import (
	"go.uber.org/fx"

	"storefront/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewSessionController),
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewOrderController),
	fx.Provide(controllers.NewWebhookController),
	fx.Provide(controllers.NewAdminController))
