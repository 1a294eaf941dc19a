package payment_service_fx

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/gateway"
	"storefront/internal/notifier"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

var Module = fx.Provide(
	provideOrderRepo,
	provideProductRepo,
	provideWebhookLogRepo,
	services.NewShippingCalculator,
	provideSessionService,
	provideVerificationService,
	provideWebhookService,
	provideOrderService,
)

func provideOrderRepo(db *gorm.DB) repositories.OrderRepository {
	return repositories.NewOrderRepository(db)
}

func provideProductRepo(db *gorm.DB) repositories.ProductRepository {
	return repositories.NewProductRepository(db)
}

func provideWebhookLogRepo(db *gorm.DB) repositories.WebhookLogRepository {
	return repositories.NewWebhookLogRepository(db)
}

func provideSessionService(
	products repositories.ProductRepository,
	gw gateway.Client,
	shipping *services.ShippingCalculator,
	ids *snowflake.Node,
	cfg *config.Config,
	log *zap.Logger,
) services.SessionService {
	return services.NewSessionService(products, gw, shipping, ids, cfg.Gateway.Currency, log.Named("session"))
}

func provideVerificationService(
	orders repositories.OrderRepository,
	gw gateway.Client,
	publisher notifier.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) services.VerificationService {
	return services.NewVerificationService(orders, gw, publisher, cfg.Gateway.Currency, log.Named("verify"))
}

func provideWebhookService(
	signer *gateway.Signer,
	orders repositories.OrderRepository,
	logs repositories.WebhookLogRepository,
	publisher notifier.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) services.WebhookService {
	return services.NewWebhookService(signer, orders, logs, publisher, cfg.Gateway.Currency, log.Named("webhook"))
}

func provideOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	shipping *services.ShippingCalculator,
	log *zap.Logger,
) services.OrderService {
	return services.NewOrderService(orders, products, shipping, log.Named("orders"))
}
